package middleware

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "bizreport/internal/errors"
)

// ContentTypeValidator ensures request bodies have one of the given media
// types. Requests without a body type are rejected with 415 as well.
func ContentTypeValidator(errorHandler *apierrors.ErrorHandler, contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip for GET, HEAD, DELETE
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err == nil {
				for _, allowed := range contentTypes {
					if strings.EqualFold(mediaType, allowed) {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusUnsupportedMediaType,
				"UNSUPPORTED_MEDIA_TYPE",
				"Unsupported content type",
				map[string]interface{}{
					"content_type": contentType,
					"allowed":      contentTypes,
				},
			))
		})
	}
}

// QueryParamValidator validates query parameters decoded into structs with
// validate tags. Field names in errors come from the query tag.
type QueryParamValidator struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &QueryParamValidator{
		validator:    v,
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// Decode fills the string fields of dst (a struct pointer) from the query
// parameters named by their query tags, then validates it. On failure the
// problem response has been written and false is returned.
func (v *QueryParamValidator) Decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()
	query := r.URL.Query()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name := strings.SplitN(field.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" || field.Type.Kind() != reflect.String {
			continue
		}
		if value := query.Get(name); value != "" {
			rv.Field(i).SetString(value)
		}
	}

	err := v.validator.Struct(dst)
	if err == nil {
		return true
	}

	var details []apierrors.ValidationError
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			details = append(details, apierrors.ValidationError{
				Field:   fe.Field(),
				Message: formatValidationError(fe),
			})
		}
	}
	v.logger.DebugContext(r.Context(), "query validation failed", slog.String("error", err.Error()))
	v.errorHandler.HandleError(w, r, apierrors.NewValidationErrors(details))
	return false
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), strings.ReplaceAll(err.Param(), " ", ", "))
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag())
	}
}
