package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Common error types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeUnsupportedMedia = "/errors/unsupported-media-type"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
)

// Data-quality error types
const (
	TypeSchemaMismatch = "/errors/data/schema-mismatch"
	TypeParse          = "/errors/data/parse"
	TypeStorage        = "/errors/storage"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	level := slog.LevelError
	if problem.Status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var schemaErr *SchemaMismatchError
	if errors.As(err, &schemaErr) {
		problem := NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeSchemaMismatch,
			"Schema Mismatch",
			schemaErr.Error(),
			r.URL.Path,
		).WithExtension("column", schemaErr.Column)
		if schemaErr.RowID != NoRow {
			problem.WithExtension("row", schemaErr.RowID).WithExtension("value", schemaErr.Value)
		}
		return problem
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeParse,
			"Unparseable Value",
			parseErr.Error(),
			r.URL.Path,
		).WithExtension("column", parseErr.Column).
			WithExtension("row", parseErr.RowID).
			WithExtension("value", parseErr.Value)
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		problem := h.apiErrorToProblem(ErrPayloadTooLarge, r).WithExtension("limit", tooLarge.Limit)
		problem.Detail = fmt.Sprintf("The request body exceeds the maximum allowed size of %d bytes", tooLarge.Limit)
		return problem
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return h.appErrorToProblem(appErr, r)
	}

	problem := h.apiErrorToProblem(ErrInternalServer, r)
	problem.Detail = "An unexpected error occurred while processing your request"
	return problem
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "VALIDATION_FAILED", "INVALID_REQUEST":
		problemType = TypeValidation
	case "NOT_FOUND":
		problemType = TypeNotFound
	case "RATE_LIMIT_EXCEEDED":
		problemType = TypeRateLimit
	case "PAYLOAD_TOO_LARGE":
		problemType = TypePayloadTooLarge
	case "UNSUPPORTED_MEDIA_TYPE":
		problemType = TypeUnsupportedMedia
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

func (h *ErrorHandler) appErrorToProblem(appErr *AppError, r *http.Request) *ProblemDetails {
	status := http.StatusInternalServerError
	problemType := TypeInternal
	title := "Internal Server Error"
	switch appErr.Type {
	case ErrTypeValidation, ErrTypeParsing:
		status, problemType, title = http.StatusBadRequest, TypeValidation, "Invalid Input"
	case ErrTypeSchema:
		status, problemType, title = http.StatusUnprocessableEntity, TypeSchemaMismatch, "Schema Mismatch"
	case ErrTypeNotFound:
		status, problemType, title = http.StatusNotFound, TypeNotFound, "Resource Not Found"
	case ErrTypeStorage:
		problemType = TypeStorage
	}

	problem := NewProblemDetails(status, problemType, title, appErr.Message, r.URL.Path).
		WithExtension("error_type", string(appErr.Type))
	for k, v := range appErr.Context {
		problem.WithExtension(k, v)
	}
	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := h.apiErrorToProblem(ErrNotFound, r).
		WithExtension("trace_id", middleware.GetReqID(r.Context()))
	problem.Detail = "The requested resource was not found"

	render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllowed,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// Recoverer returns a middleware that turns panics into problem responses
func (h *ErrorHandler) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.HandlePanic(w, r, rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
