package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"bizreport/internal/config"
	apperrors "bizreport/internal/errors"
	"bizreport/internal/exporter"
	"bizreport/internal/middleware"
	"bizreport/internal/services"
)

// Views of a cleaning response
const (
	ViewTable  = "table"
	ViewReport = "report"
)

// RunIDHeader carries the run ID of a cleaned table response
const RunIDHeader = "X-Run-ID"

type cleanQuery struct {
	View     string `query:"view" validate:"omitempty,oneof=table report"`
	Format   string `query:"format" validate:"omitempty,oneof=csv parquet xlsx"`
	Encoding string `query:"encoding" validate:"omitempty,oneof=utf-8 utf8 windows-1252 cp1252 iso-8859-1 latin1"`
	Sheet    string `query:"sheet" validate:"omitempty,max=31"`
}

// CleanHandler runs the cleaner over uploaded sales exports
type CleanHandler struct {
	service      CleaningService
	pipeline     config.PipelineConfig
	validator    *middleware.QueryParamValidator
	errorHandler *apperrors.ErrorHandler
	logger       *slog.Logger
}

// NewCleanHandler creates a new clean handler
func NewCleanHandler(service CleaningService, pipeline config.PipelineConfig, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *CleanHandler {
	logger = logger.With(slog.String("handler", "clean"))
	return &CleanHandler{
		service:      service,
		pipeline:     pipeline,
		validator:    middleware.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// Routes mounts the cleaning endpoint. maxBody caps the upload size.
func (h *CleanHandler) Routes(r chi.Router, maxBody int64) {
	r.With(
		middleware.MaxBodySize(maxBody),
		middleware.ContentTypeValidator(h.errorHandler,
			"text/csv", "text/plain", "application/octet-stream", services.XLSXContentType),
	).Post("/clean", h.Clean)
}

// Clean handles POST /api/v1/clean. The body is a raw export; the response
// is the cleaned table, or the run report with view=report.
func (h *CleanHandler) Clean(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var q cleanQuery
	if !h.validator.Decode(w, r, &q) {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if len(body) == 0 {
		h.errorHandler.HandleError(w, r, apperrors.ErrValidation("body", "request body is empty"))
		return
	}

	kind := services.InputKindFromContentType(r.Header.Get("Content-Type"))
	result, err := h.service.CleanReader(ctx, bytes.NewReader(body), kind, q.Encoding, q.Sheet)
	if err != nil {
		h.handleCleanError(w, r, err)
		return
	}

	if q.View == ViewReport {
		render.JSON(w, r, exporter.NewRunReport(result))
		return
	}

	writer, err := exporter.NewTableWriter(q.Format, h.pipeline, h.logger)
	if err != nil {
		h.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
		return
	}
	var buf bytes.Buffer
	if err := writer.WriteTable(&buf, result.Table); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", writer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="cleaned.%s"`, writer.Format()))
	w.Header().Set(RunIDHeader, result.RunID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(ctx, "Failed to write response", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Served cleaned table",
		slog.String("run_id", result.RunID),
		slog.String("format", writer.Format()),
		slog.Int("rows", result.Table.Len()),
		slog.Int("size_bytes", buf.Len()))
}

func (h *CleanHandler) handleCleanError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUnsupportedInput):
		h.errorHandler.HandleError(w, r, apperrors.ErrUnsupportedMedia)
	case errors.Is(err, services.ErrInvalidInput):
		h.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
