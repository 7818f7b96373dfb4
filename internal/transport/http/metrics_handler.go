package http

import (
	"net/http"

	apperrors "bizreport/internal/errors"
)

// MetricsHandler serves the Prometheus scrape endpoint
type MetricsHandler struct {
	exporter     http.Handler
	errorHandler *apperrors.ErrorHandler
}

// NewMetricsHandler wraps the Prometheus exporter handler. A nil exporter
// means metrics are disabled and the endpoint answers 404.
func NewMetricsHandler(exporter http.Handler, errorHandler *apperrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter, errorHandler: errorHandler}
}

// Enabled reports whether a metric exporter is configured
func (h *MetricsHandler) Enabled() bool {
	return h.exporter != nil
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		h.errorHandler.NotFound(w, r)
		return
	}
	h.exporter.ServeHTTP(w, r)
}
