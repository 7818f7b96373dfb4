package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"bizreport/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = contracts.Version
	}
	return &HealthService{
		version:   version,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":             hs.version,
		"data_format_version": info.DataFormat,
		"api_version":         info.APIVersion,
		"build_time":          info.BuildTime,
		"git_commit":          info.GitCommit,
		"go_version":          info.GoVersion,
		"os":                  info.OS,
		"arch":                info.Architecture,
		"start_time":          hs.startTime.Format(time.RFC3339),
	}
}
