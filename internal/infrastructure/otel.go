package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"bizreport/internal/config"
	"bizreport/pkg/contracts"
)

const (
	ServiceName = "bizreport-cleaner"
	MeterName   = "bizreport"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: contracts.Version,
		Environment:    "development",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1.0,
	}
}

// OTelConfigFrom maps the telemetry section of the application config
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	out := DefaultOTelConfig()
	if cfg.Environment != "" {
		out.Environment = cfg.Environment
	}
	if cfg.TraceExporter != "" {
		out.TraceExporter = cfg.TraceExporter
	}
	if cfg.MetricExporter != "" {
		out.MetricExporter = cfg.MetricExporter
	}
	out.SampleRatio = cfg.SampleRatio
	return out
}

// InitializeOTel initializes tracing and metrics providers and installs
// them globally.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metric_exporter", cfg.MetricExporter))

	res := createResource(cfg)

	providers := &OTelProviders{
		Logger: logger,
		Tracer: otel.Tracer(MeterName),
		Meter:  otel.Meter(MeterName),
	}

	if err := initializeTracing(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(consoleOutput),
			stdouttrace.WithPrettyPrint(),
		)
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics sets up OpenTelemetry metrics
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		exporter, err := prometheus.New()
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		providers.PrometheusHTTP = promhttp.Handler()

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetMeterProvider(mp)
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))

	return nil
}

// BusinessMetrics holds the cleaning pipeline metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Pipeline metrics
	PipelineRunsTotal   metric.Int64Counter
	PipelineRunDuration metric.Float64Histogram
	PipelineActiveRuns  metric.Int64UpDownCounter
	StageDuration       metric.Float64Histogram
	StageErrors         metric.Int64Counter
	RowsIn              metric.Int64Counter
	RowsOut             metric.Int64Counter
	DuplicatesRemoved   metric.Int64Counter
	OutliersClipped     metric.Int64Counter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}

	var (
		m   BusinessMetrics
		err error
	)

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.HTTPRequestsTotal, "http_requests_total", "Total number of HTTP requests"},
		{&m.PipelineRunsTotal, "pipeline_runs_total", "Total number of cleaning runs"},
		{&m.StageErrors, "pipeline_stage_errors_total", "Total number of failed pipeline stages"},
		{&m.RowsIn, "pipeline_rows_in_total", "Rows read into the pipeline"},
		{&m.RowsOut, "pipeline_rows_out_total", "Rows emitted by the pipeline"},
		{&m.DuplicatesRemoved, "pipeline_duplicates_removed_total", "Duplicate rows removed"},
		{&m.OutliersClipped, "pipeline_outliers_clipped_total", "Cell values clipped to IQR bounds"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, err
		}
	}

	histograms := []struct {
		dst  *metric.Float64Histogram
		name string
		desc string
	}{
		{&m.HTTPRequestDuration, "http_request_duration_seconds", "HTTP request duration in seconds"},
		{&m.PipelineRunDuration, "pipeline_run_duration_seconds", "Cleaning run duration in seconds"},
		{&m.StageDuration, "pipeline_stage_duration_seconds", "Pipeline stage duration in seconds"},
	}
	for _, h := range histograms {
		if *h.dst, err = meter.Float64Histogram(h.name, metric.WithDescription(h.desc), metric.WithUnit("s")); err != nil {
			return nil, err
		}
	}

	m.PipelineActiveRuns, err = meter.Int64UpDownCounter(
		"pipeline_active_runs",
		metric.WithDescription("Number of cleaning runs in progress"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts the span trace ID from context for log correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// RecordPipelineRun records the outcome of one cleaning run
func RecordPipelineRun(ctx context.Context, metrics *BusinessMetrics, source string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	)

	metrics.PipelineRunsTotal.Add(ctx, 1, attrs)
	metrics.PipelineRunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordStage records the duration and outcome of one pipeline stage
func RecordStage(ctx context.Context, metrics *BusinessMetrics, stage string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
	if err != nil {
		metrics.StageErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("error.type", fmt.Sprintf("%T", err)),
		))
	}
}

// RecordHTTPRequest records one served HTTP request
func RecordHTTPRequest(ctx context.Context, metrics *BusinessMetrics, route string, status int, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	metrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
	metrics.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
