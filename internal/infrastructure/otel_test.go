package infrastructure

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"bizreport/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	// default config exports metrics only
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{
		Environment:    "staging",
		TraceExporter:  "stdout",
		MetricExporter: "none",
		SampleRatio:    0.25,
	})
	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.Equal(t, "none", cfg.MetricExporter)
	assert.Equal(t, 0.25, cfg.SampleRatio)
}

func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name        string
		config      *OTelConfig
		wantTracing bool
		wantMetrics bool
		wantErr     bool
	}{
		{
			name: "stdout tracing and prometheus",
			config: &OTelConfig{
				ServiceName: "test-service", ServiceVersion: "v1.0.0", Environment: "test",
				TraceExporter: "stdout", MetricExporter: "prometheus", SampleRatio: 1.0,
			},
			wantTracing: true,
			wantMetrics: true,
		},
		{
			name: "everything disabled",
			config: &OTelConfig{
				ServiceName: "test-service", ServiceVersion: "v1.0.0", Environment: "test",
				TraceExporter: "none", MetricExporter: "none",
			},
		},
		{
			name: "unsupported trace exporter",
			config: &OTelConfig{
				ServiceName: "test-service", TraceExporter: "otlp", MetricExporter: "none",
			},
			wantErr: true,
		},
		{
			name: "unsupported metric exporter",
			config: &OTelConfig{
				ServiceName: "test-service", TraceExporter: "none", MetricExporter: "statsd",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantTracing, providers.TracerProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.MeterProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.PrometheusHTTP != nil)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, providers.Shutdown(ctx))
		})
	}
}

func TestTraceCorrelation(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "stdout"
	cfg.MetricExporter = "none"
	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "test-operation")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	RecordError(ctx, assert.AnError)
	assert.True(t, span.IsRecording())

	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestBusinessMetrics(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.PipelineRunsTotal)
	assert.NotNil(t, metrics.PipelineRunDuration)
	assert.NotNil(t, metrics.PipelineActiveRuns)
	assert.NotNil(t, metrics.StageDuration)
	assert.NotNil(t, metrics.RowsIn)
	assert.NotNil(t, metrics.OutliersClipped)

	ctx := context.Background()
	RecordPipelineRun(ctx, metrics, "test", time.Second, nil)
	RecordStage(ctx, metrics, "clip", time.Millisecond, assert.AnError)
	RecordHTTPRequest(ctx, metrics, "/api/v1/clean", http.StatusOK, time.Millisecond)
	metrics.OutliersClipped.Add(ctx, 3)

	// nil metrics are ignored
	RecordPipelineRun(ctx, nil, "test", time.Second, nil)
	RecordStage(ctx, nil, "clip", time.Second, nil)
	RecordHTTPRequest(ctx, nil, "/", http.StatusOK, time.Second)
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	RecordPipelineRun(context.Background(), metrics, "prometheus-test", time.Second, nil)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}

func BenchmarkRecordStage(b *testing.B) {
	metrics, err := CreateBusinessMetrics(otel.Meter("benchmark"))
	require.NoError(b, err)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RecordStage(ctx, metrics, "coerce", time.Millisecond, nil)
	}
}
