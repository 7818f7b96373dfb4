package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"bizreport/internal/infrastructure"
)

const (
	TracerName = "bizreport.pipeline"
)

// OperationTracer provides OpenTelemetry instrumentation for cleaning runs
type OperationTracer struct {
	tracer          trace.Tracer
	businessMetrics *infrastructure.BusinessMetrics
}

// NewOperationTracer creates a tracer backed by the given providers. A nil
// providers value falls back to the global otel providers.
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	var meter metric.Meter
	tracer := otel.Tracer(TracerName)
	if providers != nil {
		meter = providers.Meter
		if providers.TracerProvider != nil {
			tracer = providers.TracerProvider.Tracer(TracerName)
		}
	}

	businessMetrics, err := infrastructure.CreateBusinessMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	return &OperationTracer{
		tracer:          tracer,
		businessMetrics: businessMetrics,
	}, nil
}

// Metrics exposes the underlying business metrics
func (pt *OperationTracer) Metrics() *infrastructure.BusinessMetrics {
	return pt.businessMetrics
}

// TraceRun creates a span for an entire cleaning run
func (pt *OperationTracer) TraceRun(ctx context.Context, runID string, rowsIn int) (context.Context, trace.Span) {
	ctx, span := pt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.rows_in", rowsIn),
		),
	)

	pt.businessMetrics.PipelineActiveRuns.Add(ctx, 1)
	pt.businessMetrics.RowsIn.Add(ctx, int64(rowsIn))

	return ctx, span
}

// TraceStage creates a span for one stage
func (pt *OperationTracer) TraceStage(ctx context.Context, runID, stageID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("pipeline.stage.%s", stageID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("stage.id", stageID),
		),
	)
}

// RecordStageCompletion records stage duration and outcome
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, step *StepState, err error) {
	duration := step.Duration()
	span.SetAttributes(
		attribute.String("stage.status", string(step.Status)),
		attribute.Int("stage.rows_in", step.RowsIn),
		attribute.Int("stage.rows_out", step.RowsOut),
		attribute.Float64("stage.duration_seconds", duration.Seconds()),
	)

	infrastructure.RecordStage(ctx, pt.businessMetrics, step.ID, duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err, trace.WithAttributes(attribute.String("stage.id", step.ID)))
		return
	}
	span.SetStatus(codes.Ok, "stage completed")
}

// RecordRunCompletion records the run outcome and closes the active counter
func (pt *OperationTracer) RecordRunCompletion(ctx context.Context, span trace.Span, state *RunState, duration time.Duration, err error) {
	pt.businessMetrics.PipelineActiveRuns.Add(ctx, -1)
	infrastructure.RecordPipelineRun(ctx, pt.businessMetrics, "pipeline", duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		return
	}

	rowsOut := state.Table.Len()
	pt.businessMetrics.RowsOut.Add(ctx, int64(rowsOut))
	pt.businessMetrics.DuplicatesRemoved.Add(ctx, int64(state.DuplicatesRemoved))
	for _, col := range state.Outliers.Columns {
		if len(col.Entries) > 0 {
			pt.businessMetrics.OutliersClipped.Add(ctx, int64(len(col.Entries)),
				metric.WithAttributes(attribute.String("column", col.Column)))
		}
	}

	span.SetAttributes(
		attribute.Int("run.rows_out", rowsOut),
		attribute.Int("run.duplicates_removed", state.DuplicatesRemoved),
		attribute.Int("run.outliers_clipped", state.Outliers.Total()),
	)
	span.SetStatus(codes.Ok, "run completed")
}
