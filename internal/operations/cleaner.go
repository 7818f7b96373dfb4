package operations

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"bizreport/internal/dataprocessing"
	"bizreport/internal/infrastructure"
	"bizreport/pkg/contracts/domain"
)

// Result is the output of a successful run.
type Result struct {
	RunID    string                 `json:"run_id"`
	Table    *domain.Table          `json:"-"`
	Outliers domain.OutlierReport   `json:"outliers"`
	Profile  dataprocessing.Profile `json:"profile"`
	Steps    []StepSummary          `json:"steps"`
	// EquivalentRows counts rows dropped for equalling an earlier row once typed.
	EquivalentRows int           `json:"equivalent_rows"`
	Duration       time.Duration `json:"-"`
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cleaner) { c.logger = logger }
}

// WithParallelColumns processes coercion and clipping one goroutine per
// column. Results are identical to the sequential mode.
func WithParallelColumns(enabled bool) Option {
	return func(c *Cleaner) { c.parallel = enabled }
}

// WithTracer instruments runs with spans and metrics.
func WithTracer(t *OperationTracer) Option {
	return func(c *Cleaner) { c.tracer = t }
}

// Cleaner runs the fixed cleaning sequence over one table.
type Cleaner struct {
	schema   domain.ColumnSchema
	logger   *slog.Logger
	parallel bool
	tracer   *OperationTracer

	rawStages   []Stage
	tableStages []Stage
}

// NewCleaner builds the pipeline for schema.
func NewCleaner(schema domain.ColumnSchema, opts ...Option) *Cleaner {
	c := &Cleaner{schema: schema}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = infrastructure.WithComponent(c.logger, "cleaner")

	normalizer := dataprocessing.NewNormalizer(schema, c.logger)
	c.tableStages = []Stage{
		NewDeduplicateStage(normalizer),
		NewDropRedundantStage(normalizer),
		NewCoerceStage(dataprocessing.NewCoercer(schema, c.logger, dataprocessing.WithParallelCoercion(c.parallel))),
		NewParseStage(dataprocessing.NewParser(schema, c.logger)),
		NewClipStage(dataprocessing.NewClipper(schema, c.logger, dataprocessing.WithParallelClipping(c.parallel))),
		NewVerifyStage(schema, c.logger),
	}
	c.rawStages = append([]Stage{NewRenameStage(normalizer)}, c.tableStages...)
	return c
}

// Stages returns the stage IDs in execution order.
func (c *Cleaner) Stages() []string {
	ids := make([]string, len(c.rawStages))
	for i, s := range c.rawStages {
		ids[i] = s.ID()
	}
	return ids
}

// Run cleans a raw table. On failure no table is returned.
func (c *Cleaner) Run(ctx context.Context, raw *domain.RawTable) (*Result, error) {
	if raw == nil {
		return nil, NewValidationError(StageRename, "raw table is nil")
	}
	input := dataprocessing.ProfileRaw(raw)
	return c.execute(ctx, &RunState{Raw: raw}, c.rawStages, input)
}

// RunTable cleans a table whose columns already carry canonical names,
// starting at deduplication.
func (c *Cleaner) RunTable(ctx context.Context, t *domain.Table) (*Result, error) {
	if t == nil {
		return nil, NewValidationError(StageDeduplicate, "table is nil")
	}
	input := dataprocessing.RawProfile{Rows: t.Len(), EmptyCells: map[string]int{}}
	return c.execute(ctx, &RunState{Table: t}, c.tableStages, input)
}

func (c *Cleaner) execute(ctx context.Context, state *RunState, stages []Stage, input dataprocessing.RawProfile) (result *Result, err error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	state.ID = infrastructure.GetTraceID(ctx)
	start := time.Now()

	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.TraceRun(ctx, state.ID, input.Rows)
		defer func() {
			c.tracer.RecordRunCompletion(ctx, span, state, time.Since(start), err)
			span.End()
		}()
	}

	c.logger.InfoContext(ctx, "pipeline_start",
		slog.String("run_id", state.ID),
		slog.Int("rows", input.Rows),
		slog.Int("stage_count", len(stages)),
		slog.Bool("parallel", c.parallel))

	steps := make([]*StepState, len(stages))
	for i, s := range stages {
		steps[i] = NewStepState(s.ID(), s.Name())
	}

	for i, s := range stages {
		if err := ctx.Err(); err != nil {
			skipRemaining(steps[i:])
			c.logger.WarnContext(ctx, "pipeline_cancelled",
				slog.String("run_id", state.ID),
				slog.String("stage", s.ID()))
			return nil, NewCancellationError(s.ID(), err)
		}

		if err := c.executeStage(ctx, state, s, steps[i]); err != nil {
			skipRemaining(steps[i+1:])
			c.logger.ErrorContext(ctx, "pipeline_failed",
				slog.String("run_id", state.ID),
				slog.String("stage", s.ID()),
				slog.String("error", err.Error()))
			return nil, NewExecutionError(s.ID(), err, false).WithContext("run_id", state.ID)
		}
	}

	result = &Result{
		RunID:    state.ID,
		Table:    state.Table,
		Outliers: state.Outliers,
		Profile: dataprocessing.Profile{
			Input:  input,
			Output: dataprocessing.ProfileTable(state.Table, state.DuplicatesRemoved),
		},
		Steps:          make([]StepSummary, len(steps)),
		EquivalentRows: state.Equivalent,
		Duration:       time.Since(start),
	}
	for i, st := range steps {
		result.Steps[i] = st.Summary()
	}

	c.logger.InfoContext(ctx, "pipeline_completed",
		slog.String("run_id", state.ID),
		slog.Int("rows_in", input.Rows),
		slog.Int("rows_out", state.Table.Len()),
		slog.Int("duplicates_removed", state.DuplicatesRemoved),
		slog.Int("outliers_clipped", state.Outliers.Total()),
		slog.Duration("duration", result.Duration))

	return result, nil
}

func (c *Cleaner) executeStage(ctx context.Context, state *RunState, s Stage, step *StepState) error {
	var rowsIn int
	if state.Raw != nil {
		rowsIn = len(state.Raw.Records)
	} else {
		rowsIn = state.Table.Len()
	}

	stageCtx := ctx
	var endSpan func(error)
	if c.tracer != nil {
		spanCtx, span := c.tracer.TraceStage(ctx, state.ID, s.ID())
		stageCtx = spanCtx
		endSpan = func(err error) {
			c.tracer.RecordStageCompletion(spanCtx, span, step, err)
			span.End()
		}
	}

	step.Start(rowsIn)
	err := s.Execute(stageCtx, state)
	if err != nil {
		step.Fail(err)
	} else {
		step.Complete(state.Table.Len())
	}
	if endSpan != nil {
		endSpan(err)
	}

	if err != nil {
		return err
	}
	c.logger.DebugContext(ctx, "stage_completed",
		slog.String("run_id", state.ID),
		slog.String("stage", s.ID()),
		slog.Int("rows_in", rowsIn),
		slog.Int("rows_out", step.RowsOut),
		slog.Duration("duration", step.Duration()))
	return nil
}

func skipRemaining(steps []*StepState) {
	for _, st := range steps {
		st.Skip()
	}
}
