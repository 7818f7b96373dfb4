package operations

import (
	"context"
	"log/slog"

	"bizreport/internal/dataprocessing"
	"bizreport/pkg/contracts/domain"
)

// RenameStage maps raw headers onto canonical text columns.
type RenameStage struct {
	BaseStage
	normalizer *dataprocessing.Normalizer
}

// NewRenameStage creates the rename stage
func NewRenameStage(n *dataprocessing.Normalizer) *RenameStage {
	return &RenameStage{BaseStage: NewBaseStage(StageRename, "Normalize schema"), normalizer: n}
}

// Execute consumes state.Raw
func (s *RenameStage) Execute(_ context.Context, state *RunState) error {
	if state.Raw == nil {
		return NewValidationError(s.ID(), "no raw table to normalize")
	}
	t, err := s.normalizer.Rename(state.Raw)
	if err != nil {
		return err
	}
	state.Raw = nil
	state.Table = t
	return nil
}

// DeduplicateStage removes repeated rows, keeping the first occurrence.
type DeduplicateStage struct {
	BaseStage
	normalizer *dataprocessing.Normalizer
}

// NewDeduplicateStage creates the deduplication stage
func NewDeduplicateStage(n *dataprocessing.Normalizer) *DeduplicateStage {
	return &DeduplicateStage{BaseStage: NewBaseStage(StageDeduplicate, "Remove duplicate rows"), normalizer: n}
}

// Execute replaces state.Table with its distinct rows
func (s *DeduplicateStage) Execute(_ context.Context, state *RunState) error {
	t, removed := s.normalizer.Deduplicate(state.Table)
	state.Table = t
	state.DuplicatesRemoved = removed
	return nil
}

// DropRedundantStage removes the columns the schema marks redundant.
type DropRedundantStage struct {
	BaseStage
	normalizer *dataprocessing.Normalizer
}

// NewDropRedundantStage creates the column drop stage
func NewDropRedundantStage(n *dataprocessing.Normalizer) *DropRedundantStage {
	return &DropRedundantStage{BaseStage: NewBaseStage(StageDropRedundant, "Drop redundant columns"), normalizer: n}
}

// Execute replaces state.Table without the redundant columns
func (s *DropRedundantStage) Execute(_ context.Context, state *RunState) error {
	state.Table = s.normalizer.DropRedundant(state.Table)
	return nil
}

// CoerceStage converts numeric-as-text columns to integers.
type CoerceStage struct {
	BaseStage
	coercer *dataprocessing.Coercer
}

// NewCoerceStage creates the coercion stage
func NewCoerceStage(c *dataprocessing.Coercer) *CoerceStage {
	return &CoerceStage{BaseStage: NewBaseStage(StageCoerce, "Coerce numeric text"), coercer: c}
}

// Execute replaces state.Table with its coerced form
func (s *CoerceStage) Execute(ctx context.Context, state *RunState) error {
	t, err := s.coercer.Coerce(ctx, state.Table)
	if err != nil {
		return err
	}
	state.Table = t
	return nil
}

// ParseStage parses dates and restricts the month column to its domain.
type ParseStage struct {
	BaseStage
	parser *dataprocessing.Parser
}

// NewParseStage creates the temporal and categorical stage
func NewParseStage(p *dataprocessing.Parser) *ParseStage {
	return &ParseStage{BaseStage: NewBaseStage(StageParse, "Parse dates and categories"), parser: p}
}

// Execute replaces state.Table with its parsed form
func (s *ParseStage) Execute(_ context.Context, state *RunState) error {
	t, err := s.parser.Parse(state.Table)
	if err != nil {
		return err
	}
	state.Table = t
	return nil
}

// ClipStage winsorizes every outlier column to its IQR fences.
type ClipStage struct {
	BaseStage
	clipper *dataprocessing.Clipper
}

// NewClipStage creates the outlier stage
func NewClipStage(c *dataprocessing.Clipper) *ClipStage {
	return &ClipStage{BaseStage: NewBaseStage(StageClip, "Clip outliers"), clipper: c}
}

// Execute replaces state.Table with its clipped form and records the report
func (s *ClipStage) Execute(ctx context.Context, state *RunState) error {
	t, report, err := s.clipper.Clip(ctx, state.Table)
	if err != nil {
		return err
	}
	state.Table = t
	state.Outliers = report
	return nil
}

// VerifyStage checks the cleaned table before it leaves the pipeline.
// Rows that became equal through coercion or clipping are collapsed to
// their first occurrence, so the output never holds duplicate rows.
type VerifyStage struct {
	BaseStage
	schema domain.ColumnSchema
	logger *slog.Logger
}

// NewVerifyStage creates the verification stage
func NewVerifyStage(schema domain.ColumnSchema, logger *slog.Logger) *VerifyStage {
	return &VerifyStage{BaseStage: NewBaseStage(StageVerify, "Verify invariants"), schema: schema, logger: logger}
}

// Execute drops rows equal once typed and checks the result
func (s *VerifyStage) Execute(ctx context.Context, state *RunState) error {
	if err := dataprocessing.VerifyStructure(state.Table, s.schema); err != nil {
		return err
	}
	if err := dataprocessing.VerifyBounds(state.Table, s.schema, state.Outliers); err != nil {
		return err
	}

	state.Table, state.Outliers, state.Equivalent = dataprocessing.CollapseDuplicates(state.Table, state.Outliers)
	if state.Equivalent > 0 {
		s.logger.WarnContext(ctx, "dropped rows equal after typing",
			slog.Int("rows", state.Equivalent))
	}
	return dataprocessing.VerifyUnique(state.Table)
}
