package operations

import (
	"context"
	"sync"
	"time"

	"bizreport/pkg/contracts/domain"
)

// Stage IDs in execution order
const (
	StageRename        = "rename"
	StageDeduplicate   = "deduplicate"
	StageDropRedundant = "drop_redundant"
	StageCoerce        = "coerce"
	StageParse         = "parse"
	StageClip          = "clip"
	StageVerify        = "verify"
)

// Stage represents a single step of a cleaning run. A stage takes the table
// held by the run state and replaces it with its output.
type Stage interface {
	// ID returns the unique identifier for this stage
	ID() string

	// Name returns the human-readable name for this stage
	Name() string

	// Execute runs the stage against the run state
	Execute(ctx context.Context, state *RunState) error
}

// RunState is threaded through the stages of one run. Only the orchestrator
// touches it.
type RunState struct {
	ID  string
	Raw *domain.RawTable
	// Table is the current table. Each stage owns it until it returns.
	Table             *domain.Table
	Outliers          domain.OutlierReport
	DuplicatesRemoved int
	// Equivalent counts rows dropped for equalling an earlier row once typed.
	Equivalent int
}

// StepStatus represents the current status of a stage
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a stage
type StepState struct {
	mu        sync.RWMutex
	ID        string
	Name      string
	Status    StepStatus
	StartTime *time.Time
	EndTime   *time.Time
	RowsIn    int
	RowsOut   int
	Error     error
}

// NewStepState creates a new stage state with default values
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:     id,
		Name:   name,
		Status: StepStatusPending,
	}
}

// Start marks the stage as active and sets the start time
func (s *StepState) Start(rowsIn int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
	s.RowsIn = rowsIn
}

// Complete marks the stage as completed and sets the end time
func (s *StepState) Complete(rowsOut int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
	s.RowsOut = rowsOut
}

// Fail marks the stage as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
}

// Skip marks the stage as skipped
func (s *StepState) Skip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StepStatusSkipped
}

// Duration returns the duration of the stage execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// StepSummary is the serializable view of a StepState
type StepSummary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     StepStatus `json:"status"`
	RowsIn     int        `json:"rows_in"`
	RowsOut    int        `json:"rows_out"`
	DurationMS float64    `json:"duration_ms"`
	Error      string     `json:"error,omitempty"`
}

// Summary returns a snapshot of the state
func (s *StepState) Summary() StepSummary {
	d := s.Duration()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := StepSummary{
		ID:         s.ID,
		Name:       s.Name,
		Status:     s.Status,
		RowsIn:     s.RowsIn,
		RowsOut:    s.RowsOut,
		DurationMS: float64(d.Microseconds()) / 1000,
	}
	if s.Error != nil {
		out.Error = s.Error.Error()
	}
	return out
}

// BaseStage provides common functionality for stage implementations
type BaseStage struct {
	id   string
	name string
}

// NewBaseStage creates a new base stage
func NewBaseStage(id, name string) BaseStage {
	return BaseStage{id: id, name: name}
}

// ID returns the stage ID
func (b *BaseStage) ID() string {
	return b.id
}

// Name returns the stage name
func (b *BaseStage) Name() string {
	return b.name
}
