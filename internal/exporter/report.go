package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"bizreport/internal/dataprocessing"
	"bizreport/internal/operations"
	"bizreport/pkg/contracts"
	"bizreport/pkg/contracts/domain"
)

// RunReport is the JSON document written next to a cleaned table
type RunReport struct {
	RunID       string    `json:"run_id"`
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	Input       string    `json:"input,omitempty"`
	Output      string    `json:"output,omitempty"`
	Format      string    `json:"format,omitempty"`

	// Outliers maps each clipped column to its clipped cells
	Outliers map[string][]domain.OutlierEntry `json:"outliers"`
	Bounds   map[string]domain.Bounds         `json:"bounds"`

	Profile        dataprocessing.Profile   `json:"profile"`
	Steps          []operations.StepSummary `json:"steps"`
	EquivalentRows int                      `json:"equivalent_rows"`
	DurationMS     float64                  `json:"duration_ms"`
}

// NewRunReport builds the report of a successful run
func NewRunReport(result *operations.Result) RunReport {
	bounds := make(map[string]domain.Bounds, len(result.Outliers.Columns))
	for _, c := range result.Outliers.Columns {
		bounds[c.Column] = c.Bounds
	}
	return RunReport{
		RunID:          result.RunID,
		Version:        contracts.Version,
		GeneratedAt:    time.Now().UTC(),
		Outliers:       result.Outliers.ByColumn(),
		Bounds:         bounds,
		Profile:        result.Profile,
		Steps:          result.Steps,
		EquivalentRows: result.EquivalentRows,
		DurationMS:     float64(result.Duration.Microseconds()) / 1000,
	}
}

// WriteReport writes r as indented JSON
func WriteReport(w io.Writer, r RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}
	return nil
}
