package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"bizreport/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8 CSV files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter exports cleaned tables as CSV
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 BOM for Excel compatibility
	BOMPrefix bool
	logger    *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(bom bool, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{BOMPrefix: bom, logger: logger}
}

// Format implements TableWriter
func (w *CSVWriter) Format() string { return FormatCSV }

// ContentType implements TableWriter
func (w *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

// WriteTable writes the header and every row in canonical form: integers
// in base 10, dates as ISO 8601, text verbatim.
func (w *CSVWriter) WriteTable(out io.Writer, t *domain.Table) error {
	w.logger.Debug("Writing CSV table",
		slog.Int("record_count", t.Len()),
		slog.Int("column_count", len(t.Columns)),
		slog.Bool("bom", w.BOMPrefix))

	if w.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(t.Names()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i := 0; i < t.Len(); i++ {
		if err := writer.Write(t.Row(i)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
