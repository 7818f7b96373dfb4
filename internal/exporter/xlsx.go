package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"bizreport/pkg/contracts/domain"
)

// XLSXSheet is the worksheet holding the cleaned table
const XLSXSheet = "cleaned"

// XLSXWriter exports cleaned tables as an Excel workbook with one sheet.
// Integer cells are numeric; dates keep their ISO text form so the sheet
// reads back unchanged.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a new workbook writer
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

// Format implements TableWriter
func (w *XLSXWriter) Format() string { return FormatXLSX }

// ContentType implements TableWriter
func (w *XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// WriteTable writes t to a new workbook
func (w *XLSXWriter) WriteTable(out io.Writer, t *domain.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), XLSXSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(t.Columns))
	for j, c := range t.Columns {
		header[j] = c.Name
	}
	if err := f.SetSheetRow(XLSXSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	row := make([]any, len(t.Columns))
	for i := 0; i < t.Len(); i++ {
		for j, c := range t.Columns {
			if c.Kind == domain.KindInteger {
				row[j] = c.Ints[i]
			} else {
				row[j] = c.Format(i)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(XLSXSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	w.logger.Debug("Writing workbook",
		slog.String("sheet", XLSXSheet),
		slog.Int("record_count", t.Len()))
	return f.Write(out)
}
