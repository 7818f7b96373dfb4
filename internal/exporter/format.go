package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"bizreport/internal/config"
	"bizreport/pkg/contracts/domain"
)

// Supported output formats
const (
	FormatCSV     = config.FormatCSV
	FormatParquet = config.FormatParquet
	FormatXLSX    = config.FormatXLSX
)

// TableWriter serializes a cleaned table
type TableWriter interface {
	Format() string
	ContentType() string
	WriteTable(w io.Writer, t *domain.Table) error
}

// NewTableWriter returns the writer for format. An empty format means CSV.
func NewTableWriter(format string, cfg config.PipelineConfig, logger *slog.Logger) (TableWriter, error) {
	switch strings.ToLower(format) {
	case "", FormatCSV:
		return NewCSVWriter(cfg.CSVBOM, logger), nil
	case FormatParquet:
		return NewParquetWriter(logger), nil
	case FormatXLSX:
		return NewXLSXWriter(logger), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// FormatFromPath guesses the output format from a file extension. It
// returns "" for unknown extensions.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".parquet":
		return FormatParquet
	case ".xlsx":
		return FormatXLSX
	default:
		return ""
	}
}
