package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"bizreport/internal/config"
	"bizreport/internal/dataprocessing"
	"bizreport/internal/exporter"
	"bizreport/internal/infrastructure"
	"bizreport/internal/operations"
	"bizreport/internal/storage"
	"bizreport/pkg/contracts/domain"
)

// InputKind selects the reader for an input
type InputKind string

const (
	InputCSV  InputKind = "csv"
	InputXLSX InputKind = "xlsx"
)

// XLSXContentType is the media type of xlsx uploads
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InputKindFromPath picks the reader from a file extension
func InputKindFromPath(path string) (InputKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return InputCSV, nil
	case ".xlsx":
		return InputXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedInput, path)
	}
}

// InputKindFromContentType picks the reader from a request media type.
// Anything that is not an xlsx workbook is read as CSV.
func InputKindFromContentType(contentType string) InputKind {
	mediaType, _, _ := strings.Cut(contentType, ";")
	if strings.EqualFold(strings.TrimSpace(mediaType), XLSXContentType) {
		return InputXLSX
	}
	return InputCSV
}

// CleanRequest describes one input/output pair. Empty fields fall back to
// the pipeline configuration.
type CleanRequest struct {
	Input    string
	Output   string
	Report   string
	Format   string
	Encoding string
	Sheet    string
	Parallel bool
}

// CleanSummary is what a run produced
type CleanSummary struct {
	Result *operations.Result
	Report exporter.RunReport
	Output string
	Format string
}

// VerifySummary describes a verified export
type VerifySummary struct {
	Input          string `json:"input"`
	Rows           int    `json:"rows"`
	BoundsChecked  bool   `json:"bounds_checked"`
	OutlierColumns int    `json:"outlier_columns"`
}

// CleaningService wires input reading, the cleaner and the exporters
type CleaningService struct {
	cfg    *config.Config
	store  *storage.Store
	schema domain.ColumnSchema
	tracer *operations.OperationTracer
	logger *slog.Logger
}

// NewCleaningService creates a cleaning service for the financials schema
func NewCleaningService(cfg *config.Config, store *storage.Store, tracer *operations.OperationTracer, logger *slog.Logger) *CleaningService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &CleaningService{
		cfg:    cfg,
		store:  store,
		schema: domain.FinancialsSchema(),
		tracer: tracer,
		logger: infrastructure.WithComponent(logger, "cleaning_service"),
	}
}

func (s *CleaningService) withDefaults(req CleanRequest) CleanRequest {
	p := s.cfg.Pipeline
	if req.Input == "" {
		req.Input = p.Input
	}
	if req.Output == "" {
		req.Output = p.Output
	}
	if req.Report == "" {
		req.Report = p.Report
	}
	if req.Encoding == "" {
		req.Encoding = p.Encoding
	}
	if req.Sheet == "" {
		req.Sheet = p.Sheet
	}
	req.Parallel = req.Parallel || p.Parallel
	if req.Format == "" {
		req.Format = exporter.FormatFromPath(req.Output)
	}
	if req.Format == "" {
		req.Format = p.Format
	}
	return req
}

// Clean reads req.Input, runs the cleaner and writes the table to
// req.Output and the run report to req.Report when set. Nothing is written
// unless every stage succeeds.
func (s *CleaningService) Clean(ctx context.Context, req CleanRequest) (*CleanSummary, error) {
	req = s.withDefaults(req)
	if req.Input == "" || req.Output == "" {
		return nil, fmt.Errorf("%w: input and output locations are required", ErrInvalidInput)
	}

	in, err := storage.ParseLocation(req.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	out, err := storage.ParseLocation(req.Output)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	var reportLoc *storage.Location
	if req.Report != "" {
		loc, err := storage.ParseLocation(req.Report)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		reportLoc = &loc
	}

	kind, err := InputKindFromPath(in.Name())
	if err != nil {
		return nil, err
	}
	writer, err := exporter.NewTableWriter(req.Format, s.cfg.Pipeline, s.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.logger.InfoContext(ctx, "Starting cleaning run",
		slog.String("input", in.String()),
		slog.String("output", out.String()),
		slog.String("format", writer.Format()),
		slog.Bool("parallel", req.Parallel))

	src, err := s.store.Open(ctx, in)
	if err != nil {
		return nil, err
	}
	raw, err := ReadInput(src, kind, dataprocessing.ReaderOptions{Encoding: req.Encoding}, req.Sheet)
	src.Close()
	if err != nil {
		return nil, err
	}

	result, err := s.run(ctx, raw, req.Parallel)
	if err != nil {
		return nil, err
	}

	// Serialize both documents before touching any output so an encoding
	// error leaves nothing behind
	var table bytes.Buffer
	if err := writer.WriteTable(&table, result.Table); err != nil {
		return nil, err
	}
	report := exporter.NewRunReport(result)
	report.Input = in.String()
	report.Output = out.String()
	report.Format = writer.Format()

	outputs := []output{{loc: out, contentType: writer.ContentType(), data: table.Bytes()}}
	if reportLoc != nil {
		var doc bytes.Buffer
		if err := exporter.WriteReport(&doc, report); err != nil {
			return nil, err
		}
		outputs = append(outputs, output{loc: *reportLoc, contentType: "application/json", data: doc.Bytes()})
	}
	if err := s.publish(ctx, outputs...); err != nil {
		return nil, err
	}

	return &CleanSummary{Result: result, Report: report, Output: out.String(), Format: writer.Format()}, nil
}

// CleanReader cleans an in-memory source, as received by the HTTP API
func (s *CleaningService) CleanReader(ctx context.Context, r io.Reader, kind InputKind, encoding, sheet string) (*operations.Result, error) {
	if encoding == "" {
		encoding = s.cfg.Pipeline.Encoding
	}
	raw, err := ReadInput(r, kind, dataprocessing.ReaderOptions{Encoding: encoding}, sheet)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, raw, s.cfg.Pipeline.Parallel)
}

// Verify re-ingests a canonical CSV export and checks the cleaned-table
// invariants. With a report location the values are also checked against
// the bounds recorded for the run that produced the export.
func (s *CleaningService) Verify(ctx context.Context, input, reportLocation string) (*VerifySummary, error) {
	in, err := storage.ParseLocation(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	src, err := s.store.Open(ctx, in)
	if err != nil {
		return nil, err
	}
	table, err := dataprocessing.ReadCanonical(src)
	src.Close()
	if err != nil {
		return nil, err
	}

	var report *domain.OutlierReport
	if reportLocation != "" {
		report, err = s.loadBounds(ctx, reportLocation)
		if err != nil {
			return nil, err
		}
	}

	if err := dataprocessing.Verify(table, domain.CanonicalFinancialsSchema(), report); err != nil {
		s.logger.WarnContext(ctx, "Verification failed",
			slog.String("input", in.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	summary := &VerifySummary{Input: in.String(), Rows: table.Len(), BoundsChecked: report != nil}
	if report != nil {
		summary.OutlierColumns = len(report.Columns)
	}
	s.logger.InfoContext(ctx, "Verification passed",
		slog.String("input", summary.Input),
		slog.Int("rows", summary.Rows),
		slog.Bool("bounds_checked", summary.BoundsChecked))
	return summary, nil
}

// loadBounds reads the bounds section of a run report
func (s *CleaningService) loadBounds(ctx context.Context, location string) (*domain.OutlierReport, error) {
	loc, err := storage.ParseLocation(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	src, err := s.store.Open(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var doc exporter.RunReport
	if err := json.NewDecoder(src).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	if len(doc.Bounds) == 0 {
		return nil, fmt.Errorf("%w: no bounds recorded", ErrInvalidReport)
	}

	report := &domain.OutlierReport{}
	for _, column := range s.schema.OutlierColumns() {
		b, ok := doc.Bounds[column]
		if !ok {
			return nil, fmt.Errorf("%w: no bounds for column %q", ErrInvalidReport, column)
		}
		report.Columns = append(report.Columns, domain.ColumnOutliers{Column: column, Bounds: b})
	}
	return report, nil
}

func (s *CleaningService) run(ctx context.Context, raw *domain.RawTable, parallel bool) (*operations.Result, error) {
	opts := []operations.Option{
		operations.WithLogger(s.logger),
		operations.WithParallelColumns(parallel),
	}
	if s.tracer != nil {
		opts = append(opts, operations.WithTracer(s.tracer))
	}
	return operations.NewCleaner(s.schema, opts...).Run(ctx, raw)
}

type output struct {
	loc         storage.Location
	contentType string
	data        []byte
}

// publish stages every output before closing any of them, so a location
// that cannot be created or written leaves nothing behind. Outputs are
// closed in order; a failed Close aborts the ones not yet published.
func (s *CleaningService) publish(ctx context.Context, outputs ...output) error {
	start := time.Now()
	writers := make([]storage.Writer, 0, len(outputs))
	abort := func(pending []storage.Writer, err error) error {
		for _, w := range pending {
			if abortErr := w.Abort(); abortErr != nil {
				s.logger.WarnContext(ctx, "Failed to discard staged output", slog.String("error", abortErr.Error()))
				err = errors.Join(err, abortErr)
			}
		}
		return err
	}

	for _, o := range outputs {
		w, err := s.store.Create(ctx, o.loc, o.contentType)
		if err != nil {
			return abort(writers, err)
		}
		writers = append(writers, w)
		if _, err := w.Write(o.data); err != nil {
			return abort(writers, err)
		}
	}

	for i, w := range writers {
		if err := w.Close(); err != nil {
			return abort(writers[i+1:], err)
		}
		s.logger.DebugContext(ctx, "Published output",
			slog.String("location", outputs[i].loc.String()),
			slog.Int("size_bytes", len(outputs[i].data)),
			slog.Duration("duration", time.Since(start)))
	}
	return nil
}

// ReadInput reads a raw table with the reader for kind
func ReadInput(r io.Reader, kind InputKind, opts dataprocessing.ReaderOptions, sheet string) (*domain.RawTable, error) {
	switch kind {
	case InputCSV, "":
		return dataprocessing.ReadCSV(r, opts)
	case InputXLSX:
		return dataprocessing.ReadXLSX(r, sheet)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInput, kind)
	}
}
