package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	apperrors "bizreport/internal/errors"
	"bizreport/pkg/contracts/domain"
)

// Supported input encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingISO88591    = "iso-8859-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// recordColumn names whole-record failures in ParseError.
const recordColumn = "(record)"

// ReaderOptions controls CSV ingestion.
type ReaderOptions struct {
	// Encoding of the input; empty means UTF-8.
	Encoding string
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// decoder wraps r so that it yields UTF-8.
func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8, "utf8":
		return r, nil
	case EncodingWindows1252, "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case EncodingISO88591, "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("unsupported encoding %q", encoding))
	}
}

// ReadCSV reads a delimited text table. The first record is the header and
// its names are kept verbatim. Every record must have as many cells as the
// header.
func ReadCSV(r io.Reader, opts ReaderOptions) (*domain.RawTable, error) {
	src, err := decoder(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(src)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	header, err := cr.Read()
	if err == io.EOF {
		return nil, apperrors.NewParsingError("input has no header row", nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read header", err)
	}

	table := &domain.RawTable{Header: header}
	for row := 0; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParseError(recordColumn, row, "", err)
		}
		if len(record) != len(header) {
			return nil, apperrors.NewParseError(recordColumn, row, strings.Join(record, string(cr.Comma)),
				fmt.Errorf("record has %d fields, header has %d", len(record), len(header)))
		}
		table.Records = append(table.Records, record)
	}
	return table, nil
}

// ReadXLSX reads one worksheet of a workbook; the first sheet when sheet is
// empty. Rows shorter than the header are padded with empty cells.
func ReadXLSX(r io.Reader, sheet string) (*domain.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, apperrors.NewParsingError("no sheets found in workbook", nil)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to get rows of sheet %q", sheet), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("sheet %q has no header row", sheet), nil)
	}

	header := rows[0]
	table := &domain.RawTable{Header: header}
	for i, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, apperrors.NewParseError(recordColumn, i, strings.Join(row, ","),
				fmt.Errorf("row has %d cells, header has %d", len(row), len(header)))
		}
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		table.Records = append(table.Records, row)
	}
	return table, nil
}

// ReadCanonical re-ingests a cleaned export: columns named canonically,
// integers in base 10 and ISO 8601 dates. No coercion rules are applied.
func ReadCanonical(r io.Reader) (*domain.Table, error) {
	raw, err := ReadCSV(r, ReaderOptions{})
	if err != nil {
		return nil, err
	}
	return TypeCanonical(raw, domain.CanonicalFinancialsSchema())
}

// TypeCanonical converts a raw table whose cells are already in canonical
// form into typed columns.
func TypeCanonical(raw *domain.RawTable, schema domain.ColumnSchema) (*domain.Table, error) {
	text, err := NewNormalizer(schema, nil).Rename(raw)
	if err != nil {
		return nil, err
	}

	cols := make([]*domain.Column, 0, len(schema.Columns))
	for _, spec := range schema.Canonical() {
		col, _ := text.Column(spec.Canonical)
		switch spec.Type {
		case domain.SemanticNumeric:
			ints := make([]int64, len(col.Text))
			for i, cell := range col.Text {
				v, err := strconv.ParseInt(cell, 10, 64)
				if err != nil {
					return nil, apperrors.NewParseError(spec.Canonical, i, cell, err)
				}
				ints[i] = v
			}
			cols = append(cols, domain.NewIntColumn(spec.Canonical, ints))
		case domain.SemanticDate:
			dates := make([]time.Time, len(col.Text))
			for i, cell := range col.Text {
				d, err := time.Parse(domain.ISODateLayout, cell)
				if err != nil {
					return nil, apperrors.NewParseError(spec.Canonical, i, cell, err)
				}
				dates[i] = d
			}
			cols = append(cols, domain.NewDateColumn(spec.Canonical, dates))
		case domain.SemanticCategoricalText:
			cols = append(cols, domain.NewCategoryColumn(spec.Canonical, col.Text))
		default:
			cols = append(cols, col)
		}
	}
	return domain.NewTable(nil, cols...)
}
