package dataprocessing

import (
	"log/slog"
	"strconv"
	"strings"

	apperrors "bizreport/internal/errors"
	"bizreport/pkg/contracts/domain"
)

// Normalizer maps raw headers to canonical names and removes duplicate rows.
type Normalizer struct {
	schema domain.ColumnSchema
	logger *slog.Logger
}

// NewNormalizer creates a normalizer for schema.
func NewNormalizer(schema domain.ColumnSchema, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		schema: schema,
		logger: logger.With(slog.String("component", "normalizer")),
	}
}

// Rename builds a table with one text column per schema entry, in schema
// order, named canonically. Raw names must match exactly, whitespace
// included. Raw columns the schema does not know are dropped.
func (n *Normalizer) Rename(raw *domain.RawTable) (*domain.Table, error) {
	positions := make(map[string]int, len(raw.Header))
	for i, name := range raw.Header {
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	cols := make([]*domain.Column, len(n.schema.Columns))
	used := make(map[int]bool, len(n.schema.Columns))
	for i, spec := range n.schema.Columns {
		pos, ok := positions[spec.Raw]
		if !ok {
			return nil, apperrors.NewMissingColumnError(spec.Raw)
		}
		used[pos] = true

		values := make([]string, len(raw.Records))
		for r, record := range raw.Records {
			if pos >= len(record) {
				return nil, &apperrors.SchemaMismatchError{
					Column: spec.Raw,
					RowID:  r,
					Reason: "row has " + strconv.Itoa(len(record)) + " cells",
				}
			}
			values[r] = record[pos]
		}
		cols[i] = domain.NewTextColumn(spec.Canonical, values)
	}

	for i, name := range raw.Header {
		if !used[i] {
			n.logger.Warn("dropping unmapped column", slog.String("column", name))
		}
	}

	return domain.NewTable(nil, cols...)
}

// Deduplicate keeps the first occurrence of every distinct row, comparing
// all non-redundant columns. It returns the new table and the number of rows
// removed.
func (n *Normalizer) Deduplicate(t *domain.Table) (*domain.Table, int) {
	var keyCols []*domain.Column
	for _, spec := range n.schema.Canonical() {
		if c, ok := t.Column(spec.Canonical); ok {
			keyCols = append(keyCols, c)
		}
	}

	seen := make(map[string]struct{}, t.Len())
	keep := make([]int, 0, t.Len())
	var b strings.Builder
	for i := 0; i < t.Len(); i++ {
		b.Reset()
		for _, c := range keyCols {
			writeKeyPart(&b, c.Format(i))
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}

	removed := t.Len() - len(keep)
	if removed == 0 {
		return t, 0
	}
	n.logger.Info("removed duplicate rows", slog.Int("removed", removed), slog.Int("remaining", len(keep)))
	return t.Take(keep), removed
}

// DropRedundant removes the columns the schema marks redundant.
func (n *Normalizer) DropRedundant(t *domain.Table) *domain.Table {
	return t.Without(n.schema.Redundant()...)
}

// writeKeyPart appends v to a row key. The length prefix keeps ("a:b", "c")
// distinct from ("a", "b:c").
func writeKeyPart(b *strings.Builder, v string) {
	b.WriteString(strconv.Itoa(len(v)))
	b.WriteByte(':')
	b.WriteString(v)
}
