package dataprocessing

import (
	"log/slog"
	"strings"
	"time"

	apperrors "bizreport/internal/errors"
	"bizreport/pkg/contracts/domain"
)

// Parser turns date text into calendar dates and validates categorical
// columns against their domain.
type Parser struct {
	schema  domain.ColumnSchema
	domains map[string]map[string]bool
	logger  *slog.Logger
}

// NewParser creates a parser for schema. Every categorical-text column is
// restricted to the calendar month labels.
func NewParser(schema domain.ColumnSchema, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	months := make(map[string]bool, len(domain.MonthLabels))
	for _, m := range domain.MonthLabels {
		months[m] = true
	}
	domains := make(map[string]map[string]bool)
	for _, spec := range schema.Canonical() {
		if spec.Type == domain.SemanticCategoricalText {
			domains[spec.Canonical] = months
		}
	}
	return &Parser{
		schema:  schema,
		domains: domains,
		logger:  logger.With(slog.String("component", "parser")),
	}
}

// ParseDate parses day/month/year text. The whole cell must match; no
// surrounding text or alternative separators are accepted.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(domain.DateLayout, s)
}

// Parse converts date-text columns to date columns and categorical-text
// columns to category columns. Columns declared date must already hold
// dates.
func (p *Parser) Parse(t *domain.Table) (*domain.Table, error) {
	out := t
	for _, spec := range p.schema.Canonical() {
		var (
			col *domain.Column
			err error
		)
		switch spec.Type {
		case domain.SemanticDateText:
			col, err = p.parseDates(spec, out)
		case domain.SemanticDate:
			col, err = p.requireKind(spec, out, domain.KindDate)
		case domain.SemanticCategoricalText:
			col, err = p.categorize(spec, out)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		out = out.WithColumn(col)
	}
	return out, nil
}

func (p *Parser) requireKind(spec domain.ColumnSpec, t *domain.Table, kind domain.Kind) (*domain.Column, error) {
	col, ok := t.Column(spec.Canonical)
	if !ok {
		return nil, apperrors.NewMissingColumnError(spec.Canonical)
	}
	if col.Kind != kind {
		return nil, apperrors.NewKindError(spec.Canonical, kind.String(), col.Kind.String())
	}
	return col, nil
}

func (p *Parser) parseDates(spec domain.ColumnSpec, t *domain.Table) (*domain.Column, error) {
	col, err := p.requireKind(spec, t, domain.KindText)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(col.Text))
	for i, cell := range col.Text {
		d, err := ParseDate(cell)
		if err != nil {
			return nil, apperrors.NewParseError(spec.Canonical, t.RowIDs[i], cell, err)
		}
		dates[i] = d
	}
	return domain.NewDateColumn(spec.Canonical, dates), nil
}

func (p *Parser) categorize(spec domain.ColumnSpec, t *domain.Table) (*domain.Column, error) {
	col, ok := t.Column(spec.Canonical)
	if !ok {
		return nil, apperrors.NewMissingColumnError(spec.Canonical)
	}
	if col.Kind != domain.KindText && col.Kind != domain.KindCategory {
		return nil, apperrors.NewKindError(spec.Canonical, domain.KindCategory.String(), col.Kind.String())
	}

	allowed := p.domains[spec.Canonical]
	labels := make([]string, len(col.Text))
	for i, cell := range col.Text {
		label := strings.TrimSpace(cell)
		if !allowed[label] {
			return nil, apperrors.NewDomainError(spec.Canonical, t.RowIDs[i], cell)
		}
		labels[i] = label
	}
	return domain.NewCategoryColumn(spec.Canonical, labels), nil
}
