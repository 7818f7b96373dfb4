package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	apperrors "bizreport/internal/errors"
	"bizreport/pkg/contracts/domain"
)

// ZeroSentinel is the cell text that stands for a zero amount.
const ZeroSentinel = "-"

// ErrOutOfRange reports an amount that does not fit in an int64.
var ErrOutOfRange = errors.New("amount out of int64 range")

var (
	currencyReplacer = strings.NewReplacer("$", "", ",", "", "(", "", ")", "")

	minAmount = decimal.NewFromInt(math.MinInt64)
	maxAmount = decimal.NewFromInt(math.MaxInt64)
)

// CoerceCurrency converts currency text such as " $1,200.50 " to an integer.
// Symbol, thousand separators and parentheses are removed in that order; a
// lone dash means zero; the remaining number is truncated toward zero.
//
// Parentheses do not negate: "(500)" yields 500. Amounts beyond the int64
// range return ErrOutOfRange.
func CoerceCurrency(s string) (int64, error) {
	cleaned := strings.TrimSpace(currencyReplacer.Replace(s))
	if cleaned == ZeroSentinel {
		cleaned = "0"
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, err
	}
	d = d.Truncate(0)
	if d.LessThan(minAmount) || d.GreaterThan(maxAmount) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, cleaned)
	}
	return d.IntPart(), nil
}

// ParseIntegerText parses a plain base-10 integer, ignoring surrounding space.
func ParseIntegerText(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// Coercer converts numeric-as-text columns to integer columns.
type Coercer struct {
	schema   domain.ColumnSchema
	parallel bool
	logger   *slog.Logger
}

// CoercerOption configures a Coercer.
type CoercerOption func(*Coercer)

// WithParallelCoercion converts columns concurrently. Results and the
// reported error do not depend on this setting.
func WithParallelCoercion(enabled bool) CoercerOption {
	return func(c *Coercer) { c.parallel = enabled }
}

// NewCoercer creates a coercer for schema.
func NewCoercer(schema domain.ColumnSchema, logger *slog.Logger, opts ...CoercerOption) *Coercer {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coercer{
		schema: schema,
		logger: logger.With(slog.String("component", "coercer")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Coerce converts every currency-text and integer-text column. Columns
// declared numeric must already hold integers and pass through unchanged.
// The first failing cell in canonical column order is reported.
func (c *Coercer) Coerce(ctx context.Context, t *domain.Table) (*domain.Table, error) {
	var targets []domain.ColumnSpec
	for _, spec := range c.schema.Canonical() {
		switch spec.Type {
		case domain.SemanticCurrencyText, domain.SemanticIntegerText, domain.SemanticNumeric:
			targets = append(targets, spec)
		}
	}

	results := make([]*domain.Column, len(targets))
	errs := make([]error, len(targets))
	convert := func(i int) {
		col, ok := t.Column(targets[i].Canonical)
		if !ok {
			errs[i] = apperrors.NewMissingColumnError(targets[i].Canonical)
			return
		}
		results[i], errs[i] = c.coerceColumn(targets[i], col, t.RowIDs)
	}

	if c.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range targets {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				convert(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range targets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			convert(i)
			if errs[i] != nil {
				break
			}
		}
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := t
	for _, col := range results {
		out = out.WithColumn(col)
	}
	return out, nil
}

func (c *Coercer) coerceColumn(spec domain.ColumnSpec, col *domain.Column, rowIDs []int) (*domain.Column, error) {
	if spec.Type == domain.SemanticNumeric {
		if col.Kind != domain.KindInteger {
			return nil, apperrors.NewKindError(spec.Canonical, domain.KindInteger.String(), col.Kind.String())
		}
		return col, nil
	}
	if col.Kind != domain.KindText {
		return nil, apperrors.NewKindError(spec.Canonical, domain.KindText.String(), col.Kind.String())
	}

	parse := ParseIntegerText
	if spec.Type == domain.SemanticCurrencyText {
		parse = CoerceCurrency
	}

	values := make([]int64, len(col.Text))
	for i, cell := range col.Text {
		v, err := parse(cell)
		if err != nil {
			return nil, apperrors.NewParseError(spec.Canonical, rowIDs[i], cell, err)
		}
		values[i] = v
	}
	c.logger.Debug("coerced column", slog.String("column", spec.Canonical), slog.Int("rows", len(values)))
	return domain.NewIntColumn(spec.Canonical, values), nil
}
