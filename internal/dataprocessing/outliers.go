package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	apperrors "bizreport/internal/errors"
	"bizreport/pkg/contracts/domain"
)

// IQRMultiplier scales the interquartile range into the fences.
const IQRMultiplier = 1.5

// Quantile returns the p-quantile of sorted values using linear
// interpolation between order statistics.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	index := p * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// ComputeBounds derives the IQR fences of values.
func ComputeBounds(values []int64) domain.Bounds {
	sorted := make([]float64, len(values))
	for i, v := range values {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	return domain.Bounds{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - IQRMultiplier*iqr,
		Upper: q3 + IQRMultiplier*iqr,
	}
}

// ClipColumn winsorizes values to b. Fractional fences clip to the nearest
// integer inside the fence. It returns the clipped copy and one entry per
// changed value, in row order.
func ClipColumn(values []int64, rowIDs []int, b domain.Bounds) ([]int64, []domain.OutlierEntry) {
	lo := int64(math.Ceil(b.Lower))
	hi := int64(math.Floor(b.Upper))

	out := make([]int64, len(values))
	var entries []domain.OutlierEntry
	for i, v := range values {
		clipped := v
		fv := float64(v)
		if fv < b.Lower {
			clipped = lo
		} else if fv > b.Upper {
			clipped = hi
		}
		out[i] = clipped
		if clipped != v {
			entries = append(entries, domain.OutlierEntry{RowID: rowIDs[i], Original: v, Clipped: clipped})
		}
	}
	return out, entries
}

// Clipper detects and winsorizes outliers column by column.
type Clipper struct {
	columns  []string
	parallel bool
	logger   *slog.Logger
}

// ClipperOption configures a Clipper.
type ClipperOption func(*Clipper)

// WithParallelClipping processes columns concurrently. The report is still
// ordered by column.
func WithParallelClipping(enabled bool) ClipperOption {
	return func(c *Clipper) { c.parallel = enabled }
}

// NewClipper creates a clipper for the schema's outlier columns.
func NewClipper(schema domain.ColumnSchema, logger *slog.Logger, opts ...ClipperOption) *Clipper {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Clipper{
		columns: schema.OutlierColumns(),
		logger:  logger.With(slog.String("component", "clipper")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clip computes bounds for every outlier column from that column's own
// values and clips it. Empty tables produce no report entries.
func (c *Clipper) Clip(ctx context.Context, t *domain.Table) (*domain.Table, domain.OutlierReport, error) {
	report := domain.OutlierReport{Columns: make([]domain.ColumnOutliers, len(c.columns))}
	results := make([]*domain.Column, len(c.columns))
	errs := make([]error, len(c.columns))

	clip := func(i int) {
		name := c.columns[i]
		col, ok := t.Column(name)
		if !ok {
			errs[i] = apperrors.NewMissingColumnError(name)
			return
		}
		if col.Kind != domain.KindInteger {
			errs[i] = apperrors.NewKindError(name, domain.KindInteger.String(), col.Kind.String())
			return
		}
		if col.Len() == 0 {
			report.Columns[i] = domain.ColumnOutliers{Column: name}
			results[i] = col
			return
		}

		bounds := ComputeBounds(col.Ints)
		clipped, entries := ClipColumn(col.Ints, t.RowIDs, bounds)
		report.Columns[i] = domain.ColumnOutliers{Column: name, Bounds: bounds, Entries: entries}
		results[i] = domain.NewIntColumn(name, clipped)

		for _, e := range entries {
			c.logger.Debug("clipped outlier",
				slog.String("column", name),
				slog.Int("row", e.RowID),
				slog.Int64("original", e.Original),
				slog.Int64("clipped", e.Clipped))
		}
		c.logger.Info("clipped column",
			slog.String("column", name),
			slog.Float64("lower", bounds.Lower),
			slog.Float64("upper", bounds.Upper),
			slog.Int("outliers", len(entries)))
	}

	if c.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range c.columns {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				clip(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, domain.OutlierReport{}, err
		}
	} else {
		for i := range c.columns {
			if err := ctx.Err(); err != nil {
				return nil, domain.OutlierReport{}, err
			}
			clip(i)
		}
	}

	for _, err := range errs {
		if err != nil {
			return nil, domain.OutlierReport{}, err
		}
	}

	out := t
	for _, col := range results {
		out = out.WithColumn(col)
	}
	return out, report, nil
}
