package dataprocessing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bizreport/internal/errors"
	"bizreport/pkg/contracts/domain"
)

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{name: "empty", sorted: nil, p: 0.25, want: 0},
		{name: "single", sorted: []float64{7}, p: 0.75, want: 7},
		{name: "exact order statistic", sorted: []float64{10, 12, 13, 14, 100}, p: 0.25, want: 12},
		{name: "interpolated lower", sorted: []float64{1, 2, 3, 4}, p: 0.25, want: 1.75},
		{name: "interpolated upper", sorted: []float64{1, 2, 3, 4}, p: 0.75, want: 3.25},
		{name: "minimum", sorted: []float64{1, 2, 3}, p: 0, want: 1},
		{name: "maximum", sorted: []float64{1, 2, 3}, p: 1, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.sorted, tt.p), 1e-9)
		})
	}
}

func TestComputeBounds_Golden(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
		want   domain.Bounds
	}{
		{
			name:   "five values",
			values: []int64{10, 12, 13, 14, 100},
			want:   domain.Bounds{Q1: 12, Q3: 14, IQR: 2, Lower: 9, Upper: 17},
		},
		{
			name:   "unsorted input",
			values: []int64{100, 14, 10, 13, 12},
			want:   domain.Bounds{Q1: 12, Q3: 14, IQR: 2, Lower: 9, Upper: 17},
		},
		{
			name:   "fractional fences",
			values: []int64{0, 1, 2, 3, 4, 5, 6, 100},
			want:   domain.Bounds{Q1: 1.75, Q3: 5.25, IQR: 3.5, Lower: -3.5, Upper: 10.5},
		},
		{
			name:   "constant column",
			values: []int64{5, 5, 5},
			want:   domain.Bounds{Q1: 5, Q3: 5, IQR: 0, Lower: 5, Upper: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBounds(tt.values)
			assert.InDelta(t, tt.want.Q1, got.Q1, 1e-9)
			assert.InDelta(t, tt.want.Q3, got.Q3, 1e-9)
			assert.InDelta(t, tt.want.IQR, got.IQR, 1e-9)
			assert.InDelta(t, tt.want.Lower, got.Lower, 1e-9)
			assert.InDelta(t, tt.want.Upper, got.Upper, 1e-9)
		})
	}
}

func TestClipColumn(t *testing.T) {
	t.Run("clips to exact bound", func(t *testing.T) {
		values := []int64{10, 12, 13, 14, 100}
		out, entries := ClipColumn(values, []int{0, 1, 2, 3, 4}, ComputeBounds(values))

		assert.Equal(t, []int64{10, 12, 13, 14, 17}, out)
		assert.Equal(t, []domain.OutlierEntry{{RowID: 4, Original: 100, Clipped: 17}}, entries)
		assert.Equal(t, int64(100), values[4], "input must not be modified")
	})

	t.Run("fractional fences clip inward", func(t *testing.T) {
		values := []int64{-100, 0, 1, 2, 3, 4, 5, 6}
		b := ComputeBounds(values)
		require.InDelta(t, -4.5, b.Lower, 1e-9)
		require.InDelta(t, 9.5, b.Upper, 1e-9)

		out, entries := ClipColumn(values, []int{10, 11, 12, 13, 14, 15, 16, 17}, b)
		assert.Equal(t, int64(-4), out[0])
		assert.Equal(t, []domain.OutlierEntry{{RowID: 10, Original: -100, Clipped: -4}}, entries)
		for _, v := range out {
			assert.True(t, b.Contains(float64(v)))
		}
	})

	t.Run("no outliers", func(t *testing.T) {
		out, entries := ClipColumn([]int64{1, 2, 3}, []int{0, 1, 2}, ComputeBounds([]int64{1, 2, 3}))
		assert.Equal(t, []int64{1, 2, 3}, out)
		assert.Empty(t, entries)
	})
}

func TestClipper_ColumnsIndependent(t *testing.T) {
	schema := domain.ColumnSchema{Columns: []domain.ColumnSpec{
		{Raw: "a", Canonical: "a", Type: domain.SemanticNumeric, Outliers: true},
		{Raw: "b", Canonical: "b", Type: domain.SemanticNumeric, Outliers: true},
		{Raw: "c", Canonical: "c", Type: domain.SemanticNumeric},
	}}

	for _, parallel := range []bool{false, true} {
		t.Run(fmt.Sprintf("parallel=%v", parallel), func(t *testing.T) {
			table := intTable(t, map[string][]int64{
				"a": {10, 12, 13, 14, 100},
				"b": {-50, 1, 2, 3, 4},
				"c": {1000, 1, 1, 1, 1},
			}, "a", "b", "c")

			out, report, err := NewClipper(schema, nil, WithParallelClipping(parallel)).Clip(context.Background(), table)
			require.NoError(t, err)

			a, _ := out.Column("a")
			b, _ := out.Column("b")
			c, _ := out.Column("c")
			assert.Equal(t, []int64{10, 12, 13, 14, 17}, a.Ints)
			// b: Q1=1 Q3=3 IQR=2 -> [-2, 6]
			assert.Equal(t, []int64{-2, 1, 2, 3, 4}, b.Ints)
			assert.Equal(t, []int64{1000, 1, 1, 1, 1}, c.Ints, "non-outlier columns are untouched")

			require.Len(t, report.Columns, 2)
			assert.Equal(t, "a", report.Columns[0].Column)
			assert.Equal(t, "b", report.Columns[1].Column)
			assert.Equal(t, map[string][]domain.OutlierEntry{
				"a": {{RowID: 4, Original: 100, Clipped: 17}},
				"b": {{RowID: 0, Original: -50, Clipped: -2}},
			}, report.ByColumn())
			assert.Equal(t, 2, report.Total())
		})
	}
}

func TestClipper_SecondPassIsNoOp(t *testing.T) {
	schema := domain.ColumnSchema{Columns: []domain.ColumnSpec{
		{Raw: "x", Canonical: "x", Type: domain.SemanticNumeric, Outliers: true},
		{Raw: "y", Canonical: "y", Type: domain.SemanticNumeric, Outliers: true},
	}}
	clipper := NewClipper(schema, nil)

	table := intTable(t, map[string][]int64{
		"x": {10, 12, 13, 14, 100},
		"y": {0, 1, 2, 3, 4},
	}, "x", "y")

	first, firstReport, err := clipper.Clip(context.Background(), table)
	require.NoError(t, err)
	firstX, _ := first.Column("x")
	snapshot := append([]int64(nil), firstX.Ints...)

	second, secondReport, err := clipper.Clip(context.Background(), first)
	require.NoError(t, err)
	assert.Zero(t, secondReport.Total())

	secondX, _ := second.Column("x")
	assert.Equal(t, snapshot, secondX.Ints)

	b1, _ := firstReport.Bounds("x")
	b2, _ := secondReport.Bounds("x")
	assert.GreaterOrEqual(t, b1.Upper-b1.Lower, b2.Upper-b2.Lower)
}

func TestClipper_FractionalSecondPass(t *testing.T) {
	schema := domain.ColumnSchema{Columns: []domain.ColumnSpec{
		{Raw: "x", Canonical: "x", Type: domain.SemanticNumeric, Outliers: true},
	}}
	clipper := NewClipper(schema, nil)
	table := intTable(t, map[string][]int64{"x": {0, 1, 2, 3, 4, 5, 6, 100}}, "x")

	first, report, err := clipper.Clip(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, map[string][]domain.OutlierEntry{"x": {{RowID: 7, Original: 100, Clipped: 10}}}, report.ByColumn())

	_, again, err := clipper.Clip(context.Background(), first)
	require.NoError(t, err)
	assert.Zero(t, again.Total())
}

func TestClipper_EmptyTable(t *testing.T) {
	schema := domain.ColumnSchema{Columns: []domain.ColumnSpec{
		{Raw: "x", Canonical: "x", Type: domain.SemanticNumeric, Outliers: true},
	}}
	table := intTable(t, map[string][]int64{"x": {}}, "x")

	out, report, err := NewClipper(schema, nil).Clip(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, map[string][]domain.OutlierEntry{"x": {}}, report.ByColumn())
}

func TestClipper_RequiresIntegerColumn(t *testing.T) {
	schema := domain.ColumnSchema{Columns: []domain.ColumnSpec{
		{Raw: "x", Canonical: "x", Type: domain.SemanticCurrencyText, Outliers: true},
	}}
	table, err := domain.NewTable(nil, domain.NewTextColumn("x", []string{"$1"}))
	require.NoError(t, err)

	_, _, err = NewClipper(schema, nil).Clip(context.Background(), table)
	assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
}

func TestClipper_CancelledContext(t *testing.T) {
	schema := domain.ColumnSchema{Columns: []domain.ColumnSpec{
		{Raw: "x", Canonical: "x", Type: domain.SemanticNumeric, Outliers: true},
		{Raw: "y", Canonical: "y", Type: domain.SemanticNumeric, Outliers: true},
	}}

	for _, parallel := range []bool{false, true} {
		t.Run(fmt.Sprintf("parallel=%v", parallel), func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			table := intTable(t, map[string][]int64{
				"x": {10, 12, 13, 14, 100},
				"y": {0, 1, 2, 3, 4},
			}, "x", "y")
			_, _, err := NewClipper(schema, nil, WithParallelClipping(parallel)).Clip(ctx, table)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func BenchmarkClipper(b *testing.B) {
	schema := domain.FinancialsSchema()
	sizes := []int{700, 10_000, 100_000}

	for _, size := range sizes {
		cols := make([]*domain.Column, 0, len(schema.OutlierColumns()))
		for j, name := range schema.OutlierColumns() {
			values := make([]int64, size)
			for i := range values {
				values[i] = int64((i*7919 + j*104729) % 50_000)
			}
			cols = append(cols, domain.NewIntColumn(name, values))
		}

		for _, parallel := range []bool{false, true} {
			b.Run(fmt.Sprintf("rows_%d/parallel_%v", size, parallel), func(b *testing.B) {
				clipper := NewClipper(schema, nil, WithParallelClipping(parallel))
				table, err := domain.NewTable(nil, cols...)
				require.NoError(b, err)
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, _, err := clipper.Clip(context.Background(), table); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
