package domain

// Bounds are the IQR fences of one numeric column.
type Bounds struct {
	Q1    float64 `json:"q1"`
	Q3    float64 `json:"q3"`
	IQR   float64 `json:"iqr"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether v lies within the closed interval [Lower, Upper].
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// OutlierEntry records one clipped cell.
type OutlierEntry struct {
	RowID    int   `json:"row"`
	Original int64 `json:"original"`
	Clipped  int64 `json:"clipped"`
}

// ColumnOutliers holds the fences and clipped cells of one column.
type ColumnOutliers struct {
	Column  string         `json:"column"`
	Bounds  Bounds         `json:"bounds"`
	Entries []OutlierEntry `json:"outliers"`
}

// OutlierReport lists clipped cells per column, ordered by canonical column
// order and then by row position.
type OutlierReport struct {
	Columns []ColumnOutliers `json:"columns"`
}

// ByColumn returns the clipped cells keyed by column name. Columns with no
// clipped cells map to an empty slice.
func (r OutlierReport) ByColumn() map[string][]OutlierEntry {
	out := make(map[string][]OutlierEntry, len(r.Columns))
	for _, c := range r.Columns {
		entries := c.Entries
		if entries == nil {
			entries = []OutlierEntry{}
		}
		out[c.Column] = entries
	}
	return out
}

// Bounds returns the fences computed for column.
func (r OutlierReport) Bounds(column string) (Bounds, bool) {
	for _, c := range r.Columns {
		if c.Column == column {
			return c.Bounds, true
		}
	}
	return Bounds{}, false
}

// Total returns the number of clipped cells across all columns.
func (r OutlierReport) Total() int {
	n := 0
	for _, c := range r.Columns {
		n += len(c.Entries)
	}
	return n
}
