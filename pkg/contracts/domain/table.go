package domain

import (
	"fmt"
	"strconv"
	"time"
)

// RawTable is a tabular source exactly as read: one header row, every cell
// still text.
type RawTable struct {
	Header  []string
	Records [][]string
}

// Kind is the physical representation of a column's values.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindDate
	KindCategory
)

// String returns the export name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindDate:
		return "date"
	case KindCategory:
		return "category"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is one named, typed column. Exactly one of Text, Ints or Dates is
// populated, selected by Kind; KindCategory uses Text.
type Column struct {
	Name  string
	Kind  Kind
	Text  []string
	Ints  []int64
	Dates []time.Time
}

// NewTextColumn creates a text column.
func NewTextColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: KindText, Text: values}
}

// NewIntColumn creates an integer column.
func NewIntColumn(name string, values []int64) *Column {
	return &Column{Name: name, Kind: KindInteger, Ints: values}
}

// NewDateColumn creates a calendar date column.
func NewDateColumn(name string, values []time.Time) *Column {
	return &Column{Name: name, Kind: KindDate, Dates: values}
}

// NewCategoryColumn creates a categorical column.
func NewCategoryColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: KindCategory, Text: values}
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case KindInteger:
		return len(c.Ints)
	case KindDate:
		return len(c.Dates)
	default:
		return len(c.Text)
	}
}

// Format renders value i in its canonical export form: base-10 integers,
// ISO 8601 dates, text verbatim.
func (c *Column) Format(i int) string {
	switch c.Kind {
	case KindInteger:
		return strconv.FormatInt(c.Ints[i], 10)
	case KindDate:
		return c.Dates[i].Format(ISODateLayout)
	default:
		return c.Text[i]
	}
}

// Take returns a new column holding the values at the given positions.
func (c *Column) Take(positions []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	switch c.Kind {
	case KindInteger:
		out.Ints = make([]int64, len(positions))
		for i, p := range positions {
			out.Ints[i] = c.Ints[p]
		}
	case KindDate:
		out.Dates = make([]time.Time, len(positions))
		for i, p := range positions {
			out.Dates[i] = c.Dates[p]
		}
	default:
		out.Text = make([]string, len(positions))
		for i, p := range positions {
			out.Text[i] = c.Text[p]
		}
	}
	return out
}

// Table is an ordered sequence of rows stored column by column. RowIDs holds
// the zero-based position of each row in the original input and survives
// deduplication, so it identifies rows in error messages and reports.
//
// Stages take ownership of the table they receive and return a new Table;
// callers must not keep using a table after handing it to a stage.
type Table struct {
	Columns []*Column
	RowIDs  []int
}

// NewTable builds a table from columns. The row identities default to
// 0..n-1 when rowIDs is nil.
func NewTable(rowIDs []int, columns ...*Column) (*Table, error) {
	n := 0
	if len(columns) > 0 {
		n = columns[0].Len()
	}
	for _, c := range columns {
		if c.Len() != n {
			return nil, fmt.Errorf("column %q has %d values, want %d", c.Name, c.Len(), n)
		}
	}
	if rowIDs == nil {
		rowIDs = make([]int, n)
		for i := range rowIDs {
			rowIDs[i] = i
		}
	}
	if len(rowIDs) != n {
		return nil, fmt.Errorf("table has %d row ids for %d rows", len(rowIDs), n)
	}
	return &Table{Columns: columns, RowIDs: rowIDs}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.RowIDs)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Row renders row i in canonical export form.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Format(i)
	}
	return row
}

// WithColumn returns a table where the column of the same name is replaced
// by c. The other columns are moved, not copied.
func (t *Table) WithColumn(c *Column) *Table {
	cols := make([]*Column, len(t.Columns))
	for i, existing := range t.Columns {
		if existing.Name == c.Name {
			cols[i] = c
		} else {
			cols[i] = existing
		}
	}
	return &Table{Columns: cols, RowIDs: t.RowIDs}
}

// Without returns a table lacking the named columns.
func (t *Table) Without(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	cols := make([]*Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !drop[c.Name] {
			cols = append(cols, c)
		}
	}
	return &Table{Columns: cols, RowIDs: t.RowIDs}
}

// Take returns a table holding only the rows at the given positions, in the
// given order.
func (t *Table) Take(positions []int) *Table {
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Take(positions)
	}
	ids := make([]int, len(positions))
	for i, p := range positions {
		ids[i] = t.RowIDs[p]
	}
	return &Table{Columns: cols, RowIDs: ids}
}
