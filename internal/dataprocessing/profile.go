package dataprocessing

import (
	"sort"
	"strings"

	"bizreport/pkg/contracts/domain"
)

// RawProfile describes the input before cleaning.
type RawProfile struct {
	Rows int `json:"rows"`
	// EmptyCells counts blank cells per raw column name.
	EmptyCells map[string]int `json:"empty_cells"`
}

// ValueCount is the number of rows holding one distinct value.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// NumericSummary is the range of an integer column.
type NumericSummary struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// TableProfile describes the cleaned table.
type TableProfile struct {
	Rows              int                       `json:"rows"`
	DuplicatesRemoved int                       `json:"duplicates_removed"`
	ValueCounts       map[string][]ValueCount   `json:"value_counts"`
	Numeric           map[string]NumericSummary `json:"numeric"`
}

// Profile pairs the input and output descriptions of one run.
type Profile struct {
	Input  RawProfile   `json:"input"`
	Output TableProfile `json:"output"`
}

// ProfileRaw counts rows and whitespace-only cells per column.
func ProfileRaw(raw *domain.RawTable) RawProfile {
	p := RawProfile{Rows: len(raw.Records), EmptyCells: make(map[string]int, len(raw.Header))}
	for _, name := range raw.Header {
		p.EmptyCells[name] = 0
	}
	for _, record := range raw.Records {
		for i, cell := range record {
			if i < len(raw.Header) && strings.TrimSpace(cell) == "" {
				p.EmptyCells[raw.Header[i]]++
			}
		}
	}
	return p
}

// ProfileTable summarizes a typed table: distinct value counts for text and
// category columns, ranges for integer columns.
func ProfileTable(t *domain.Table, duplicatesRemoved int) TableProfile {
	p := TableProfile{
		Rows:              t.Len(),
		DuplicatesRemoved: duplicatesRemoved,
		ValueCounts:       make(map[string][]ValueCount),
		Numeric:           make(map[string]NumericSummary),
	}
	for _, c := range t.Columns {
		switch c.Kind {
		case domain.KindText, domain.KindCategory:
			p.ValueCounts[c.Name] = ValueCounts(c.Text)
		case domain.KindInteger:
			if len(c.Ints) == 0 {
				continue
			}
			s := NumericSummary{Min: c.Ints[0], Max: c.Ints[0]}
			for _, v := range c.Ints[1:] {
				s.Min = min(s.Min, v)
				s.Max = max(s.Max, v)
			}
			p.Numeric[c.Name] = s
		}
	}
	return p
}

// ValueCounts counts distinct values, most frequent first; ties are broken
// by value.
func ValueCounts(values []string) []ValueCount {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
