package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bizreport/pkg/contracts/domain"
)

// defaultCells is one row of the sales export, keyed by raw column name.
var defaultCells = map[string]string{
	"Segment":               "Government",
	"Country":               "Canada",
	" Product ":             " Carretera ",
	" Discount Band ":       " None ",
	" Units Sold ":          " $1,618.50 ",
	" Manufacturing Price ": " $3.00 ",
	" Sale Price ":          " $20.00 ",
	" Gross Sales ":         " $32,370.00 ",
	" Discounts ":           " $-   ",
	"  Sales ":              " $32,370.00 ",
	" COGS ":                " $16,185.00 ",
	" Profit ":              " $16,185.00 ",
	"Date":                  "1/1/2014",
	"Month Number":          "1",
	" Month Name ":          " January ",
	"Year":                  "2014",
}

func rawHeader() []string {
	specs := domain.FinancialsSchema().Columns
	header := make([]string, len(specs))
	for i, s := range specs {
		header[i] = s.Raw
	}
	return header
}

// rawRecord builds a record from defaultCells with the given overrides.
func rawRecord(overrides map[string]string) []string {
	header := rawHeader()
	record := make([]string, len(header))
	for i, name := range header {
		record[i] = defaultCells[name]
		if v, ok := overrides[name]; ok {
			record[i] = v
		}
	}
	return record
}

func rawTable(records ...[]string) *domain.RawTable {
	return &domain.RawTable{Header: rawHeader(), Records: records}
}

func intTable(t *testing.T, cols map[string][]int64, order ...string) *domain.Table {
	t.Helper()
	columns := make([]*domain.Column, len(order))
	for i, name := range order {
		columns[i] = domain.NewIntColumn(name, cols[name])
	}
	table, err := domain.NewTable(nil, columns...)
	require.NoError(t, err)
	return table
}
