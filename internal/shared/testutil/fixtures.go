package testutil

import (
	"bytes"
	"encoding/csv"

	"bizreport/pkg/contracts/domain"
)

// DefaultCells is one row of the sales export, keyed by raw column name.
var DefaultCells = map[string]string{
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

// Cells overrides DefaultCells by raw column name.
type Cells map[string]string

// RawHeader returns the raw header of the sales export.
func RawHeader() []string {
	specs := domain.FinancialsSchema().Columns
	header := make([]string, len(specs))
	for i, s := range specs {
		header[i] = s.Raw
	}
	return header
}

// RawRecord builds a record from DefaultCells with the given overrides.
func RawRecord(overrides Cells) []string {
	header := RawHeader()
	record := make([]string, len(header))
	for i, name := range header {
		record[i] = DefaultCells[name]
		if v, ok := overrides[name]; ok {
			record[i] = v
		}
	}
	return record
}

// RawTable builds a raw table with the export header.
func RawTable(records ...[]string) *domain.RawTable {
	return &domain.RawTable{Header: RawHeader(), Records: records}
}

// RawCSV renders header and records as CSV bytes.
func RawCSV(records ...[]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(RawHeader())
	_ = w.WriteAll(records)
	return buf.Bytes()
}

// SalesColumn returns len(values) records that differ only in country and
// carry values in the "  Sales " column. The rows are distinct.
func SalesColumn(values ...string) [][]string {
	countries := []string{"Canada", "France", "Germany", "Mexico", "United States of America"}
	records := make([][]string, len(values))
	for i, v := range values {
		country := countries[i%len(countries)]
		if i >= len(countries) {
			country += " " + string(rune('A'+i/len(countries)))
		}
		records[i] = RawRecord(Cells{"Country": country, "  Sales ": v})
	}
	return records
}
