package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizreport/internal/config"
	"bizreport/internal/dataprocessing"
	"bizreport/internal/operations"
	"bizreport/internal/shared/testutil"
	"bizreport/pkg/contracts/domain"
)

var discard = slog.New(slog.DiscardHandler)

// cleanedResult runs the full pipeline over a small sales extract
func cleanedResult(t *testing.T) *operations.Result {
	t.Helper()
	records := testutil.SalesColumn("10", "12", "13", "14", "100")
	records = append(records, testutil.RawRecord(testutil.Cells{
		"Country":      "Mexico",
		"  Sales ":     "13",
		"Date":         "1/12/2014",
		" Month Name ": " December ",
	}))
	result, err := operations.NewCleaner(domain.FinancialsSchema(),
		operations.WithLogger(discard),
	).Run(context.Background(), testutil.RawTable(records...))
	require.NoError(t, err)
	return result
}

func smallTable(t *testing.T) *domain.Table {
	t.Helper()
	table, err := domain.NewTable(nil,
		domain.NewTextColumn("segment", []string{"Government", "Midmarket"}),
		domain.NewIntColumn("sales", []int64{32370, -5}),
		domain.NewDateColumn("date", []time.Time{
			time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2014, 12, 31, 0, 0, 0, 0, time.UTC),
		}),
		domain.NewCategoryColumn("month_name", []string{"January", "December"}),
	)
	require.NoError(t, err)
	return table
}

func TestCSVWriter_WriteTable(t *testing.T) {
	tests := []struct {
		name    string
		bom     bool
		wantBOM bool
	}{
		{"without BOM", false, false},
		{"with BOM", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewCSVWriter(tt.bom, discard).WriteTable(&buf, smallTable(t)))

			content := buf.Bytes()
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(content, utf8BOM))
			content = bytes.TrimPrefix(content, utf8BOM)

			rows, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
			require.NoError(t, err)
			assert.Equal(t, [][]string{
				{"segment", "sales", "date", "month_name"},
				{"Government", "32370", "2014-01-01", "January"},
				{"Midmarket", "-5", "2014-12-31", "December"},
			}, rows)
		})
	}
}

func TestCSVWriter_EmptyTable(t *testing.T) {
	table, err := domain.NewTable(nil, domain.NewTextColumn("segment", []string{}))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(false, discard).WriteTable(&buf, table))
	assert.Equal(t, "segment\n", buf.String())
}

func TestCSV_RoundTrip(t *testing.T) {
	result := cleanedResult(t)

	for _, bom := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, NewCSVWriter(bom, discard).WriteTable(&buf, result.Table))

		reread, err := dataprocessing.ReadCanonical(&buf)
		require.NoError(t, err)
		require.Equal(t, result.Table.Len(), reread.Len())
		assert.Equal(t, result.Table.Names(), reread.Names())
		for i := 0; i < reread.Len(); i++ {
			assert.Equal(t, result.Table.Row(i), reread.Row(i))
		}
		assert.NoError(t, dataprocessing.VerifyStructure(reread, domain.CanonicalFinancialsSchema()))
		assert.NoError(t, dataprocessing.VerifyBounds(reread, domain.CanonicalFinancialsSchema(), result.Outliers))
	}
}

func TestNewTableWriter(t *testing.T) {
	tests := []struct {
		format      string
		want        string
		expectError bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{"PARQUET", FormatParquet, false},
		{"xlsx", FormatXLSX, false},
		{"json", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w, err := NewTableWriter(tt.format, config.PipelineConfig{}, discard)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Format())
			assert.NotEmpty(t, w.ContentType())
		})
	}
}

func TestNewTableWriter_CSVBOM(t *testing.T) {
	w, err := NewTableWriter(FormatCSV, config.PipelineConfig{CSVBOM: true}, discard)
	require.NoError(t, err)
	assert.True(t, w.(*CSVWriter).BOMPrefix)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatCSV, FormatFromPath("out/cleaned.CSV"))
	assert.Equal(t, FormatParquet, FormatFromPath("s3://bucket/cleaned.parquet"))
	assert.Equal(t, FormatXLSX, FormatFromPath("cleaned.xlsx"))
	assert.Empty(t, FormatFromPath("cleaned"))
}

func TestWriteReport(t *testing.T) {
	result := cleanedResult(t)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, NewRunReport(result)))

	var doc struct {
		RunID    string `json:"run_id"`
		Outliers map[string][]struct {
			Row      int   `json:"row"`
			Original int64 `json:"original"`
			Clipped  int64 `json:"clipped"`
		} `json:"outliers"`
		Bounds         map[string]domain.Bounds `json:"bounds"`
		Steps          []map[string]any         `json:"steps"`
		EquivalentRows int                      `json:"equivalent_rows"`
		Profile        struct {
			Input struct {
				Rows int `json:"rows"`
			} `json:"input"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, result.RunID, doc.RunID)
	assert.Equal(t, 6, doc.Profile.Input.Rows)
	assert.Len(t, doc.Steps, 7)
	assert.Len(t, doc.Bounds, len(domain.FinancialsSchema().OutlierColumns()))

	// Columns without clipped cells are present with an empty list
	require.Contains(t, doc.Outliers, "profit")
	assert.Empty(t, doc.Outliers["profit"])

	require.Contains(t, doc.Outliers, "sales")
	require.NotEmpty(t, doc.Outliers["sales"])
	clipped := doc.Outliers["sales"][0]
	assert.Equal(t, 4, clipped.Row)
	assert.Equal(t, int64(100), clipped.Original)
	assert.Equal(t, int64(16), clipped.Clipped)
	assert.Equal(t, 16.0, doc.Bounds["sales"].Upper)
}
