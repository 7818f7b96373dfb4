package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizreport/internal/exporter"
	"bizreport/internal/shared/testutil"
	"bizreport/pkg/contracts"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd := newRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeRawExport(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "Financials.csv")
	data := testutil.RawCSV(testutil.SalesColumn("10", "12", "13", "14", "100")...)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestVersionCmd_Executes(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cleaner version "+contracts.Version)
	assert.Contains(t, out, "data format "+contracts.DataFormatVersion)
}

func TestCleanCmd(t *testing.T) {
	dir := t.TempDir()
	input := writeRawExport(t, dir)
	output := filepath.Join(dir, "cleaned.csv")
	report := filepath.Join(dir, "report.json")

	out, err := execute(t, "clean", "--in", input, "--out", output, "--report", report)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleaned 5 rows")
	assert.Contains(t, out, "Outliers clipped: 1")
	assert.Contains(t, out, "(csv)")
	assert.Contains(t, out, "Report written to "+report)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var doc exporter.RunReport
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, exporter.FormatCSV, doc.Format)

	out, err = execute(t, "verify", "--in", output, "--report", report)
	require.NoError(t, err)
	assert.Contains(t, out, "Verified 5 rows")
	assert.Contains(t, out, "Bounds checked for 8 columns")
}

func TestCleanCmd_RowsEqualOnceTyped(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "Financials.csv")
	data := testutil.RawCSV(
		testutil.RawRecord(testutil.Cells{" Units Sold ": " $1,200.50 "}),
		testutil.RawRecord(testutil.Cells{" Units Sold ": " $1,200.00 "}),
	)
	require.NoError(t, os.WriteFile(input, data, 0644))
	output := filepath.Join(dir, "cleaned.csv")
	report := filepath.Join(dir, "report.json")

	out, err := execute(t, "clean", "--in", input, "--out", output, "--report", report)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleaned 1 rows")
	assert.Contains(t, out, "Rows dropped as equal once typed: 1")

	out, err = execute(t, "verify", "--in", output, "--report", report)
	require.NoError(t, err)
	assert.Contains(t, out, "Verified 1 rows")
}

func TestCleanCmd_Format(t *testing.T) {
	dir := t.TempDir()
	input := writeRawExport(t, dir)
	output := filepath.Join(dir, "cleaned.bin")

	out, err := execute(t, "clean", "--in", input, "--out", output, "--format", "parquet")
	require.NoError(t, err)
	assert.Contains(t, out, "(parquet)")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PAR1")))
}

func TestCleanCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeRawExport(t, dir)

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"clean", "--in", filepath.Join(dir, "missing.csv"), "--out", filepath.Join(dir, "o.csv")}},
		{"missing output", []string{"clean", "--in", input}},
		{"bad format", []string{"clean", "--in", input, "--out", filepath.Join(dir, "o.csv"), "--format", "json"}},
		{"positional args", []string{"clean", input}},
		{"missing config file", []string{"--config", filepath.Join(dir, "nope.yaml"), "clean", "--in", input, "--out", filepath.Join(dir, "o.csv")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestVerifyCmd_RequiresInput(t *testing.T) {
	_, err := execute(t, "verify")
	assert.Error(t, err)
}

func TestVerifyCmd_RejectsRawExport(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "verify", "--in", writeRawExport(t, dir))
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	input := writeRawExport(t, dir)
	output := filepath.Join(dir, "from-config.xlsx")
	configPath := filepath.Join(dir, "config.yaml")
	yaml := "pipeline:\n  input: " + input + "\n  output: " + output + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0644))

	out, err := execute(t, "--config", configPath, "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "(xlsx)")
	_, err = os.Stat(output)
	assert.NoError(t, err)
}
