package exporter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizreport/internal/dataprocessing"
)

var parquetMagic = []byte("PAR1")

func TestParquetWriter_WriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewParquetWriter(discard).WriteTable(&buf, smallTable(t)))

	content := buf.Bytes()
	require.Greater(t, len(content), 2*len(parquetMagic))
	assert.True(t, bytes.HasPrefix(content, parquetMagic))
	assert.True(t, bytes.HasSuffix(content, parquetMagic))
}

func TestParquetSchema(t *testing.T) {
	var def struct {
		Tag    string
		Fields []struct{ Tag string }
	}
	require.NoError(t, json.Unmarshal([]byte(ParquetSchema(smallTable(t))), &def))

	require.Len(t, def.Fields, 4)
	assert.Equal(t, "name=segment, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED", def.Fields[0].Tag)
	assert.Equal(t, "name=sales, type=INT64, repetitiontype=REQUIRED", def.Fields[1].Tag)
	assert.Contains(t, def.Fields[2].Tag, "convertedtype=UTF8")
	assert.Contains(t, def.Fields[3].Tag, "convertedtype=UTF8")
}

func TestParquetRow(t *testing.T) {
	row, err := parquetRow(smallTable(t), 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"segment":"Midmarket","sales":-5,"date":"2014-12-31","month_name":"December"}`, row)
}

func TestXLSXWriter_WriteTable(t *testing.T) {
	table := smallTable(t)

	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter(discard).WriteTable(&buf, table))

	raw, err := dataprocessing.ReadXLSX(&buf, XLSXSheet)
	require.NoError(t, err)
	assert.Equal(t, table.Names(), raw.Header)
	require.Len(t, raw.Records, table.Len())
	for i := range raw.Records {
		assert.Equal(t, table.Row(i), raw.Records[i])
	}
}
