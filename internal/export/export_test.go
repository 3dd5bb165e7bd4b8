// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

func sampleResults() []availability.DomainResult {
	created := time.Date(2015, 3, 4, 0, 0, 0, 0, time.UTC)
	checked := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []availability.DomainResult{
		{
			Domain:        "example.com",
			Status:        availability.StatusTaken,
			CheckMethod:   availability.MethodHybrid,
			DNSRecords:    []string{"A: 192.0.2.1", "NS: ns1.example.com"},
			WhoisData:     &availability.WhoisData{Registrar: "Example Registrar", CreationDate: &created},
			ExecutionTime: 1500 * time.Millisecond,
			LastChecked:   checked,
		},
		{
			Domain:      "fresh.io",
			Status:      availability.StatusAvailable,
			CheckMethod: availability.MethodDNS,
			RetryCount:  1,
		},
		{
			Domain:      "bad domain",
			Status:      availability.StatusError,
			CheckMethod: availability.MethodDNS,
			Error:       "availability: invalid domain name",
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":      FormatTable,
		"table": FormatTable,
		"JSON":  FormatJSON,
		" csv ": FormatCSV,
		"xlsx":  FormatXLSX,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatForPath("out/results.XLSX", FormatTable))
	assert.Equal(t, FormatCSV, FormatForPath("results.csv", FormatTable))
	assert.Equal(t, FormatJSON, FormatForPath("results.json", FormatTable))
	assert.Equal(t, FormatCSV, FormatForPath("results.txt", FormatCSV))
}

func TestRow(t *testing.T) {
	row := Row(sampleResults()[0])
	require.Len(t, row, len(Header))
	assert.Equal(t, []string{
		"example.com", "taken", "hybrid", "A: 192.0.2.1; NS: ns1.example.com", "Example Registrar",
		"2015-03-04", "", "0", "1500", "2026-01-02T03:04:05Z", "", "",
	}, row)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleResults()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "example.com", decoded[0]["domain"])
	assert.Equal(t, "available", decoded[1]["status"])
	assert.Equal(t, "availability: invalid domain name", decoded[2]["error"])

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleResults()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, "example.com", records[1][0])
	assert.Equal(t, "1", records[2][7])
	assert.Equal(t, "error", records[3][1])
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "DOMAIN")
	assert.Contains(t, out, "registrar: Example Registrar")
	assert.Contains(t, out, "fresh.io")
	assert.Contains(t, out, "invalid domain name")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleResults()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "example.com", rows[1][0])
	assert.Equal(t, "Example Registrar", rows[1][4])
	assert.Equal(t, "bad domain", rows[3][0])
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.ErrorIs(t, Write(&bytes.Buffer{}, "pdf", nil), ErrUnknownFormat)
}
