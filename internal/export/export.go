// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package export writes check results as a table, JSON, CSV or XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

// Format is an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// SheetName is the worksheet XLSX exports are written to.
const SheetName = "Results"

// ErrUnknownFormat is returned for unsupported format names.
var ErrUnknownFormat = errors.New("export: unknown format")

// Header lists the columns of tabular exports.
var Header = []string{
	"Domain", "Status", "Method", "DNS Records", "Registrar",
	"Created", "Expires", "Retries", "Duration (ms)", "Checked", "Error", "Warning",
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatForPath guesses the format from a file extension, falling back
// to fallback.
func FormatForPath(path string, fallback Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return fallback
	}
}

// Write encodes results to w in format.
func Write(w io.Writer, format Format, results []availability.DomainResult) error {
	switch format {
	case FormatTable, "":
		return writeTable(w, results)
	case FormatJSON:
		return writeJSON(w, results)
	case FormatCSV:
		return writeCSV(w, results)
	case FormatXLSX:
		return writeXLSX(w, results)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Row flattens r into the columns of [Header].
func Row(r availability.DomainResult) []string {
	var registrar, created, expires string
	if r.WhoisData != nil {
		registrar = r.WhoisData.Registrar
		created = formatDate(r.WhoisData.CreationDate)
		expires = formatDate(r.WhoisData.ExpirationDate)
	}

	var checked string
	if !r.LastChecked.IsZero() {
		checked = r.LastChecked.UTC().Format(time.RFC3339)
	}

	return []string{
		r.Domain,
		string(r.Status),
		string(r.CheckMethod),
		strings.Join(r.DNSRecords, "; "),
		registrar,
		created,
		expires,
		strconv.Itoa(r.RetryCount),
		strconv.FormatInt(r.ExecutionTime.Milliseconds(), 10),
		checked,
		r.Error,
		r.Warning,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

func writeJSON(w io.Writer, results []availability.DomainResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if results == nil {
		results = []availability.DomainResult{}
	}
	return enc.Encode(results)
}

func writeCSV(w io.Writer, results []availability.DomainResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(Row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTable(w io.Writer, results []availability.DomainResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOMAIN\tSTATUS\tMETHOD\tTIME\tDETAIL")
	for _, r := range results {
		detail := r.Error
		switch {
		case detail != "":
		case r.WhoisData != nil && r.WhoisData.Registrar != "":
			detail = "registrar: " + r.WhoisData.Registrar
		case len(r.DNSRecords) > 0:
			detail = strings.Join(r.DNSRecords, "; ")
		default:
			detail = r.Warning
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Domain, r.Status, r.CheckMethod, r.ExecutionTime.Round(time.Millisecond), detail)
	}
	return tw.Flush()
}

func writeXLSX(w io.Writer, results []availability.DomainResult) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if err := writeSheetRow(f, 1, Header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	for i, r := range results {
		if err := writeSheetRow(f, i+2, Row(r)); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
