// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cliio provides output formatting for CLI commands (table, CSV, JSON).
package cliio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
)

// Format represents the output format for CLI commands.
type Format string

const (
	// FormatTable is the default table output format.
	FormatTable Format = "table"
	// FormatCSV is the CSV output format.
	FormatCSV Format = "csv"
	// FormatJSON is the JSON output format.
	FormatJSON Format = "json"
)

// ParseFormat parses a string into a Format, returning an error for unknown formats.
func ParseFormat(s string) (Format, error) {
	switch format := Format(strings.ToLower(strings.TrimSpace(s))); format {
	case FormatTable, FormatCSV, FormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q, must be one of: table, csv, json", s)
	}
}

// Table is tabular output.
type Table struct {
	// Headers are the column names.
	Headers []string
	// Rows are the data rows.
	Rows [][]string
	// Totals is an optional summary row, only written in table format.
	Totals []string
}

// Write writes the table in the given format.
//
// JSON output writes objects instead of the table, one per line.
func Write[O any](writer io.Writer, format Format, table Table, objects []O) error {
	switch format {
	case FormatTable:
		return WriteTable(writer, table)
	case FormatCSV:
		return WriteCSV(writer, table)
	case FormatJSON:
		return WriteJSON(writer, objects...)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// WriteTable writes the table with aligned columns.
//
// If the table has a totals row, it is written after a blank line through the
// same tabwriter so columns align between data and totals.
func WriteTable(writer io.Writer, table Table) error {
	tabWriter := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	lines := append([][]string{table.Headers}, table.Rows...)
	if len(table.Totals) > 0 {
		lines = append(lines, make([]string, len(table.Headers)), table.Totals)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(tabWriter, strings.Join(line, "\t")); err != nil {
			return err
		}
	}
	return tabWriter.Flush()
}

// WriteCSV writes the headers and rows as CSV. The totals row is omitted.
func WriteCSV(writer io.Writer, table Table) error {
	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write(table.Headers); err != nil {
		return err
	}
	if err := csvWriter.WriteAll(table.Rows); err != nil {
		return err
	}
	return csvWriter.Error()
}

// WriteJSON writes objects as JSON with newlines between each object.
func WriteJSON[O any](writer io.Writer, objects ...O) error {
	encoder := json.NewEncoder(writer)
	for _, object := range objects {
		if err := encoder.Encode(object); err != nil {
			return err
		}
	}
	return nil
}

// FormatAmount formats a monetary amount with exactly 2 decimal places.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatFloat formats a float with the fewest digits needed, with at least 2
// decimal places.
func FormatFloat(value float64) string {
	d := decimal.NewFromFloat(value)
	if d.Exponent() >= -2 {
		return d.StringFixed(2)
	}
	return d.String()
}
