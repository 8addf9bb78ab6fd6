// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package brokercsv reads tabular trade exports from a trading platform.
//
// Exports come as semicolon- or comma-delimited text, in UTF-8 (with or without
// a BOM), UTF-16 with a BOM, or Windows-1252 when the platform runs under a
// Spanish-language Windows locale. The reader resolves encoding and delimiter
// and returns rows keyed by header column name.
package brokercsv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// DefaultMaxBytes is the default input size limit.
	DefaultMaxBytes = 10 << 20
	// DefaultMaxRows is the default data row limit.
	DefaultMaxRows = 100_000
)

var (
	// ErrEmpty is returned when the input has no header row.
	ErrEmpty = errors.New("export is empty")
	// ErrTooLarge is returned when the input exceeds the byte or row limit.
	ErrTooLarge = errors.New("export too large")
)

// Table is a parsed export: one header and its data rows.
type Table struct {
	// Header is the list of column names, trimmed, in file order.
	Header []string
	// Rows are the data rows. Every row has exactly len(Header) values.
	Rows []Record
	// Delimiter is the delimiter detected for the file.
	Delimiter rune
}

// Record is one data row of a Table.
type Record struct {
	index  map[string]int
	values []string
}

// NewRecord returns a Record for the given header and values.
//
// Values are padded or truncated to the header width.
func NewRecord(header []string, values []string) Record {
	return newRecord(newIndex(header), len(header), values)
}

// Get returns the value for the column, or "" if the column does not exist.
func (r Record) Get(column string) string {
	i, ok := r.index[column]
	if !ok {
		return ""
	}
	return r.values[i]
}

// Has returns whether the record's header contains the column.
func (r Record) Has(column string) bool {
	_, ok := r.index[column]
	return ok
}

// ReadOption is a functional option for Read.
type ReadOption func(*readOptions)

// ReadWithMaxBytes sets the maximum number of input bytes.
func ReadWithMaxBytes(maxBytes int64) ReadOption {
	return func(o *readOptions) {
		o.maxBytes = maxBytes
	}
}

// ReadWithMaxRows sets the maximum number of data rows.
func ReadWithMaxRows(maxRows int) ReadOption {
	return func(o *readOptions) {
		o.maxRows = maxRows
	}
}

// ReadFile reads and parses the export at filePath.
func ReadFile(filePath string, options ...ReadOption) (_ *Table, retErr error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, file.Close())
	}()
	return Read(file, options...)
}

// Read reads and parses an export.
func Read(reader io.Reader, options ...ReadOption) (*Table, error) {
	readOptions := &readOptions{
		maxBytes: DefaultMaxBytes,
		maxRows:  DefaultMaxRows,
	}
	for _, option := range options {
		option(readOptions)
	}
	// Read one byte past the limit so oversized input is detected.
	data, err := io.ReadAll(io.LimitReader(reader, readOptions.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	if int64(len(data)) > readOptions.maxBytes {
		return nil, fmt.Errorf("%w: exceeds the maximum size of %d bytes", ErrTooLarge, readOptions.maxBytes)
	}
	text, err := decode(data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmpty
	}
	delimiter := detectDelimiter(text)
	csvReader := csv.NewReader(strings.NewReader(text))
	csvReader.Comma = delimiter
	// Exports pad trailing columns inconsistently.
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true

	var header []string
	var index map[string]int
	var rows []Record
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		if isBlank(record) {
			continue
		}
		if header == nil {
			header = make([]string, len(record))
			for i, column := range record {
				header[i] = strings.TrimSpace(column)
			}
			index = newIndex(header)
			continue
		}
		if len(rows) >= readOptions.maxRows {
			return nil, fmt.Errorf("%w: exceeds the maximum of %d rows", ErrTooLarge, readOptions.maxRows)
		}
		rows = append(rows, newRecord(index, len(header), record))
	}
	if header == nil {
		return nil, ErrEmpty
	}
	return &Table{
		Header:    header,
		Rows:      rows,
		Delimiter: delimiter,
	}, nil
}

// *** PRIVATE ***

type readOptions struct {
	maxBytes int64
	maxRows  int
}

// decode converts the raw bytes to UTF-8 text.
//
// BOMs select UTF-8 or UTF-16. Input without a BOM that is not valid UTF-8 is
// treated as Windows-1252.
func decode(data []byte) (string, error) {
	if hasUTF16BOM(data) || bytes.HasPrefix(data, []byte("\xef\xbb\xbf")) {
		decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return "", fmt.Errorf("decoding export: %w", err)
		}
		return string(decoded), nil
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decoding export as Windows-1252: %w", err)
	}
	return string(decoded), nil
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xff, 0xfe}) || bytes.HasPrefix(data, []byte{0xfe, 0xff})
}

// detectDelimiter picks ';' or ',' by counting occurrences on the first non-blank line.
func detectDelimiter(text string) rune {
	for line := range strings.SplitSeq(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Count(line, ";") > strings.Count(line, ",") {
			return ';'
		}
		return ','
	}
	return ','
}

func newIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, column := range header {
		// First occurrence wins for duplicated column names.
		if _, ok := index[column]; !ok {
			index[column] = i
		}
	}
	return index
}

func newRecord(index map[string]int, width int, values []string) Record {
	normalized := make([]string, width)
	copy(normalized, values)
	return Record{
		index:  index,
		values: normalized,
	}
}

func isBlank(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
