// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package fieldparse parses loosely-typed numeric and timestamp cells from
// broker exports.
//
// Every parser returns an explicit error on failure, and has an OrDefault
// companion that maps the failure case to the documented default. Import code
// uses the OrDefault variants so that one bad cell never fails a whole file.
package fieldparse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPrice is the price used when a price cell cannot be parsed.
	DefaultPrice = 0.0
	// DefaultQuantity is the quantity used when a quantity cell cannot be parsed.
	DefaultQuantity = 1

	// DateLayout is the canonical date layout (YYYY-MM-DD).
	DateLayout = "2006-01-02"
	// TimeLayout is the canonical time layout (HH:MM:SS).
	TimeLayout = "15:04:05"
	// DateTimeLayout is the canonical combined layout used for ordering.
	DateTimeLayout = DateLayout + " " + TimeLayout
)

// timestampLayouts are tried in order, first full match wins.
//
// The order is significant: day/month/year with seconds, then without
// seconds, then ISO year-month-day.
var timestampLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2006-1-2 15:04:05",
}

// currencyReplacer strips currency symbols and spacing from price cells.
var currencyReplacer = strings.NewReplacer(
	"$", "",
	"€", "",
	"£", "",
	"USD", "",
	"EUR", "",
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	"'", "",
)

// ParsePrice parses a price cell.
//
// Currency symbols and thousands separators are removed. When both '.' and ','
// appear, whichever occurs last is the decimal separator. A lone ',' is a
// decimal comma.
func ParsePrice(s string) (float64, error) {
	cleaned := currencyReplacer.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, errors.New("empty price")
	}
	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		// 1.234,56
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		// 1,234.56
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case lastComma >= 0:
		// 21500,25
		if strings.Count(cleaned, ",") > 1 {
			return 0, fmt.Errorf("ambiguous price %q", s)
		}
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing price %q: %w", s, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("price %q is not a finite number", s)
	}
	return value, nil
}

// PriceOrDefault parses a price cell, returning DefaultPrice on failure.
func PriceOrDefault(s string) float64 {
	value, err := ParsePrice(s)
	if err != nil {
		return DefaultPrice
	}
	return value
}

// ParseQuantity parses a quantity cell as a positive integer.
func ParseQuantity(s string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parsing quantity %q: %w", s, err)
	}
	if value < 1 {
		return 0, fmt.Errorf("quantity %d must be at least 1", value)
	}
	return value, nil
}

// QuantityOrDefault parses a quantity cell, returning DefaultQuantity on failure.
func QuantityOrDefault(s string) int {
	value, err := ParseQuantity(s)
	if err != nil {
		return DefaultQuantity
	}
	return value
}

// ParseTimestamp parses a timestamp cell and returns its canonical date and
// time components.
func ParseTimestamp(s string) (string, string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", "", errors.New("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		return t.Format(DateLayout), t.Format(TimeLayout), nil
	}
	return "", "", fmt.Errorf("timestamp %q does not match any known layout", s)
}

// TimestampOrEmpty parses a timestamp cell, returning two empty strings on failure.
func TimestampOrEmpty(s string) (string, string) {
	date, clock, err := ParseTimestamp(s)
	if err != nil {
		return "", ""
	}
	return date, clock
}

// ParseDateTime parses canonical date and time components into a time.Time.
func ParseDateTime(date string, clock string) (time.Time, error) {
	return time.Parse(DateTimeLayout, date+" "+clock)
}
