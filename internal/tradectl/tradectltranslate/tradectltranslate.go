// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tradectltranslate detects which of the platform's export schemas a
// file uses, and translates its rows into normalized executions.
//
// Two schemas are recognized. The grid schema is the executions grid, which
// carries an explicit entry/exit marker per execution. The orders schema is the
// orders grid, which carries an average fill price and an order status instead,
// and whose entry/exit role must be inferred from the order name.
package tradectltranslate

import (
	"fmt"
	"strings"

	"github.com/bufdev/tradectl/internal/pkg/brokercsv"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlexec"
)

// Column names shared by both schemas.
const (
	ColumnInstrument = "Instrumento"
	ColumnAction     = "Acción"
	ColumnQuantity   = "Cantidad"
	ColumnTime       = "Hora"
	ColumnName       = "Nombre"
	ColumnAccount    = "Cuenta"
)

// Grid schema columns.
const (
	ColumnPrice           = "Precio"
	ColumnEntryExitMarker = "E/X"
)

// Orders schema columns.
const (
	ColumnAveragePrice   = "Precio promedio"
	ColumnStatus         = "Estado"
	ColumnFilledQuantity = "Rellenado"
)

// StatusCompleted is the only order status that orders rows are kept with.
const StatusCompleted = "Completo"

const (
	// LabelBullish is the direction label for buy executions.
	LabelBullish = "Bullish"
	// LabelBearish is the direction label for sell executions.
	LabelBearish = "Bearish"
)

// Format is the export schema of a file.
type Format int

const (
	// FormatUnrecognized is a header that matches neither schema.
	FormatUnrecognized Format = iota
	// FormatGrid is the executions grid schema.
	FormatGrid
	// FormatOrders is the orders grid schema.
	FormatOrders
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatGrid:
		return "grid"
	case FormatOrders:
		return "orders"
	default:
		return "unrecognized"
	}
}

// UnrecognizedFormatError is returned when a header matches neither schema.
type UnrecognizedFormatError struct {
	// Headers are the column names of the rejected file.
	Headers []string
}

// Error implements error.
func (e *UnrecognizedFormatError) Error() string {
	return fmt.Sprintf(
		"unrecognized export format: expected a %q column (executions) or a %q column (orders), got columns %s",
		ColumnEntryExitMarker,
		ColumnAveragePrice,
		strings.Join(quoteAll(e.Headers), ", "),
	)
}

// DetectFormat classifies a header.
//
// The entry/exit marker column takes precedence over the average price column.
func DetectFormat(header []string) Format {
	var hasAveragePrice bool
	for _, column := range header {
		switch strings.TrimSpace(column) {
		case ColumnEntryExitMarker:
			return FormatGrid
		case ColumnAveragePrice:
			hasAveragePrice = true
		}
	}
	if hasAveragePrice {
		return FormatOrders
	}
	return FormatUnrecognized
}

// Translator translates one export row.
//
// It returns false if the row is rejected and produces no execution.
type Translator func(record brokercsv.Record) (tradectlexec.Execution, bool)

// NewTranslator returns the translator for a format.
//
// It returns an *UnrecognizedFormatError for FormatUnrecognized.
func NewTranslator(format Format, header []string) (Translator, error) {
	switch format {
	case FormatGrid:
		return TranslateGrid, nil
	case FormatOrders:
		return TranslateOrders, nil
	default:
		return nil, &UnrecognizedFormatError{Headers: header}
	}
}

// *** PRIVATE ***

// parseDirection derives the direction and its label from action text.
//
// Text naming neither side keeps the raw text as its label.
func parseDirection(action string) (tradectlexec.Direction, string) {
	direction := tradectlexec.DirectionFromText(action)
	switch direction {
	case tradectlexec.DirectionBuy:
		return direction, LabelBullish
	case tradectlexec.DirectionSell:
		return direction, LabelBearish
	default:
		return direction, action
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

func quoteAll(values []string) []string {
	quoted := make([]string, len(values))
	for i, value := range values {
		quoted[i] = fmt.Sprintf("%q", value)
	}
	return quoted
}
