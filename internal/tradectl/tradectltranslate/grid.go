// Copyright 2026 Peter Edge
//
// All rights reserved.

package tradectltranslate

import (
	"strings"

	"github.com/bufdev/tradectl/internal/pkg/brokercsv"
	"github.com/bufdev/tradectl/internal/pkg/fieldparse"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlexec"
)

// TranslateGrid translates one executions grid row.
//
// Grid rows are never rejected: empty or unparseable cells fall back to their
// defaults and the row is still returned.
func TranslateGrid(record brokercsv.Record) (tradectlexec.Execution, bool) {
	action := record.Get(ColumnAction)
	direction, directionLabel := parseDirection(action)
	date, clock := fieldparse.TimestampOrEmpty(record.Get(ColumnTime))
	return tradectlexec.Execution{
		Instrument:     strings.TrimSpace(record.Get(ColumnInstrument)),
		Direction:      direction,
		DirectionLabel: directionLabel,
		Quantity:       fieldparse.QuantityOrDefault(record.Get(ColumnQuantity)),
		Price:          fieldparse.PriceOrDefault(record.Get(ColumnPrice)),
		Date:           date,
		Time:           clock,
		Role:           gridRole(record.Get(ColumnEntryExitMarker)),
		StrategyLabel:  strings.TrimSpace(record.Get(ColumnName)),
		Account:        strings.TrimSpace(record.Get(ColumnAccount)),
		RawDirection:   action,
	}, true
}

// *** PRIVATE ***

// gridRole reads the entry/exit marker column. Entry is checked first.
func gridRole(marker string) tradectlexec.Role {
	switch {
	case containsAny(marker, "Entry", "Entrada"):
		return tradectlexec.RoleEntry
	case containsAny(marker, "Exit", "Salida"):
		return tradectlexec.RoleExit
	default:
		return tradectlexec.RoleUnknown
	}
}
