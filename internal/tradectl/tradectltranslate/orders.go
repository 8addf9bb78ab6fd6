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

// TranslateOrders translates one orders grid row.
//
// Rows are rejected unless the order status is exactly StatusCompleted and the
// average fill price parses to a non-zero value.
//
// The order's role is inferred from keywords in its name. A name that happens
// to contain one of the keywords for an unrelated reason is misclassified.
func TranslateOrders(record brokercsv.Record) (tradectlexec.Execution, bool) {
	if strings.TrimSpace(record.Get(ColumnStatus)) != StatusCompleted {
		return tradectlexec.Execution{}, false
	}
	price := fieldparse.PriceOrDefault(record.Get(ColumnAveragePrice))
	if price == 0 {
		return tradectlexec.Execution{}, false
	}
	// Prefer the filled quantity over the ordered quantity.
	quantityText := record.Get(ColumnFilledQuantity)
	if strings.TrimSpace(quantityText) == "" {
		quantityText = record.Get(ColumnQuantity)
	}
	action := record.Get(ColumnAction)
	direction, directionLabel := parseDirection(action)
	date, clock := fieldparse.TimestampOrEmpty(record.Get(ColumnTime))
	name := strings.TrimSpace(record.Get(ColumnName))
	return tradectlexec.Execution{
		Instrument:     strings.TrimSpace(record.Get(ColumnInstrument)),
		Direction:      direction,
		DirectionLabel: directionLabel,
		Quantity:       fieldparse.QuantityOrDefault(quantityText),
		Price:          price,
		Date:           date,
		Time:           clock,
		Role:           ordersRole(name),
		StrategyLabel:  name,
		Account:        strings.TrimSpace(record.Get(ColumnAccount)),
		RawDirection:   action,
	}, true
}

// *** PRIVATE ***

// ordersRole infers the role from an order name. Entry is checked first.
func ordersRole(name string) tradectlexec.Role {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "entry"):
		return tradectlexec.RoleEntry
	case containsAny(lower, "exit", "stop", "target", "close"):
		return tradectlexec.RoleExit
	default:
		return tradectlexec.RoleUnknown
	}
}
