// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tradectlexec defines the normalized execution produced by import
// translators, and the chronological order executions are matched in.
package tradectlexec

import (
	"sort"
	"strings"
	"time"

	"github.com/bufdev/tradectl/internal/pkg/fieldparse"
)

// Direction is the side of an execution.
type Direction int

const (
	// DirectionUnspecified is used when the action text names neither side.
	DirectionUnspecified Direction = iota
	// DirectionBuy is a buy execution.
	DirectionBuy
	// DirectionSell is a sell execution.
	DirectionSell
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "buy"
	case DirectionSell:
		return "sell"
	default:
		return "unspecified"
	}
}

// Keywords matched case-insensitively against raw action text. Buy keywords
// are checked first.
var (
	buyKeywords  = []string{"compr", "buy"}
	sellKeywords = []string{"vend", "sell"}
)

// DirectionFromText derives a direction from raw action text such as
// "Comprar", "Vender en corto", or "Buy to cover".
func DirectionFromText(action string) Direction {
	lower := strings.ToLower(action)
	switch {
	case containsAny(lower, buyKeywords):
		return DirectionBuy
	case containsAny(lower, sellKeywords):
		return DirectionSell
	default:
		return DirectionUnspecified
	}
}

// Role is whether an execution opens or closes a position.
type Role int

const (
	// RoleUnknown executions are never matched.
	RoleUnknown Role = iota
	// RoleEntry executions open a position.
	RoleEntry
	// RoleExit executions close the oldest open position for their key.
	RoleExit
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case RoleEntry:
		return "entry"
	case RoleExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Execution is a single broker execution normalized from one export row.
type Execution struct {
	// Instrument is the raw instrument text, e.g. "MNQ 06-24".
	Instrument string
	// Direction is derived from RawDirection.
	Direction Direction
	// DirectionLabel is "Bullish", "Bearish", or the raw action text.
	DirectionLabel string
	// Quantity is at least 1.
	Quantity int
	// Price is 0 when the price cell could not be parsed.
	Price float64
	// Date is YYYY-MM-DD, or empty if the timestamp could not be parsed.
	Date string
	// Time is HH:MM:SS, or empty if the timestamp could not be parsed.
	Time string
	// Role is whether this execution opens or closes a position.
	Role Role
	// StrategyLabel is the platform's order/strategy name, may be empty.
	StrategyLabel string
	// Account is the broker account name.
	Account string
	// RawDirection is the unmodified action text.
	RawDirection string
}

// Timestamp returns the execution's date and time as a time.Time.
//
// Executions whose date or time cannot be parsed return the zero time, which
// orders before every parsed timestamp.
func (e Execution) Timestamp() time.Time {
	t, err := fieldparse.ParseDateTime(e.Date, e.Time)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SortChronologically sorts executions by date and time, in place.
//
// The sort is stable, so executions with equal timestamps keep their export
// order. Executions without a parseable timestamp all sort to the front.
func SortChronologically(executions []Execution) {
	timestamps := make([]time.Time, len(executions))
	for i, execution := range executions {
		timestamps[i] = execution.Timestamp()
	}
	sort.Stable(&byTimestamp{
		executions: executions,
		timestamps: timestamps,
	})
}

// *** PRIVATE ***

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

// byTimestamp sorts executions with precomputed timestamps kept in step.
type byTimestamp struct {
	executions []Execution
	timestamps []time.Time
}

func (b *byTimestamp) Len() int {
	return len(b.executions)
}

func (b *byTimestamp) Less(i int, j int) bool {
	return b.timestamps[i].Before(b.timestamps[j])
}

func (b *byTimestamp) Swap(i int, j int) {
	b.executions[i], b.executions[j] = b.executions[j], b.executions[i]
	b.timestamps[i], b.timestamps[j] = b.timestamps[j], b.timestamps[i]
}
