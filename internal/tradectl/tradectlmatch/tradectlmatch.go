// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tradectlmatch reconciles entry and exit executions into round-trip
// trades using FIFO matching.
package tradectlmatch

import (
	"strings"

	"github.com/bufdev/tradectl/internal/tradectl/tradectlexec"
	"github.com/shopspring/decimal"
)

// DefaultStrategyLabel is the strategy label of trades whose entry has none.
const DefaultStrategyLabel = "Imported"

// DefaultPointValue is the point value of instruments that match no rule.
const DefaultPointValue = 2

// pointValueRules are checked in order, first match wins.
//
// "MNQ" must be checked before "NQ" and "MES" before "ES", since the micro
// contract symbols contain the full-size symbols.
var pointValueRules = []pointValueRule{
	{symbol: "MNQ", pointValue: 2},
	{symbol: "NQ", pointValue: 20},
	{symbol: "MES", pointValue: 5},
	{symbol: "ES", pointValue: 50},
}

// MatchedTrade is a round-trip trade built from one entry and one exit.
//
// JSON names are the ones the journal front end reads.
type MatchedTrade struct {
	// Date is the entry's date.
	Date string `json:"fecha"`
	// Direction is the entry's direction label, e.g. "Bullish".
	Direction string `json:"tipo"`
	// Instrument is the entry's instrument.
	Instrument string `json:"activo"`
	// StrategyLabel is the entry's strategy label, or DefaultStrategyLabel.
	StrategyLabel string `json:"estrategia"`
	// Account is the entry's account.
	Account string `json:"cuenta"`
	// Quantity is the entry's quantity. The exit's quantity is not checked.
	Quantity int `json:"contratos"`
	// EntryTime is the entry's time.
	EntryTime string `json:"hora_entrada"`
	// ExitTime is the exit's time.
	ExitTime string `json:"hora_salida"`
	// EntryPrice is the entry's price.
	EntryPrice float64 `json:"precio_entrada"`
	// ExitPrice is the exit's price.
	ExitPrice float64 `json:"precio_salida"`
	// RealizedPnl is the realized profit or loss, rounded to 2 decimal places.
	RealizedPnl float64 `json:"importe"`
}

// MatchResult is the output of Match.
type MatchResult struct {
	// Trades are the matched trades, in the order their exits were processed.
	Trades []MatchedTrade
	// UnknownRole is the number of executions skipped for having no role.
	UnknownRole int
	// UnmatchedExits is the number of exits dropped for having no pending entry.
	UnmatchedExits int
	// PendingEntries is the number of entries still open at the end of the batch.
	PendingEntries int
}

// Match matches chronologically sorted executions.
//
// Each (account, instrument) key has its own FIFO queue of pending entries.
// An exit consumes the oldest pending entry for its key. Exits with no pending
// entry, and entries never consumed, produce no trade. Match never fails.
//
// All queue state is local to the call.
func Match(executions []tradectlexec.Execution) *MatchResult {
	pendingEntries := make(map[matchKey][]tradectlexec.Execution)
	result := &MatchResult{}
	for _, execution := range executions {
		key := matchKey{
			account:    execution.Account,
			instrument: execution.Instrument,
		}
		switch execution.Role {
		case tradectlexec.RoleEntry:
			pendingEntries[key] = append(pendingEntries[key], execution)
		case tradectlexec.RoleExit:
			queue := pendingEntries[key]
			if len(queue) == 0 {
				result.UnmatchedExits++
				continue
			}
			entry := queue[0]
			pendingEntries[key] = queue[1:]
			result.Trades = append(result.Trades, newMatchedTrade(entry, execution))
		default:
			result.UnknownRole++
		}
	}
	for _, queue := range pendingEntries {
		result.PendingEntries += len(queue)
	}
	return result
}

// PointValue returns the monetary value of a one-point move for one contract
// of the instrument.
//
// Symbols are matched case-sensitively against the raw instrument text, so
// "Crude Futures" falls through to DefaultPointValue.
func PointValue(instrument string) int64 {
	for _, rule := range pointValueRules {
		if strings.Contains(instrument, rule.symbol) {
			return rule.pointValue
		}
	}
	return DefaultPointValue
}

// RealizedPnl computes the profit or loss of closing entry with exit, rounded
// to 2 decimal places.
//
// The point value is taken from the exit's instrument. The sign follows the
// entry's raw action text: a buy entry profits when the price rises, and any
// other entry is treated as a sell.
func RealizedPnl(entry tradectlexec.Execution, exit tradectlexec.Execution) decimal.Decimal {
	entryPrice := decimal.NewFromFloat(entry.Price)
	exitPrice := decimal.NewFromFloat(exit.Price)
	pointDifference := entryPrice.Sub(exitPrice)
	if tradectlexec.DirectionFromText(entry.RawDirection) == tradectlexec.DirectionBuy {
		pointDifference = exitPrice.Sub(entryPrice)
	}
	return pointDifference.
		Mul(decimal.NewFromInt(int64(entry.Quantity))).
		Mul(decimal.NewFromInt(PointValue(exit.Instrument))).
		Round(2)
}

// TotalPnl sums the realized P&L of trades.
func TotalPnl(trades []MatchedTrade) decimal.Decimal {
	total := decimal.Zero
	for _, trade := range trades {
		total = total.Add(decimal.NewFromFloat(trade.RealizedPnl))
	}
	return total.Round(2)
}

// *** PRIVATE ***

type matchKey struct {
	account    string
	instrument string
}

type pointValueRule struct {
	symbol     string
	pointValue int64
}

func newMatchedTrade(entry tradectlexec.Execution, exit tradectlexec.Execution) MatchedTrade {
	strategyLabel := entry.StrategyLabel
	if strategyLabel == "" {
		strategyLabel = DefaultStrategyLabel
	}
	return MatchedTrade{
		Date:          entry.Date,
		Direction:     entry.DirectionLabel,
		Instrument:    entry.Instrument,
		StrategyLabel: strategyLabel,
		Account:       entry.Account,
		Quantity:      entry.Quantity,
		EntryTime:     entry.Time,
		ExitTime:      exit.Time,
		EntryPrice:    entry.Price,
		ExitPrice:     exit.Price,
		RealizedPnl:   RealizedPnl(entry, exit).InexactFloat64(),
	}
}
