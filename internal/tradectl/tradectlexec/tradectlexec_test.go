// Copyright 2026 Peter Edge
//
// All rights reserved.

package tradectlexec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSortChronologically(t *testing.T) {
	t.Parallel()
	executions := []Execution{
		{StrategyLabel: "c", Date: "2024-03-15", Time: "10:00:00"},
		{StrategyLabel: "a", Date: "2024-03-14", Time: "16:00:00"},
		{StrategyLabel: "b", Date: "2024-03-15", Time: "09:30:00"},
	}
	SortChronologically(executions)
	require.Equal(t, []string{"a", "b", "c"}, strategyLabels(executions))
}

func TestSortChronologicallyStable(t *testing.T) {
	t.Parallel()
	executions := []Execution{
		{StrategyLabel: "first", Date: "2024-03-15", Time: "09:30:00"},
		{StrategyLabel: "second", Date: "2024-03-15", Time: "09:30:00"},
		{StrategyLabel: "earlier", Date: "2024-03-15", Time: "09:29:59"},
		{StrategyLabel: "third", Date: "2024-03-15", Time: "09:30:00"},
	}
	SortChronologically(executions)
	require.Equal(t, []string{"earlier", "first", "second", "third"}, strategyLabels(executions))
}

func TestSortChronologicallyUnparseableFirst(t *testing.T) {
	t.Parallel()
	// Executions without a timestamp cluster at the front in their original
	// relative order, even when unrelated to each other.
	executions := []Execution{
		{StrategyLabel: "parsed", Date: "2024-03-15", Time: "09:30:00"},
		{StrategyLabel: "empty"},
		{StrategyLabel: "old", Date: "1999-01-01", Time: "00:00:00"},
		{StrategyLabel: "date-only", Date: "2024-03-15"},
	}
	SortChronologically(executions)
	require.Equal(t, []string{"empty", "date-only", "old", "parsed"}, strategyLabels(executions))
}

func TestTimestamp(t *testing.T) {
	t.Parallel()
	execution := Execution{Date: "2024-03-15", Time: "09:30:15"}
	require.Equal(t, time.Date(2024, time.March, 15, 9, 30, 15, 0, time.UTC), execution.Timestamp())
	require.True(t, Execution{}.Timestamp().IsZero())
}

func TestStrings(t *testing.T) {
	t.Parallel()
	require.Equal(t, "buy", DirectionBuy.String())
	require.Equal(t, "sell", DirectionSell.String())
	require.Equal(t, "unspecified", DirectionUnspecified.String())
	require.Equal(t, "entry", RoleEntry.String())
	require.Equal(t, "exit", RoleExit.String())
	require.Equal(t, "unknown", RoleUnknown.String())
}

func strategyLabels(executions []Execution) []string {
	labels := make([]string, 0, len(executions))
	for _, execution := range executions {
		labels = append(labels, execution.StrategyLabel)
	}
	return labels
}

func TestDirectionFromText(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		action string
		want   Direction
	}{
		{"Comprar", DirectionBuy},
		{"Comprar para cubrir", DirectionBuy},
		{"BUY", DirectionBuy},
		{"Buy to cover", DirectionBuy},
		{"Vender", DirectionSell},
		{"Vender en corto", DirectionSell},
		{"Sell short", DirectionSell},
		{"", DirectionUnspecified},
		{"Cancelar", DirectionUnspecified},
	} {
		require.Equal(t, test.want, DirectionFromText(test.action), "action %q", test.action)
	}
}
