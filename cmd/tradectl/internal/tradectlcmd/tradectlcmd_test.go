// Copyright 2026 Peter Edge
//
// All rights reserved.

package tradectlcmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bufdev/tradectl/internal/pkg/cliio"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlmatch"
	"github.com/stretchr/testify/require"
)

var testTrades = []tradectlmatch.MatchedTrade{
	{
		Date:          "2024-03-15",
		Direction:     "Bullish",
		Instrument:    "ES 06-24",
		StrategyLabel: "ORB",
		Account:       "Sim101",
		Quantity:      2,
		EntryTime:     "09:30:00",
		ExitTime:      "09:45:00",
		EntryPrice:    5120.25,
		ExitPrice:     5125.75,
		RealizedPnl:   550,
	},
	{
		Date:          "2024-03-15",
		Direction:     "Bearish",
		Instrument:    "MNQ 06-24",
		StrategyLabel: "Imported",
		Account:       "Sim101",
		Quantity:      1,
		EntryTime:     "10:00:00",
		ExitTime:      "10:05:00",
		EntryPrice:    18250,
		ExitPrice:     18260.5,
		RealizedPnl:   -21,
	},
}

func TestWriteTradesCSV(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	require.NoError(t, WriteTrades(&buffer, cliio.FormatCSV, testTrades, testTrades))
	require.Equal(
		t,
		"DATE,ACCOUNT,INSTRUMENT,DIRECTION,STRATEGY,QTY,ENTRY TIME,EXIT TIME,ENTRY PRICE,EXIT PRICE,PNL\n"+
			"2024-03-15,Sim101,ES 06-24,Bullish,ORB,2,09:30:00,09:45:00,5120.25,5125.75,550.00\n"+
			"2024-03-15,Sim101,MNQ 06-24,Bearish,Imported,1,10:00:00,10:05:00,18250.00,18260.50,-21.00\n",
		buffer.String(),
	)
}

func TestWriteTradesTableTotal(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	require.NoError(t, WriteTrades(&buffer, cliio.FormatTable, testTrades, testTrades))
	lines := strings.Split(strings.TrimRight(buffer.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	require.True(t, strings.HasPrefix(lines[4], "TOTAL"))
	require.True(t, strings.HasSuffix(lines[4], "529.00"))
}

func TestWriteTradesJSON(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	require.NoError(t, WriteTrades(&buffer, cliio.FormatJSON, testTrades, testTrades[:1]))
	require.JSONEq(
		t,
		`{"fecha":"2024-03-15","tipo":"Bullish","activo":"ES 06-24","estrategia":"ORB","cuenta":"Sim101","contratos":2,`+
			`"hora_entrada":"09:30:00","hora_salida":"09:45:00","precio_entrada":5120.25,"precio_salida":5125.75,"importe":550}`,
		buffer.String(),
	)
}
