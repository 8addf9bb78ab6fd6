// Copyright 2026 Peter Edge
//
// All rights reserved.

package tradectltranslate

import (
	"errors"
	"testing"

	"github.com/bufdev/tradectl/internal/pkg/brokercsv"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlexec"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var (
	gridHeader = []string{
		ColumnInstrument, ColumnAction, ColumnQuantity, ColumnPrice,
		ColumnTime, ColumnEntryExitMarker, ColumnName, ColumnAccount,
	}
	ordersHeader = []string{
		ColumnInstrument, ColumnAction, ColumnQuantity, ColumnAveragePrice,
		ColumnTime, ColumnName, ColumnAccount, ColumnStatus, ColumnFilledQuantity,
	}
)

func TestDetectFormat(t *testing.T) {
	t.Parallel()
	require.Equal(t, FormatGrid, DetectFormat(gridHeader))
	require.Equal(t, FormatOrders, DetectFormat(ordersHeader))
	require.Equal(t, FormatUnrecognized, DetectFormat([]string{"Symbol", "Side", "Price"}))
	require.Equal(t, FormatUnrecognized, DetectFormat(nil))
	// The marker column wins when both are present.
	require.Equal(t, FormatGrid, DetectFormat([]string{ColumnAveragePrice, ColumnEntryExitMarker}))
	// Column names are compared after trimming.
	require.Equal(t, FormatOrders, DetectFormat([]string{" Precio promedio "}))
}

func TestNewTranslator(t *testing.T) {
	t.Parallel()
	translator, err := NewTranslator(FormatGrid, gridHeader)
	require.NoError(t, err)
	require.NotNil(t, translator)
	translator, err = NewTranslator(FormatOrders, ordersHeader)
	require.NoError(t, err)
	require.NotNil(t, translator)
	_, err = NewTranslator(FormatUnrecognized, []string{"Symbol", "Side"})
	var unrecognizedFormatError *UnrecognizedFormatError
	require.True(t, errors.As(err, &unrecognizedFormatError))
	require.Equal(t, []string{"Symbol", "Side"}, unrecognizedFormatError.Headers)
	require.ErrorContains(t, err, `"Symbol", "Side"`)
}

func TestTranslateGrid(t *testing.T) {
	t.Parallel()
	execution, ok := TranslateGrid(gridRecord("MNQ 06-24", "Comprar", "2", "18250,25", "15/03/2024 09:30:15", "Entry", "ORB", "Sim101"))
	require.True(t, ok)
	want := tradectlexec.Execution{
		Instrument:     "MNQ 06-24",
		Direction:      tradectlexec.DirectionBuy,
		DirectionLabel: LabelBullish,
		Quantity:       2,
		Price:          18250.25,
		Date:           "2024-03-15",
		Time:           "09:30:15",
		Role:           tradectlexec.RoleEntry,
		StrategyLabel:  "ORB",
		Account:        "Sim101",
		RawDirection:   "Comprar",
	}
	require.Empty(t, cmp.Diff(want, execution))
}

func TestTranslateGridNeverRejects(t *testing.T) {
	t.Parallel()
	for _, values := range [][]string{
		{"", "", "", "", "", "", "", ""},
		{"ES 06-24", "Cancelar", "x", "n/a", "not a time", "?", "", ""},
		{"ES 06-24"},
	} {
		execution, ok := TranslateGrid(gridRecord(values...))
		require.True(t, ok, "values %v", values)
		require.Equal(t, 1, execution.Quantity)
		require.Equal(t, 0.0, execution.Price)
		require.Empty(t, execution.Date)
		require.Empty(t, execution.Time)
		require.Equal(t, tradectlexec.RoleUnknown, execution.Role)
	}
}

func TestTranslateGridDirection(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		action    string
		direction tradectlexec.Direction
		label     string
	}{
		{"Comprar", tradectlexec.DirectionBuy, LabelBullish},
		{"Vender", tradectlexec.DirectionSell, LabelBearish},
		{"Vender en corto", tradectlexec.DirectionSell, LabelBearish},
		{"Liquidar", tradectlexec.DirectionUnspecified, "Liquidar"},
	} {
		execution, _ := TranslateGrid(gridRecord("ES 06-24", test.action))
		require.Equal(t, test.direction, execution.Direction, "action %q", test.action)
		require.Equal(t, test.label, execution.DirectionLabel, "action %q", test.action)
		require.Equal(t, test.action, execution.RawDirection)
	}
}

func TestTranslateGridRole(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		marker string
		want   tradectlexec.Role
	}{
		{"Entry", tradectlexec.RoleEntry},
		{"Exit", tradectlexec.RoleExit},
		{"Entrada", tradectlexec.RoleEntry},
		{"Salida", tradectlexec.RoleExit},
		{"", tradectlexec.RoleUnknown},
		{"entry", tradectlexec.RoleUnknown},
	} {
		execution, _ := TranslateGrid(gridRecord("ES 06-24", "Comprar", "1", "1", "", test.marker))
		require.Equal(t, test.want, execution.Role, "marker %q", test.marker)
	}
}

func TestTranslateOrders(t *testing.T) {
	t.Parallel()
	execution, ok := TranslateOrders(ordersRecord("ES 06-24", "Vender", "3", "5.120,50", "15/03/2024 09:30", "Entry", "Sim101", "Completo", "2"))
	require.True(t, ok)
	want := tradectlexec.Execution{
		Instrument:     "ES 06-24",
		Direction:      tradectlexec.DirectionSell,
		DirectionLabel: LabelBearish,
		Quantity:       2,
		Price:          5120.5,
		Date:           "2024-03-15",
		Time:           "09:30:00",
		Role:           tradectlexec.RoleEntry,
		StrategyLabel:  "Entry",
		Account:        "Sim101",
		RawDirection:   "Vender",
	}
	require.Empty(t, cmp.Diff(want, execution))
}

func TestTranslateOrdersRejectsIncompleteStatus(t *testing.T) {
	t.Parallel()
	for _, status := range []string{"", "Cancelado", "Parcialmente rellenado", "Trabajando", "completo", "Filled"} {
		_, ok := TranslateOrders(ordersRecord("ES 06-24", "Comprar", "1", "5120", "15/03/2024 09:30:00", "Entry", "Sim101", status, "1"))
		require.False(t, ok, "status %q", status)
	}
}

func TestTranslateOrdersRejectsZeroPrice(t *testing.T) {
	t.Parallel()
	for _, price := range []string{"0", "0,00", "", "n/a"} {
		_, ok := TranslateOrders(ordersRecord("ES 06-24", "Comprar", "1", price, "15/03/2024 09:30:00", "Entry", "Sim101", "Completo", "1"))
		require.False(t, ok, "price %q", price)
	}
}

func TestTranslateOrdersQuantity(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		quantity string
		filled   string
		want     int
	}{
		{"3", "2", 2},
		{"3", "", 3},
		{"3", "  ", 3},
		{"", "", 1},
		{"3", "x", 1},
	} {
		execution, ok := TranslateOrders(ordersRecord("ES 06-24", "Comprar", test.quantity, "5120", "15/03/2024 09:30:00", "Entry", "Sim101", "Completo", test.filled))
		require.True(t, ok)
		require.Equal(t, test.want, execution.Quantity, "quantity %q filled %q", test.quantity, test.filled)
	}
}

func TestTranslateOrdersRole(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		name string
		want tradectlexec.Role
	}{
		{"Entry", tradectlexec.RoleEntry},
		{"ORB Entry 1", tradectlexec.RoleEntry},
		{"Exit", tradectlexec.RoleExit},
		{"Stop1", tradectlexec.RoleExit},
		{"Target2", tradectlexec.RoleExit},
		{"Close position", tradectlexec.RoleExit},
		{"", tradectlexec.RoleUnknown},
		{"Manual", tradectlexec.RoleUnknown},
		// Entry keywords are checked before exit keywords.
		{"Entry after stop", tradectlexec.RoleEntry},
	} {
		execution, ok := TranslateOrders(ordersRecord("ES 06-24", "Comprar", "1", "5120", "15/03/2024 09:30:00", test.name, "Sim101", "Completo", "1"))
		require.True(t, ok)
		require.Equal(t, test.want, execution.Role, "name %q", test.name)
	}
}

func TestTranslateOrdersRoleKeywordLimitation(t *testing.T) {
	t.Parallel()
	// Known limitation: role keywords are substring matches against the free
	// text name, so an unrelated word containing a keyword changes the role.
	execution, ok := TranslateOrders(ordersRecord("ES 06-24", "Comprar", "1", "5120", "15/03/2024 09:30:00", "Nonstop scalper", "Sim101", "Completo", "1"))
	require.True(t, ok)
	require.Equal(t, tradectlexec.RoleExit, execution.Role)
	execution, ok = TranslateOrders(ordersRecord("ES 06-24", "Comprar", "1", "5120", "15/03/2024 09:30:00", "Reentry closer", "Sim101", "Completo", "1"))
	require.True(t, ok)
	require.Equal(t, tradectlexec.RoleEntry, execution.Role)
}

func gridRecord(values ...string) brokercsv.Record {
	return brokercsv.NewRecord(gridHeader, values)
}

func ordersRecord(values ...string) brokercsv.Record {
	return brokercsv.NewRecord(ordersHeader, values)
}
