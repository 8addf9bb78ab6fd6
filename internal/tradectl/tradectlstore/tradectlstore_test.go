// Copyright 2026 Peter Edge
//
// All rights reserved.

package tradectlstore

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/bufdev/tradectl/internal/tradectl/tradectlconfig"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlmatch"
	"github.com/stretchr/testify/require"
)

func TestSaveTradesDedupe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	trades := []tradectlmatch.MatchedTrade{
		newTrade("Sim101", "ES 06-24", "10:00:00", 500),
		newTrade("Sim101", "ES 06-24", "10:05:00", -250),
		// Same key as the first trade.
		newTrade("Sim101", "ES 06-24", "10:00:00", 500),
	}
	saveResult, err := store.SaveTrades(ctx, trades)
	require.NoError(t, err)
	require.Equal(t, SaveResult{Inserted: 2, Duplicates: 1}, saveResult)

	// Re-importing the same trades stores nothing new.
	saveResult, err = store.SaveTrades(ctx, trades[:2])
	require.NoError(t, err)
	require.Equal(t, SaveResult{Inserted: 0, Duplicates: 2}, saveResult)

	storedTrades, err := store.ListTrades(ctx, TradeFilter{})
	require.NoError(t, err)
	require.Len(t, storedTrades, 2)
}

func TestSaveTradesEmpty(t *testing.T) {
	t.Parallel()
	saveResult, err := newTestStore(t).SaveTrades(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, SaveResult{}, saveResult)
}

func TestListTrades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	older := newTrade("Sim101", "ES 06-24", "09:40:00", 100)
	older.Date = "2024-03-14"
	_, err := store.SaveTrades(ctx, []tradectlmatch.MatchedTrade{
		older,
		newTrade("Sim101", "ES 06-24", "10:00:00", 200),
		newTrade("Sim101", "MNQ 06-24", "11:00:00", 20.5),
		newTrade("Sim102", "ES 06-24", "12:00:00", -50),
	})
	require.NoError(t, err)

	storedTrades, err := store.ListTrades(ctx, TradeFilter{})
	require.NoError(t, err)
	require.Equal(t, []float64{-50, 20.5, 200, 100}, realizedPnls(storedTrades))
	for _, storedTrade := range storedTrades {
		require.NotZero(t, storedTrade.ID)
		require.False(t, storedTrade.ImportedAt.IsZero())
	}

	storedTrades, err = store.ListTrades(ctx, TradeFilter{Account: "Sim101"})
	require.NoError(t, err)
	require.Equal(t, []float64{20.5, 200, 100}, realizedPnls(storedTrades))

	storedTrades, err = store.ListTrades(ctx, TradeFilter{Account: "Sim101", Instrument: "ES 06-24", Limit: 1})
	require.NoError(t, err)
	require.Len(t, storedTrades, 1)
	require.Equal(t, newTrade("Sim101", "ES 06-24", "10:00:00", 200), storedTrades[0].MatchedTrade)
}

func TestOpenReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	databaseConfig := tradectlconfig.DatabaseConfig{
		Type: tradectlconfig.DatabaseTypeSQLite,
		DSN:  filepath.Join(t.TempDir(), "nested", "tradectl.db"),
	}
	store, err := Open(ctx, slog.New(slog.DiscardHandler), databaseConfig)
	require.NoError(t, err)
	_, err = store.SaveTrades(ctx, []tradectlmatch.MatchedTrade{newTrade("Sim101", "ES 06-24", "10:00:00", 500)})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(ctx, slog.New(slog.DiscardHandler), databaseConfig)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	storedTrades, err := store.ListTrades(ctx, TradeFilter{})
	require.NoError(t, err)
	require.Len(t, storedTrades, 1)
}

func TestOpenUnsupportedType(t *testing.T) {
	t.Parallel()
	_, err := Open(context.Background(), slog.New(slog.DiscardHandler), tradectlconfig.DatabaseConfig{Type: "oracle"})
	require.ErrorContains(t, err, "unsupported database type")
}

func TestOpenDoesNotRetryPermanentErrors(t *testing.T) {
	t.Parallel()
	for _, databaseConfig := range []tradectlconfig.DatabaseConfig{
		{Type: tradectlconfig.DatabaseTypePostgres, DSN: "postgres://%zz"},
		{Type: tradectlconfig.DatabaseTypeMySQL, DSN: "not a dsn"},
		// A directory cannot be opened as a SQLite database.
		{Type: tradectlconfig.DatabaseTypeSQLite, DSN: t.TempDir()},
	} {
		_, err := Open(context.Background(), slog.New(slog.DiscardHandler), databaseConfig)
		require.Error(t, err, "type %s", databaseConfig.Type)
		require.NotContains(t, err.Error(), "failed after", "type %s", databaseConfig.Type)
	}
}

func TestOpenInvalidDSN(t *testing.T) {
	t.Parallel()
	_, err := Open(
		context.Background(),
		slog.New(slog.DiscardHandler),
		tradectlconfig.DatabaseConfig{Type: tradectlconfig.DatabaseTypeMySQL, DSN: "not a dsn"},
	)
	require.ErrorContains(t, err, "invalid mysql DSN")
}

func TestDedupeKey(t *testing.T) {
	t.Parallel()
	trade := newTrade("Sim101", "ES 06-24", "10:00:00", 500)
	require.Len(t, DedupeKey(trade), 64)
	require.Equal(t, DedupeKey(trade), DedupeKey(trade))
	// Fields outside the key do not change it.
	other := trade
	other.StrategyLabel = "Other"
	other.EntryPrice = 1
	require.Equal(t, DedupeKey(trade), DedupeKey(other))
	// P&L is compared at 2 decimal places.
	other = trade
	other.RealizedPnl = 500.001
	require.Equal(t, DedupeKey(trade), DedupeKey(other))
	for _, change := range []func(*tradectlmatch.MatchedTrade){
		func(trade *tradectlmatch.MatchedTrade) { trade.Account = "Sim102" },
		func(trade *tradectlmatch.MatchedTrade) { trade.Date = "2024-03-16" },
		func(trade *tradectlmatch.MatchedTrade) { trade.EntryTime = "09:31:00" },
		func(trade *tradectlmatch.MatchedTrade) { trade.ExitTime = "10:00:01" },
		func(trade *tradectlmatch.MatchedTrade) { trade.Instrument = "MES 06-24" },
		func(trade *tradectlmatch.MatchedTrade) { trade.RealizedPnl = 500.01 },
	} {
		other := trade
		change(&other)
		require.NotEqual(t, DedupeKey(trade), DedupeKey(other))
	}
}

func newTestStore(t *testing.T) Store {
	t.Helper()
	store, err := Open(
		context.Background(),
		slog.New(slog.DiscardHandler),
		tradectlconfig.DatabaseConfig{
			Type: tradectlconfig.DatabaseTypeSQLite,
			DSN:  filepath.Join(t.TempDir(), "tradectl.db"),
		},
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func newTrade(account string, instrument string, exitTime string, realizedPnl float64) tradectlmatch.MatchedTrade {
	return tradectlmatch.MatchedTrade{
		Date:          "2024-03-15",
		Direction:     "Bullish",
		Instrument:    instrument,
		StrategyLabel: "ORB",
		Account:       account,
		Quantity:      1,
		EntryTime:     "09:30:00",
		ExitTime:      exitTime,
		EntryPrice:    100,
		ExitPrice:     110,
		RealizedPnl:   realizedPnl,
	}
}

func realizedPnls(storedTrades []StoredTrade) []float64 {
	realizedPnls := make([]float64, len(storedTrades))
	for i, storedTrade := range storedTrades {
		realizedPnls[i] = storedTrade.RealizedPnl
	}
	return realizedPnls
}
