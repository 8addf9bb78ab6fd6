// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tradectlcmd provides shared wiring for tradectl commands (reading
// config with environment overrides, opening the store, and writing trades).
package tradectlcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"buf.build/go/app/appext"
	"github.com/bufdev/tradectl/internal/pkg/cliio"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlconfig"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlmatch"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlpath"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlstore"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	// DirFlagName is the flag name for the tradectl base directory.
	DirFlagName = "dir"
	// DirFlagUsage is the usage of the --dir flag.
	DirFlagUsage = "The tradectl directory containing tradectl.yaml"
	// FormatFlagName is the flag name for the output format.
	FormatFlagName = "format"
	// FormatFlagUsage is the usage of the --format flag.
	FormatFlagUsage = "Output format (table, csv, json)"
	// AccountFlagName is the flag name for the account.
	AccountFlagName = "account"
)

// tradeHeaders are the column names of trade tables.
var tradeHeaders = []string{
	"DATE",
	"ACCOUNT",
	"INSTRUMENT",
	"DIRECTION",
	"STRATEGY",
	"QTY",
	"ENTRY TIME",
	"EXIT TIME",
	"ENTRY PRICE",
	"EXIT PRICE",
	"PNL",
}

// ReadConfig reads and validates the configuration file in dirPath.
//
// Environment variables are read with NewGetenv.
func ReadConfig(container appext.Container, dirPath string) (*tradectlconfig.Config, error) {
	getenv, err := NewGetenv(container, dirPath)
	if err != nil {
		return nil, err
	}
	return tradectlconfig.ReadConfig(dirPath, getenv)
}

// OpenStore opens the configured trade store.
func OpenStore(ctx context.Context, container appext.Container, config *tradectlconfig.Config) (tradectlstore.Store, error) {
	return tradectlstore.Open(ctx, container.Logger(), config.Database)
}

// WriteTrades writes trades in the given format.
//
// The table format ends with a TOTAL row summing realized P&L. The JSON format
// writes objects instead of trades, so that callers can include storage fields.
func WriteTrades[O any](writer io.Writer, format cliio.Format, trades []tradectlmatch.MatchedTrade, objects []O) error {
	table := cliio.Table{
		Headers: tradeHeaders,
		Rows:    make([][]string, 0, len(trades)),
	}
	for _, trade := range trades {
		table.Rows = append(table.Rows, tradeToRow(trade))
	}
	totals := make([]string, len(tradeHeaders))
	totals[0] = "TOTAL"
	totals[len(totals)-1] = cliio.FormatAmount(tradectlmatch.TotalPnl(trades))
	table.Totals = totals
	return cliio.Write(writer, format, table, objects)
}

// NewGetenv returns a function that reads environment variables from the
// container, then from the .env file in dirPath if one exists.
func NewGetenv(container appext.Container, dirPath string) (func(string) string, error) {
	envFilePath := tradectlpath.EnvFilePath(dirPath)
	envMap, err := godotenv.Read(envFilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return container.Env, nil
		}
		return nil, fmt.Errorf("reading %s: %w", envFilePath, err)
	}
	return func(key string) string {
		if value := container.Env(key); value != "" {
			return value
		}
		return envMap[key]
	}, nil
}

// *** PRIVATE ***

func tradeToRow(trade tradectlmatch.MatchedTrade) []string {
	return []string{
		trade.Date,
		trade.Account,
		trade.Instrument,
		trade.Direction,
		trade.StrategyLabel,
		strconv.Itoa(trade.Quantity),
		trade.EntryTime,
		trade.ExitTime,
		cliio.FormatFloat(trade.EntryPrice),
		cliio.FormatFloat(trade.ExitPrice),
		cliio.FormatAmount(decimal.NewFromFloat(trade.RealizedPnl)),
	}
}
