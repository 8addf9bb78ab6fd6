// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tradelist implements the "trade list" command.
package tradelist

import (
	"context"
	"errors"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tradectl/cmd/tradectl/internal/tradectlcmd"
	"github.com/bufdev/tradectl/internal/pkg/cliio"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlmatch"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlstore"
	"github.com/spf13/pflag"
)

const (
	// instrumentFlagName is the flag name for filtering by instrument.
	instrumentFlagName = "instrument"
	// limitFlagName is the flag name for the maximum number of trades.
	limitFlagName = "limit"
)

// NewCommand returns a new trade list command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List saved trades, newest first",
		Args:  appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Dir is the tradectl directory containing tradectl.yaml.
	Dir string
	// Account filters trades to one account. Empty means all accounts.
	Account string
	// Instrument filters trades to one instrument. Empty means all instruments.
	Instrument string
	// Limit caps the number of trades. Zero means no limit.
	Limit int
	// Format is the output format (table, csv, json).
	Format string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, tradectlcmd.DirFlagName, ".", tradectlcmd.DirFlagUsage)
	flagSet.StringVar(&f.Account, tradectlcmd.AccountFlagName, "", "Filter by account (omit for all accounts)")
	flagSet.StringVar(&f.Instrument, instrumentFlagName, "", "Filter by instrument (omit for all instruments)")
	flagSet.IntVar(&f.Limit, limitFlagName, 0, "The maximum number of trades to list (0 for all)")
	flagSet.StringVar(&f.Format, tradectlcmd.FormatFlagName, "table", tradectlcmd.FormatFlagUsage)
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	if flags.Limit < 0 {
		return appcmd.NewInvalidArgumentErrorf("--%s must not be negative", limitFlagName)
	}
	config, err := tradectlcmd.ReadConfig(container, flags.Dir)
	if err != nil {
		return err
	}
	store, err := tradectlcmd.OpenStore(ctx, container, config)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, store.Close())
	}()
	// List the stored trades matching the filters, newest first.
	storedTrades, err := store.ListTrades(
		ctx,
		tradectlstore.TradeFilter{
			Account:    flags.Account,
			Instrument: flags.Instrument,
			Limit:      flags.Limit,
		},
	)
	if err != nil {
		return err
	}
	// The table and CSV formats show the trade fields, and JSON also shows storage fields.
	trades := make([]tradectlmatch.MatchedTrade, len(storedTrades))
	for i, storedTrade := range storedTrades {
		trades[i] = storedTrade.MatchedTrade
	}
	return tradectlcmd.WriteTrades(container.Stdout(), format, trades, storedTrades)
}
