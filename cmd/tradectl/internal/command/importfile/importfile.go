// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package importfile implements the "import" command.
package importfile

import (
	"context"
	"errors"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tradectl/cmd/tradectl/internal/tradectlcmd"
	"github.com/bufdev/tradectl/internal/pkg/cliio"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlimport"
	"github.com/spf13/pflag"
)

// saveFlagName is the flag name for saving matched trades to the store.
const saveFlagName = "save"

// NewCommand returns a new import command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " <file>",
		Short: "Match the executions of a trading platform export into trades",
		Long: `Match the executions of a trading platform export into trades.

The export must be either an executions grid export (with an "E/X" column) or
an orders grid export (with a "Precio promedio" column). Entries and exits are
matched first-in first-out per account and instrument.

With --save, matched trades are saved to the configured database. Trades that
were already saved are skipped.`,
		Args: appcmd.ExactArgs(1),
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
	// Account is given to executions with no account.
	Account string
	// Format is the output format (table, csv, json).
	Format string
	// Save saves matched trades to the store.
	Save bool
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, tradectlcmd.DirFlagName, ".", tradectlcmd.DirFlagUsage)
	flagSet.StringVar(&f.Account, tradectlcmd.AccountFlagName, "", "The account for executions with an empty account column")
	flagSet.StringVar(&f.Format, tradectlcmd.FormatFlagName, "table", tradectlcmd.FormatFlagUsage)
	flagSet.BoolVar(&f.Save, saveFlagName, false, "Save matched trades to the database")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	// Read the configuration for the import limits and the database.
	config, err := tradectlcmd.ReadConfig(container, flags.Dir)
	if err != nil {
		return err
	}
	logger := container.Logger()
	importer := tradectlimport.NewImporter(
		logger,
		tradectlimport.ImporterWithAccount(flags.Account),
		tradectlimport.ImporterWithReadOptions(config.ReadOptions()...),
	)
	// Import the file.
	result, err := importer.ImportFile(ctx, container.Arg(0))
	if err != nil {
		return err
	}
	// Save the matched trades if requested.
	if flags.Save {
		store, err := tradectlcmd.OpenStore(ctx, container, config)
		if err != nil {
			return err
		}
		saveResult, err := store.SaveTrades(ctx, result.Trades)
		if err := errors.Join(err, store.Close()); err != nil {
			return err
		}
		logger.InfoContext(ctx, "saved trades", "inserted", saveResult.Inserted, "duplicates", saveResult.Duplicates)
	}
	// Print the matched trades.
	return tradectlcmd.WriteTrades(container.Stdout(), format, result.Trades, result.Trades)
}
