// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package serve implements the "serve" command.
package serve

import (
	"context"
	"errors"
	"log/slog"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tradectl/cmd/tradectl/internal/tradectlcmd"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlserver"
	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

// addressFlagName is the flag name for the listen address.
const addressFlagName = "address"

// NewCommand returns a new serve command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Serve the import API",
		Long: `Serve the import API.

Routes:

  POST /api/importar-csv   Import a multipart "file" upload, with an optional
                           "cuenta_id" account, and save its trades
  GET  /api/trades         List saved trades (account, instrument, limit)
  GET  /metrics            Prometheus metrics

Environment variables are also read from the .env file in --dir.`,
		Args: appcmd.NoArgs,
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
	// Address overrides server.address from the configuration file.
	Address string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, tradectlcmd.DirFlagName, ".", tradectlcmd.DirFlagUsage)
	flagSet.StringVar(&f.Address, addressFlagName, "", "The address to listen on (overrides server.address)")
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	config, err := tradectlcmd.ReadConfig(container, flags.Dir)
	if err != nil {
		return err
	}
	// The --address flag overrides the configured address.
	address := config.ServerAddress
	if flags.Address != "" {
		address = flags.Address
	}
	logger := container.Logger()
	// Only use gin's debug mode when debug logging is on.
	if logger.Enabled(ctx, slog.LevelDebug) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	store, err := tradectlcmd.OpenStore(ctx, container, config)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, store.Close())
	}()
	// Serve until the context is canceled.
	server := tradectlserver.NewServer(
		logger,
		store,
		tradectlserver.ServerWithMaxBytes(config.ImportMaxBytes),
		tradectlserver.ServerWithMaxRows(config.ImportMaxRows),
	)
	return server.Run(ctx, address)
}
