// Copyright 2026 Peter Edge
//
// All rights reserved.

package main

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tradectl/cmd/tradectl/internal/command/config"
	"github.com/bufdev/tradectl/cmd/tradectl/internal/command/importfile"
	"github.com/bufdev/tradectl/cmd/tradectl/internal/command/serve"
	"github.com/bufdev/tradectl/cmd/tradectl/internal/command/trade"
)

func main() {
	appcmd.Main(context.Background(), newRootCommand("tradectl"))
}

// newRootCommand creates the root tradectl command with all sub-commands.
func newRootCommand(name string) *appcmd.Command {
	builder := appext.NewBuilder(name)
	return &appcmd.Command{
		Use:                 name,
		Short:               "Import trading platform exports into a trade journal",
		BindPersistentFlags: builder.BindRoot,
		SubCommands: []*appcmd.Command{
			config.NewCommand("config", builder),
			importfile.NewCommand("import", builder),
			trade.NewCommand("trade", builder),
			serve.NewCommand("serve", builder),
		},
	}
}
