// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package trade implements the "trade" command group.
package trade

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tradectl/cmd/tradectl/internal/command/trade/tradelist"
)

// NewCommand returns a new trade command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Display saved trades",
		SubCommands: []*appcmd.Command{
			tradelist.NewCommand("list", builder),
		},
	}
}
