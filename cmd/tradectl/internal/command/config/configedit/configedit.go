// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package configedit implements the "config edit" command.
package configedit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tradectl/cmd/tradectl/internal/tradectlcmd"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlconfig"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlpath"
	"github.com/spf13/pflag"
)

// NewCommand returns a new config edit command that opens the configuration file in an editor.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Edit the configuration file in $EDITOR",
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
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, tradectlcmd.DirFlagName, ".", tradectlcmd.DirFlagUsage)
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	// Determine the editor from the EDITOR environment variable.
	editor := container.Env("EDITOR")
	if editor == "" {
		return errors.New("EDITOR environment variable is not set")
	}
	configFilePath := tradectlpath.ConfigFilePath(flags.Dir)
	// Create the configuration file with the default template if it does not exist.
	if _, err := os.Stat(configFilePath); errors.Is(err, os.ErrNotExist) {
		if _, err := tradectlconfig.InitConfig(flags.Dir); err != nil {
			return err
		}
	}
	// Open the configuration file in the editor.
	cmd := exec.CommandContext(ctx, editor, configFilePath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}
	// Validate the edited configuration.
	if _, err := tradectlcmd.ReadConfig(container, flags.Dir); err != nil {
		return err
	}
	// Print the path of the edited file.
	_, err := fmt.Fprintf(container.Stdout(), "%s\n", configFilePath)
	return err
}
