// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeffrey-arndt/kong-mesh-ecs/cmd/kmecs/handlers"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/logging"
)

// Root returns the root command for the kmecs CLI.
//
// Errors are not printed by cobra: main prints them. Invalid options print
// the usage of the command they were given to.
func Root() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "kmecs",
		Short:         "Provision Kong Mesh zones on AWS ECS",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			handlers.SetLogger(logging.NewLogger(cmd.ErrOrStderr(), logging.ParseLevel(logLevel)))
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return withUsage(c, config.FlagError(err))
	})

	// Zone lifecycle
	cmd.AddCommand(Deploy())
	cmd.AddCommand(Teardown())
	cmd.AddCommand(Status())
	cmd.AddCommand(Plan())

	// Utility commands
	cmd.AddCommand(Doctor())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// withUsage prints the usage of cmd when err is an option error.
func withUsage(cmd *cobra.Command, err error) error {
	if err != nil && config.IsValidation(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
	}
	return err
}

// noPositional rejects stray arguments as an unknown option.
func noPositional(cmd *cobra.Command, args []string) error {
	return withUsage(cmd, config.PositionalArgs(args))
}
