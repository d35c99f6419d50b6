package commands

import (
	"github.com/spf13/cobra"

	"github.com/jeffrey-arndt/kong-mesh-ecs/cmd/kmecs/handlers"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
)

// Status returns the command for showing the live state of a zone.
func Status() *cobra.Command {
	var opts config.StatusOptions
	var output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the live state of a zone",
		Long: `Show which stacks and secrets of a zone exist right now.

Nothing is cached between invocations: every stack is described and every
secret is looked up on each run.`,
		Args: noPositional,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := opts.Build()
			if err != nil {
				return withUsage(cmd, err)
			}
			return withUsage(cmd, handlers.Status(cmd.Context(), req, output))
		},
	}
	opts.Bind(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", handlers.OutputTable, "Output format: table, json or yaml")

	return cmd
}
