package commands

import (
	"github.com/spf13/cobra"

	"github.com/jeffrey-arndt/kong-mesh-ecs/cmd/kmecs/handlers"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
)

// Plan returns the command for previewing a deploy.
func Plan() *cobra.Command {
	var opts config.DeployOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a deploy would create, without calling AWS",
		Long: `Validate the deploy options and print the stacks in apply order, the
secrets that would be stored and the order a teardown would delete the
stacks in. Accepts the same flags as deploy.`,
		Args: noPositional,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := opts.Build(cmd.Flags())
			if err != nil {
				return withUsage(cmd, err)
			}
			return handlers.Plan(req)
		},
	}
	opts.Bind(cmd.Flags())

	return cmd
}
