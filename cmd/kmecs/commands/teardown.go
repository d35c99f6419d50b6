package commands

import (
	"github.com/spf13/cobra"

	"github.com/jeffrey-arndt/kong-mesh-ecs/cmd/kmecs/handlers"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
)

// Teardown returns the command for removing a zone.
func Teardown() *cobra.Command {
	var opts config.TeardownOptions

	cmd := &cobra.Command{
		Use:     "teardown",
		Aliases: []string{"destroy"},
		Short:   "Remove a Kong Mesh zone from AWS",
		Long: `Remove a Kong Mesh zone from AWS.

The stacks are deleted in reverse dependency order, then the zone secrets
are removed (unless --keep-secrets). Resources that do not exist are skipped,
so teardown can be rerun safely. The exact resources are listed and must be
confirmed unless --yes is given.

Pass the same --skip-demo/--skip-ingress flags the zone was deployed with.`,
		Args: noPositional,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := opts.Build(cmd.Flags())
			if err != nil {
				return withUsage(cmd, err)
			}
			return handlers.Teardown(cmd.Context(), req)
		},
	}
	opts.Bind(cmd.Flags())

	return cmd
}
