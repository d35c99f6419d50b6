package commands

import (
	"github.com/spf13/cobra"

	"github.com/jeffrey-arndt/kong-mesh-ecs/cmd/kmecs/handlers"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
)

// Deploy returns the command for provisioning a zone.
//
// Required flags:
//
//	--zone-name: Name of the zone
//	--connectivity-token: Token issued by the global control plane
//	--kds-address and --cp-id, or --license-file for a self-hosted zone
func Deploy() *cobra.Command {
	var opts config.DeployOptions

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a Kong Mesh zone to AWS ECS",
		Long: `Deploy a Kong Mesh zone to AWS ECS.

The zone secrets are stored in Secrets Manager first, then the CloudFormation
stacks are applied in dependency order:

  vpc -> control-plane -> ingress, redis, demo-app

The control plane certificate is generated for the load balancer address the
vpc stack reports. A failed stack stops the deploy; stacks applied before it
stay in place.

Examples:
  # Zone connected to a hosted global control plane
  kmecs deploy --zone-name z1 --kds-address grpcs://kds.example.com:443 \
    --cp-id 0f6c7b1e --connectivity-token "$TOKEN"

  # Self-hosted zone without the demo workloads
  kmecs deploy --zone-name z2 --license-file license.json \
    --connectivity-token "$TOKEN" --skip-demo`,
		Args: noPositional,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := opts.Build(cmd.Flags())
			if err != nil {
				return withUsage(cmd, err)
			}
			return handlers.Deploy(cmd.Context(), req)
		},
	}
	opts.Bind(cmd.Flags())

	return cmd
}
