package handlers

import (
	"fmt"
	"strings"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/provisioning"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/naming"
)

// Plan prints what a deploy of req would apply, in order, and the order a
// teardown would delete it in. It makes no remote call.
func Plan(req config.DeployRequest) error {
	plan, err := provisioning.NewPlan(nil, req.Zone, req.SkipIngress, req.SkipDemo)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Zone %s (%s, %s)\n\n", req.Zone, req.Region, req.Mode)
	fmt.Fprintln(stdout, "Apply order:")
	for i, s := range plan.Stacks {
		line := fmt.Sprintf("  %d. %-24s %s", i+1, s.Name, s.Node.Template)
		if len(s.Node.DependsOn) > 0 {
			deps := make([]string, 0, len(s.Node.DependsOn))
			for _, d := range s.Node.DependsOn {
				deps = append(deps, plan.StackName(d))
			}
			line += fmt.Sprintf("  (after %s)", strings.Join(deps, ", "))
		}
		fmt.Fprintln(stdout, line)
	}

	fmt.Fprintln(stdout, "\nSecrets:")
	for _, p := range provisioning.DeployPurposes(req) {
		fmt.Fprintf(stdout, "  - %s\n", naming.Secret(req.Zone, string(p)))
	}

	fmt.Fprintln(stdout, "\nTeardown order:")
	for i, s := range plan.Teardown() {
		fmt.Fprintf(stdout, "  %d. %s\n", i+1, s.Name)
	}
	return nil
}
