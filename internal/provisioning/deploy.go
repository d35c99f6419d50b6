package provisioning

import (
	"context"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/report"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/secrets"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/naming"
)

// DeployPhases returns the deploy pipeline for req.
func DeployPhases(req config.DeployRequest) []Phase {
	return []Phase{
		NewPrerequisitesPhase(req),
		NewValidationPhase(req),
		NewSecretsPhase(req),
		NewNetworkPhase(req),
		NewCertificatePhase(req),
		NewCertificateSecretsPhase(),
		NewStacksPhase(req),
	}
}

// Deploy provisions the zone of req. The summary is returned whether or
// not the pipeline succeeded; resources created before a failure stay in
// place.
func Deploy(ctx context.Context, deps Deps, req config.DeployRequest) (report.Deploy, error) {
	plan, err := NewPlan(deps.Graph, req.Zone, req.SkipIngress, req.SkipDemo)
	if err != nil {
		return report.Deploy{Zone: req.Zone, Region: req.Region, Mode: string(req.Mode), Err: err}, err
	}

	pctx := NewContext(ctx, plan, deps)
	pctx.Logger.Info("deploying zone", "request", req)

	err = RunPhases(pctx, DeployPhases(req))
	return DeploySummary(pctx, req, err), err
}

// DeploySummary builds the deploy report from the context of a finished
// (or aborted) pipeline.
func DeploySummary(ctx *Context, req config.DeployRequest, err error) report.Deploy {
	d := report.Deploy{
		Zone:   req.Zone,
		Region: req.Region,
		Mode:   string(req.Mode),
		Err:    err,
	}
	for _, rec := range ctx.Run.Records() {
		d.Stacks = append(d.Stacks, report.StackRow{
			Name:   rec.Name,
			Role:   string(rec.Role),
			State:  string(rec.State),
			Reason: rec.Reason,
		})
	}
	d.ControlPlaneAddress, _ = ctx.Run.Output(stack.RoleVPC, stack.OutputExternalCPAddress)

	for _, purpose := range DeployPurposes(req) {
		d.Secrets = append(d.Secrets, ctx.State.SecretRow(ctx.secretKey(purpose), purpose))
	}
	return d
}

// DeployPurposes returns the secrets a deploy of req creates, in creation
// order.
func DeployPurposes(req config.DeployRequest) []secrets.Purpose {
	var out []secrets.Purpose
	for _, p := range secrets.Purposes() {
		if p == secrets.License && !req.HasLicense() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (c *Context) secretKey(purpose secrets.Purpose) string {
	return naming.Secret(c.Zone, string(purpose))
}
