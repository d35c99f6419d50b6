// Package destroy handles zone teardown.
package destroy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/confirm"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/metrics"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/provisioning"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/report"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/secrets"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/naming"
)

const opDelete = "delete"

var (
	errNoEngine = errors.New("no stack engine configured")
	errNoStore  = errors.New("no secret store configured")
)

// Provisioner handles zone destruction.
type Provisioner struct {
	req config.TeardownRequest
}

// NewProvisioner creates a new destroy provisioner.
func NewProvisioner(req config.TeardownRequest) *Provisioner {
	return &Provisioner{req: req}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "destroy"
}

// Provision deletes the zone stacks and then, unless they are kept, the
// zone secrets. Stacks that fail to delete are recorded in the state and
// do not stop the rest of the teardown. Only errors that leave the run
// itself inconsistent are returned.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if ctx.Destroyer == nil {
		return errNoEngine
	}

	res, err := ctx.Destroyer.Teardown(ctx, ctx.Run)
	ctx.State.Teardown = res
	if err != nil {
		var df *stack.DestroyFailure
		if !errors.As(err, &df) {
			return err
		}
		ctx.Logger.Warn("some stacks were not deleted", "remaining", res.Remaining, "error", err)
	}

	purposes := Purposes(p.req)
	if p.req.KeepSecrets {
		for _, purpose := range purposes {
			ctx.State.SetSecret(purpose, "", report.SecretKept, "")
		}
		ctx.Logger.Info("keeping zone secrets", "count", len(purposes))
		return nil
	}
	if ctx.Secrets == nil {
		return errNoStore
	}

	for _, purpose := range purposes {
		deleteSecret(ctx, purpose)
	}
	return nil
}

func deleteSecret(ctx *provisioning.Context, purpose secrets.Purpose) {
	key := ctx.Secrets.Key(purpose)
	provisioning.LogResourceDeleting(ctx.Observer, ctx.Phase(), provisioning.ResourceSecret, key)

	removed, err := ctx.Secrets.Delete(ctx, purpose)
	switch {
	case err != nil:
		ctx.State.SetSecret(purpose, "", report.SecretRemaining, err.Error())
		ctx.Metrics.SecretOp(opDelete, string(purpose), metrics.ResultFailed)
		provisioning.LogResourceFailed(ctx.Observer, ctx.Phase(), provisioning.ResourceSecret, key, err.Error())
	case removed:
		ctx.State.SetSecret(purpose, "", report.SecretDeleted, "")
		ctx.Metrics.SecretOp(opDelete, string(purpose), metrics.ResultSuccess)
		provisioning.LogResourceDeleted(ctx.Observer, ctx.Phase(), provisioning.ResourceSecret, key)
	default:
		ctx.State.SetSecret(purpose, "", report.SecretAbsent, "")
		ctx.Metrics.SecretOp(opDelete, string(purpose), metrics.ResultAbsent)
		provisioning.LogResourceAbsent(ctx.Observer, ctx.Phase(), provisioning.ResourceSecret, key)
	}
}

// Purposes returns the secrets of a zone a teardown of req concerns. The
// license is only part of a self-hosted zone.
func Purposes(req config.TeardownRequest) []secrets.Purpose {
	var out []secrets.Purpose
	for _, p := range secrets.Purposes() {
		if p == secrets.License && !req.IncludeLicense {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Resources lists what the confirmation gate shows: the stacks in the
// order they are deleted and, unless kept, the secret keys.
func Resources(plan *stack.Plan, req config.TeardownRequest) confirm.Resources {
	res := confirm.Resources{Zone: req.Zone}
	for _, s := range plan.Teardown() {
		res.Stacks = append(res.Stacks, s.Name)
	}
	if !req.KeepSecrets {
		for _, p := range Purposes(req) {
			res.Secrets = append(res.Secrets, naming.Secret(req.Zone, string(p)))
		}
	}
	return res
}

// Teardown asks gate for confirmation and then destroys the zone of req.
// Missing clients fail before the gate asks anything. A declined
// confirmation returns a cancelled summary and no error without a single
// remote call. Stacks that could not be deleted are reported as
// remaining, not as an error.
func Teardown(ctx context.Context, deps provisioning.Deps, req config.TeardownRequest, gate *confirm.Gate) (report.Teardown, error) {
	summary := report.Teardown{Zone: req.Zone, Region: req.Region}

	plan, err := provisioning.NewPlan(deps.Graph, req.Zone, req.SkipIngress, req.SkipDemo)
	if err != nil {
		return summary, err
	}
	if gate == nil {
		return summary, fmt.Errorf("teardown requires a confirmation gate")
	}
	if err := checkDeps(deps, req); err != nil {
		return summary, err
	}

	decision, err := gate.Confirm(ctx, Resources(plan, req))
	if err != nil {
		return summary, fmt.Errorf("confirmation failed: %w", err)
	}
	if decision != confirm.Proceed {
		summary.Cancelled = true
		return summary, nil
	}

	pctx := provisioning.NewContext(ctx, plan, deps)
	pctx.Logger.Info("tearing down zone", "request", req)

	err = provisioning.RunPhases(pctx, []provisioning.Phase{NewProvisioner(req)})
	return Summary(pctx, req), err
}

func checkDeps(deps provisioning.Deps, req config.TeardownRequest) error {
	if deps.Engine == nil {
		return errNoEngine
	}
	if deps.Store == nil && !req.KeepSecrets {
		return errNoStore
	}
	return nil
}

// Summary builds the teardown report from a finished context.
func Summary(ctx *provisioning.Context, req config.TeardownRequest) report.Teardown {
	res := ctx.State.Teardown
	t := report.Teardown{
		Zone:    req.Zone,
		Region:  req.Region,
		Deleted: res.Deleted,
		Absent:  res.Absent,
	}
	for _, name := range res.Remaining {
		row := report.StackRow{Name: name, State: report.StateFailed}
		for _, rec := range ctx.Run.Records() {
			if rec.Name == name {
				row = report.StackRow{Name: rec.Name, Role: string(rec.Role), State: string(rec.State), Reason: rec.Reason}
				break
			}
		}
		t.Remaining = append(t.Remaining, row)
	}
	for _, purpose := range Purposes(req) {
		t.Secrets = append(t.Secrets, ctx.State.SecretRow(naming.Secret(req.Zone, string(purpose)), purpose))
	}
	return t
}
