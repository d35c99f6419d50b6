package provisioning

import (
	"context"
	"fmt"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/report"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/secrets"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
)

// Status describes every stack role and checks every secret purpose of
// the zone. Nothing from earlier invocations is consulted.
func Status(ctx context.Context, deps Deps, req config.StatusRequest) (report.Status, error) {
	st := report.Status{Zone: req.Zone, Region: req.Region}
	if deps.Engine == nil || deps.Store == nil {
		return st, fmt.Errorf("status needs both a stack engine and a secret store")
	}

	plan, err := NewPlan(deps.Graph, req.Zone, false, false)
	if err != nil {
		return st, err
	}

	observed, err := stack.Observe(ctx, deps.Engine, plan)
	if err != nil {
		return st, err
	}
	for _, o := range observed {
		st.Stacks = append(st.Stacks, report.StackStatus{
			Name:   o.Name,
			Role:   string(o.Role),
			Exists: o.Description.Exists,
			Status: o.Description.Status,
			Reason: o.Description.Reason,
		})
		if o.Role == stack.RoleVPC && o.Description.Exists {
			st.ControlPlaneAddress = o.Description.Outputs[stack.OutputExternalCPAddress]
		}
	}

	mgr := secrets.NewManager(req.Zone, deps.Store, deps.Logger)
	for _, purpose := range secrets.Purposes() {
		ok, err := mgr.Exists(ctx, purpose)
		if err != nil {
			return st, err
		}
		st.Secrets = append(st.Secrets, report.SecretStatus{Key: mgr.Key(purpose), Exists: ok})
	}
	return st, nil
}
