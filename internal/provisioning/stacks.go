package provisioning

import (
	"fmt"
	"slices"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
)

// StacksPhase applies a slice of the plan through the Applier.
type StacksPhase struct {
	name    string
	req     config.DeployRequest
	roles   []stack.Role
	exclude []stack.Role
}

// NewNetworkPhase applies the vpc stack.
func NewNetworkPhase(req config.DeployRequest) *StacksPhase {
	return &StacksPhase{name: "network", req: req, roles: []stack.Role{stack.RoleVPC}}
}

// NewStacksPhase applies every planned stack after the vpc stack.
func NewStacksPhase(req config.DeployRequest) *StacksPhase {
	return &StacksPhase{name: "stacks", req: req, exclude: []stack.Role{stack.RoleVPC}}
}

// Name implements the Phase interface.
func (p *StacksPhase) Name() string {
	return p.name
}

// Provision implements the Phase interface.
func (p *StacksPhase) Provision(ctx *Context) error {
	if ctx.Applier == nil {
		return fmt.Errorf("no stack engine configured")
	}
	return ctx.Applier.Apply(ctx, ctx.Run, DeployInputs(p.req, ctx.State), p.selected(ctx.Plan))
}

func (p *StacksPhase) selected(plan *stack.Plan) []stack.Role {
	if p.roles != nil {
		return p.roles
	}
	roles := make([]stack.Role, 0, len(plan.Stacks))
	for _, r := range plan.Roles() {
		if !slices.Contains(p.exclude, r) {
			roles = append(roles, r)
		}
	}
	return roles
}

// DeployInputs returns the request values and secret references the
// stack parameter bindings read.
func DeployInputs(req config.DeployRequest, st *State) stack.Inputs {
	refs := make(map[string]string, len(st.Secrets))
	for purpose, ref := range st.Secrets {
		refs[string(purpose)] = ref.String()
	}
	return stack.Inputs{
		Values: map[string]string{
			stack.ValueZone:        req.Zone,
			stack.ValueVPCCIDR:     req.VPCCIDR,
			stack.ValueSubnet1CIDR: req.Subnet1CIDR,
			stack.ValueSubnet2CIDR: req.Subnet2CIDR,
			stack.ValueKDSAddress:  req.KDSAddress,
			stack.ValueCPID:        req.CPID,
		},
		Secrets: refs,
	}
}
