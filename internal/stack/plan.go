package stack

import (
	"fmt"
	"slices"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/naming"
)

// Planned is one stack of a Plan.
type Planned struct {
	Role Role
	Name string
	Node Node
}

// Plan is the apply order of one zone's stacks. It is derived on every
// invocation and never persisted.
type Plan struct {
	Zone   string
	Stacks []Planned
	graph  *Graph
}

// SkipRoles maps the skip flags to the roles they remove.
func SkipRoles(skipIngress, skipDemo bool) []Role {
	var roles []Role
	if skipIngress {
		roles = append(roles, RoleIngress)
	}
	if skipDemo {
		roles = append(roles, RoleRedis, RoleDemoApp)
	}
	return roles
}

// NewPlan orders the graph for zone without the skipped roles. Skipping a
// role that a kept role depends on is an error.
func NewPlan(g *Graph, zone string, skip ...Role) (*Plan, error) {
	if zone == "" {
		return nil, fmt.Errorf("plan requires a zone name")
	}
	for _, r := range skip {
		if _, ok := g.Node(r); !ok {
			return nil, fmt.Errorf("cannot skip unknown stack role %q", r)
		}
	}

	order, err := g.Order()
	if err != nil {
		return nil, err
	}

	p := &Plan{Zone: zone, graph: g}
	for _, role := range order {
		if slices.Contains(skip, role) {
			continue
		}
		node, _ := g.Node(role)
		for _, dep := range node.DependsOn {
			if slices.Contains(skip, dep) {
				return nil, fmt.Errorf("cannot skip %s: %s depends on it", dep, role)
			}
		}
		p.Stacks = append(p.Stacks, Planned{Role: role, Name: naming.Stack(zone, string(role)), Node: node})
	}
	return p, nil
}

// Roles returns the apply order.
func (p *Plan) Roles() []Role {
	roles := make([]Role, len(p.Stacks))
	for i, s := range p.Stacks {
		roles[i] = s.Role
	}
	return roles
}

// Names returns the stack names in apply order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Stacks))
	for i, s := range p.Stacks {
		names[i] = s.Name
	}
	return names
}

// Teardown returns the stacks in reverse apply order.
func (p *Plan) Teardown() []Planned {
	out := slices.Clone(p.Stacks)
	slices.Reverse(out)
	return out
}

// Contains reports whether role is part of the plan.
func (p *Plan) Contains(role Role) bool {
	_, ok := p.Get(role)
	return ok
}

// Get returns the planned stack of role.
func (p *Plan) Get(role Role) (Planned, bool) {
	for _, s := range p.Stacks {
		if s.Role == role {
			return s, true
		}
	}
	return Planned{}, false
}

// StackName returns the stack name of role in this zone, whether or not
// the role is planned.
func (p *Plan) StackName(role Role) string {
	return naming.Stack(p.Zone, string(role))
}

// Dependents returns the planned roles that depend on role.
func (p *Plan) Dependents(role Role) []Role {
	var out []Role
	for _, d := range p.graph.Dependents(role) {
		if p.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// SkippedDependents returns the roles outside the plan that depend on role.
func (p *Plan) SkippedDependents(role Role) []Role {
	var out []Role
	for _, d := range p.graph.Dependents(role) {
		if !p.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// Subset returns the planned stacks of roles, in plan order. A nil roles
// selects every stack.
func (p *Plan) Subset(roles []Role) ([]Planned, error) {
	if roles == nil {
		return slices.Clone(p.Stacks), nil
	}
	for _, r := range roles {
		if !p.Contains(r) {
			return nil, fmt.Errorf("stack role %s is not part of the plan", r)
		}
	}
	var out []Planned
	for _, s := range p.Stacks {
		if slices.Contains(roles, s.Role) {
			out = append(out, s)
		}
	}
	return out, nil
}
