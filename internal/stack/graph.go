package stack

import (
	"fmt"
	"slices"
	"strings"
)

// Node declares one stack role.
type Node struct {
	Role         Role
	Template     string
	DependsOn    []Role
	Bindings     []Binding
	Capabilities []string
}

// Graph is the static dependency graph of stack roles. Node order is the
// declared order used to break ties between independent roles.
type Graph struct {
	nodes []Node
	index map[Role]int
}

// NewGraph validates nodes and builds a Graph. Duplicate roles, unknown
// dependencies and cycles are rejected.
func NewGraph(nodes ...Node) (*Graph, error) {
	g := &Graph{
		nodes: make([]Node, 0, len(nodes)),
		index: make(map[Role]int, len(nodes)),
	}
	for _, n := range nodes {
		if n.Role == "" {
			return nil, fmt.Errorf("stack node without a role")
		}
		if _, dup := g.index[n.Role]; dup {
			return nil, fmt.Errorf("duplicate stack role %q", n.Role)
		}
		g.index[n.Role] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
	for _, n := range g.nodes {
		for _, dep := range n.DependsOn {
			if _, ok := g.index[dep]; !ok {
				return nil, fmt.Errorf("stack role %s depends on unknown role %q", n.Role, dep)
			}
		}
		for _, b := range n.Bindings {
			if b.Kind != SourceOutput && b.Kind != SourceStackName {
				continue
			}
			if b.Role != n.Role && !slices.Contains(n.DependsOn, b.Role) {
				return nil, fmt.Errorf("stack role %s binds %s from %s without depending on it", n.Role, b.Parameter, b.Role)
			}
		}
	}
	if _, err := g.Order(); err != nil {
		return nil, err
	}
	return g, nil
}

// Node returns the node declared for role.
func (g *Graph) Node(role Role) (Node, bool) {
	i, ok := g.index[role]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Roles returns every role in declared order.
func (g *Graph) Roles() []Role {
	roles := make([]Role, len(g.nodes))
	for i, n := range g.nodes {
		roles[i] = n.Role
	}
	return roles
}

// Dependents returns the roles that declare role in their DependsOn, in
// declared order.
func (g *Graph) Dependents(role Role) []Role {
	var out []Role
	for _, n := range g.nodes {
		if slices.Contains(n.DependsOn, role) {
			out = append(out, n.Role)
		}
	}
	return out
}

// Order returns a topological order of all roles. Among roles that are
// ready at the same time the one declared first comes first.
func (g *Graph) Order() ([]Role, error) {
	inDegree := make(map[Role]int, len(g.nodes))
	dependents := make(map[Role][]Role, len(g.nodes))
	for _, n := range g.nodes {
		inDegree[n.Role] += 0
		for _, dep := range n.DependsOn {
			inDegree[n.Role]++
			dependents[dep] = append(dependents[dep], n.Role)
		}
	}

	var ready []Role
	for _, n := range g.nodes {
		if inDegree[n.Role] == 0 {
			ready = append(ready, n.Role)
		}
	}

	order := make([]Role, 0, len(g.nodes))
	for len(ready) > 0 {
		slices.SortFunc(ready, func(a, b Role) int { return g.index[a] - g.index[b] })
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, d := range dependents[next] {
			inDegree[d]--
			if inDegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(order) != len(g.nodes) {
		var stuck []string
		for _, n := range g.nodes {
			if inDegree[n.Role] > 0 {
				stuck = append(stuck, string(n.Role))
			}
		}
		return nil, fmt.Errorf("dependency cycle detected among stack roles: %s", strings.Join(stuck, ", "))
	}
	return order, nil
}

// DefaultGraph returns the zone graph: vpc first, then the control plane,
// then the ingress and demo workloads which all consume both.
func DefaultGraph() *Graph {
	workload := func(role Role, template string) Node {
		return Node{
			Role:      role,
			Template:  template,
			DependsOn: []Role{RoleVPC, RoleControlPlane},
			Bindings: []Binding{
				StackName("VPCStackName", RoleVPC),
				StackName("CPStackName", RoleControlPlane),
				Value("Zone", ValueZone),
				Output("CPAddress", RoleVPC, OutputExternalCPAddress),
			},
			Capabilities: []string{CapabilityIAM},
		}
	}

	g, err := NewGraph(
		Node{
			Role:     RoleVPC,
			Template: "vpc.yaml",
			Bindings: []Binding{
				Value("VpcCIDR", ValueVPCCIDR),
				Value("Subnet1CIDR", ValueSubnet1CIDR),
				Value("Subnet2CIDR", ValueSubnet2CIDR),
				Value("Zone", ValueZone),
			},
		},
		Node{
			Role:      RoleControlPlane,
			Template:  "controlplane.yaml",
			DependsOn: []Role{RoleVPC},
			Bindings: []Binding{
				StackName("VPCStackName", RoleVPC),
				Value("Zone", ValueZone),
				Secret("ServerKeySecret", "tls-key"),
				Secret("ServerCertSecret", "tls-cert"),
				Secret("GlobalTokenSecret", "global-token"),
				Value("KDSAddress", ValueKDSAddress).AsOptional(),
				Value("CPId", ValueCPID).AsOptional(),
				Secret("LicenseSecret", "license").AsOptional(),
			},
			Capabilities: []string{CapabilityIAM},
		},
		workload(RoleIngress, "ingress.yaml"),
		workload(RoleRedis, "counter-demo/redis.yaml"),
		workload(RoleDemoApp, "counter-demo/demo-app.yaml"),
	)
	if err != nil {
		panic(fmt.Sprintf("invalid default stack graph: %v", err))
	}
	return g
}
