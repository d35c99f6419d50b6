package provisioning

import (
	"context"
	"log/slog"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/certs"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/metrics"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/secrets"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/prerequisites"
)

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}

// BucketChecker reports whether the template bucket exists.
// Implemented by internal/platform/s3.Client.
type BucketChecker interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// ToolChecker verifies that the external tools a deploy needs are installed.
type ToolChecker func(req config.DeployRequest) error

// CheckTools returns a ToolChecker that looks for kumactl (or the given
// binary) on PATH when the request generates its certificate with it.
func CheckTools(kumactl string) ToolChecker {
	return func(req config.DeployRequest) error {
		needKumactl := req.CertGenerator == config.CertGeneratorKumactl
		return prerequisites.CheckForDeploy(needKumactl, kumactl).Error()
	}
}

// Deps are the collaborators of one invocation. Only Engine is needed by
// every flow; the others may be nil when the flow does not use them.
type Deps struct {
	Engine   stack.Engine
	Store    secrets.Store
	CertTool certs.Tool
	Buckets  BucketChecker
	Tools    ToolChecker

	// Graph defaults to stack.DefaultGraph().
	Graph *stack.Graph

	Observer Observer
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

// NewPlan derives the plan of zone from the graph (nil selects the default
// graph) without the skipped roles.
func NewPlan(g *stack.Graph, zone string, skipIngress, skipDemo bool) (*stack.Plan, error) {
	if g == nil {
		g = stack.DefaultGraph()
	}
	return stack.NewPlan(g, zone, stack.SkipRoles(skipIngress, skipDemo)...)
}
