package provisioning

import (
	"context"
	"log/slog"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/certs"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/metrics"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/report"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/secrets"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
)

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Secret references by purpose (populated by the secret phases)
	Secrets map[secrets.Purpose]secrets.Reference

	// Per-purpose summary status and failure reason
	SecretStatus map[secrets.Purpose]string
	SecretReason map[secrets.Purpose]string

	// Certificate results (populated by the certificate phase).
	// ReuseTLS is set when both TLS secrets already exist and are reused.
	KeyPair  *certs.KeyPair
	ReuseTLS bool

	// Teardown results (populated by the destroy provisioner)
	Teardown stack.TeardownResult
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{
		Secrets:      make(map[secrets.Purpose]secrets.Reference),
		SecretStatus: make(map[secrets.Purpose]string),
		SecretReason: make(map[secrets.Purpose]string),
	}
}

// SetSecret records the outcome of a secret operation. ref may be empty.
func (s *State) SetSecret(purpose secrets.Purpose, ref secrets.Reference, status, reason string) {
	if ref != "" {
		s.Secrets[purpose] = ref
	}
	s.SecretStatus[purpose] = status
	if reason != "" {
		s.SecretReason[purpose] = reason
	} else {
		delete(s.SecretReason, purpose)
	}
}

// SecretRow returns the summary row of purpose stored under key.
// Purposes nothing was recorded for are reported as not created.
func (s *State) SecretRow(key string, purpose secrets.Purpose) report.SecretRow {
	status, ok := s.SecretStatus[purpose]
	if !ok {
		status = report.SecretPending
	}
	return report.SecretRow{Key: key, Status: status, Reason: s.SecretReason[purpose]}
}

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Zone      string
	Plan      *stack.Plan
	Run       *stack.Run
	State     *State
	Engine    stack.Engine
	Applier   *stack.Applier
	Destroyer *stack.Destroyer
	Secrets   *secrets.Manager
	Certs     *certs.Provisioner
	Buckets   BucketChecker
	Tools     ToolChecker
	Observer  Observer
	Metrics   *metrics.Recorder
	Logger    *slog.Logger

	phase string
}

// NewContext creates a new provisioning context for plan. Every stack
// transition of the run is reported to the observer and the metrics
// recorder.
func NewContext(ctx context.Context, plan *stack.Plan, deps Deps) *Context {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	observer := deps.Observer
	if observer == nil {
		observer = NewSlogObserver(logger)
	}

	c := &Context{
		Context:  ctx,
		Zone:     plan.Zone,
		Plan:     plan,
		Run:      stack.NewRun(plan),
		State:    NewState(),
		Engine:   deps.Engine,
		Buckets:  deps.Buckets,
		Tools:    deps.Tools,
		Observer: observer.WithFields(map[string]string{"zone": plan.Zone}),
		Metrics:  deps.Metrics,
		Logger:   logger.With("zone", plan.Zone),
	}
	if deps.Engine != nil {
		c.Applier = stack.NewApplier(deps.Engine, c.Logger)
		c.Destroyer = stack.NewDestroyer(deps.Engine, c.Logger)
	}
	if deps.Store != nil {
		c.Secrets = secrets.NewManager(plan.Zone, deps.Store, logger)
	}
	if deps.CertTool != nil {
		c.Certs = certs.NewProvisioner(deps.CertTool)
	}

	c.Run.Watch(c.observeTransition)
	if deps.Metrics != nil {
		c.Run.Watch(deps.Metrics.ObserveTransition)
	}
	return c
}

// Phase returns the name of the phase currently running.
func (c *Context) Phase() string {
	return c.phase
}

func (c *Context) observeTransition(t stack.Transition) {
	switch t.To {
	case stack.Applying:
		LogResourceCreating(c.Observer, c.phase, ResourceStack, t.Name)
	case stack.Applied:
		if t.From == stack.Applying {
			LogResourceCreated(c.Observer, c.phase, ResourceStack, t.Name, "")
		} else {
			LogResourceExists(c.Observer, c.phase, ResourceStack, t.Name, t.Reason)
		}
	case stack.Failed:
		LogResourceFailed(c.Observer, c.phase, ResourceStack, t.Name, t.Reason)
	case stack.Deleting:
		LogResourceDeleting(c.Observer, c.phase, ResourceStack, t.Name)
	case stack.Deleted:
		if t.From == stack.NotApplied {
			LogResourceAbsent(c.Observer, c.phase, ResourceStack, t.Name)
		} else {
			LogResourceDeleted(c.Observer, c.phase, ResourceStack, t.Name)
		}
	}
}
