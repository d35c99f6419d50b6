package stack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/labels"
)

// Applier applies planned stacks in order and stops at the first failure.
type Applier struct {
	engine Engine
	logger *slog.Logger
}

// NewApplier returns an Applier driving engine.
func NewApplier(engine Engine, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Applier{engine: engine, logger: logger}
}

// Apply applies the given roles of the run's plan in plan order. A nil
// roles applies the whole plan. Every dependency of a stack must already
// be APPLIED in run. The first stack that fails, or whose outcome cannot
// be determined, is returned as an *ApplyFailure and nothing after it is
// attempted. Stacks applied earlier stay applied.
func (a *Applier) Apply(ctx context.Context, run *Run, in Inputs, roles []Role) error {
	plan := run.Plan()
	stacks, err := plan.Subset(roles)
	if err != nil {
		return err
	}

	for _, s := range stacks {
		if err := a.applyOne(ctx, plan, run, in, s); err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) applyOne(ctx context.Context, plan *Plan, run *Run, in Inputs, s Planned) error {
	log := a.logger.With("stack", s.Name, "role", s.Role)

	for _, dep := range s.Node.DependsOn {
		if st := run.State(dep); st != Applied {
			reason := fmt.Sprintf("dependency %s is %s", plan.StackName(dep), st)
			_ = run.transition(s.Role, Failed, reason)
			return &ApplyFailure{Stack: s.Name, Role: s.Role, Reason: reason}
		}
	}

	params, err := Resolve(s, plan, run, in)
	if err != nil {
		_ = run.transition(s.Role, Failed, err.Error())
		return &ApplyFailure{Stack: s.Name, Role: s.Role, Err: err}
	}

	if err := run.transition(s.Role, Applying, ""); err != nil {
		return err
	}
	log.Info("applying stack", "parameters", len(params))

	res, err := a.engine.Apply(ctx, ApplyInput{
		Name:         s.Name,
		Role:         s.Role,
		Template:     s.Node.Template,
		Parameters:   params,
		Capabilities: s.Node.Capabilities,
		Tags:         labels.NewLabelBuilder(plan.Zone).WithRole(string(s.Role)).Build(),
	})
	if err != nil {
		run.setReason(s.Role, err.Error())
		log.Error("stack state indeterminate", "error", err)
		return &ApplyFailure{Stack: s.Name, Role: s.Role, Indeterminate: true, Err: err}
	}

	if res.State != Applied {
		reason := res.Reason
		if reason == "" {
			reason = fmt.Sprintf("terminal state %s", res.State)
		}
		if err := run.transition(s.Role, Failed, reason); err != nil {
			return err
		}
		log.Error("stack failed", "reason", reason)
		return &ApplyFailure{Stack: s.Name, Role: s.Role, Reason: reason}
	}

	run.setOutputs(s.Role, res.Outputs)
	if err := run.transition(s.Role, Applied, ""); err != nil {
		return err
	}
	log.Info("stack applied", "outputs", len(res.Outputs))
	return nil
}
