package stack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// TeardownResult lists what happened to each stack of a teardown.
type TeardownResult struct {
	// Deleted were present and are now gone.
	Deleted []string
	// Absent did not exist remotely.
	Absent []string
	// Remaining may still exist: failed, blocked or indeterminate.
	Remaining []string
}

// Destroyer deletes planned stacks in reverse order and keeps going
// when one of them fails.
type Destroyer struct {
	engine Engine
	logger *slog.Logger
}

// NewDestroyer returns a Destroyer driving engine.
func NewDestroyer(engine Engine, logger *slog.Logger) *Destroyer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Destroyer{engine: engine, logger: logger}
}

// Teardown walks the run's plan from last to first. A stack that does not
// exist counts as deleted. A stack whose planned dependent is neither
// DELETED nor NOT_APPLIED is left in place, and so is a stack whose
// skipped dependent still exists remotely. Skipped stacks are described
// but never deleted. Every failure is collected and returned joined once
// the whole plan has been walked.
func (d *Destroyer) Teardown(ctx context.Context, run *Run) (TeardownResult, error) {
	plan := run.Plan()
	var (
		res      TeardownResult
		failures []error
		kept     = map[Role]bool{}
		present  = map[Role]bool{}
	)

	for _, s := range plan.Teardown() {
		log := d.logger.With("stack", s.Name, "role", s.Role)

		blocker := blockingDependents(plan, run, kept, s.Role)
		blocker = append(blocker, d.presentSkipped(ctx, plan, present, s.Role)...)
		if len(blocker) > 0 {
			kept[s.Role] = true
			reason := fmt.Sprintf("still needed by %s", strings.Join(blocker, ", "))
			run.setReason(s.Role, reason)
			log.Warn("skipping stack", "reason", reason)
			res.Remaining = append(res.Remaining, s.Name)
			failures = append(failures, &DestroyFailure{Stack: s.Name, Role: s.Role, Blocked: true, Reason: reason})
			continue
		}

		if err := d.destroyOne(ctx, run, s, log, &res); err != nil {
			var df *DestroyFailure
			if !errors.As(err, &df) {
				return res, err
			}
			res.Remaining = append(res.Remaining, s.Name)
			failures = append(failures, err)
		}
	}

	return res, errors.Join(failures...)
}

func (d *Destroyer) destroyOne(ctx context.Context, run *Run, s Planned, log *slog.Logger, res *TeardownResult) error {
	desc, err := d.engine.Describe(ctx, s.Name)
	if err != nil {
		// Unknown remote state counts as present so its dependencies stay.
		if terr := run.transition(s.Role, Failed, err.Error()); terr != nil {
			return terr
		}
		log.Error("cannot determine stack state", "error", err)
		return &DestroyFailure{Stack: s.Name, Role: s.Role, Indeterminate: true, Err: err}
	}

	if !desc.Exists {
		if err := run.transition(s.Role, Deleted, "absent"); err != nil {
			return err
		}
		log.Warn("stack does not exist, nothing to delete")
		res.Absent = append(res.Absent, s.Name)
		return nil
	}

	run.setOutputs(s.Role, desc.Outputs)
	if err := run.transition(s.Role, Applied, desc.Status); err != nil {
		return err
	}
	if err := run.transition(s.Role, Deleting, ""); err != nil {
		return err
	}
	log.Info("deleting stack", "status", desc.Status)

	out, err := d.engine.Destroy(ctx, s.Name)
	if err != nil {
		run.setReason(s.Role, err.Error())
		log.Error("stack deletion indeterminate", "error", err)
		return &DestroyFailure{Stack: s.Name, Role: s.Role, Indeterminate: true, Err: err}
	}

	if out.State != Deleted {
		reason := out.Reason
		if reason == "" {
			reason = fmt.Sprintf("terminal state %s", out.State)
		}
		if err := run.transition(s.Role, Failed, reason); err != nil {
			return err
		}
		log.Error("stack deletion failed", "reason", reason)
		return &DestroyFailure{Stack: s.Name, Role: s.Role, Reason: reason}
	}

	if err := run.transition(s.Role, Deleted, ""); err != nil {
		return err
	}
	log.Info("stack deleted")
	res.Deleted = append(res.Deleted, s.Name)
	return nil
}

func blockingDependents(plan *Plan, run *Run, kept map[Role]bool, role Role) []string {
	var names []string
	for _, dep := range plan.Dependents(role) {
		if kept[dep] {
			names = append(names, plan.StackName(dep))
			continue
		}
		switch run.State(dep) {
		case Deleted, NotApplied:
		default:
			names = append(names, plan.StackName(dep))
		}
	}
	return names
}

// presentSkipped returns the skipped dependents of role that still exist.
// Each skipped role is described once per teardown; one that cannot be
// described counts as present.
func (d *Destroyer) presentSkipped(ctx context.Context, plan *Plan, present map[Role]bool, role Role) []string {
	var names []string
	for _, dep := range plan.SkippedDependents(role) {
		exists, seen := present[dep]
		if !seen {
			name := plan.StackName(dep)
			desc, err := d.engine.Describe(ctx, name)
			switch {
			case err != nil:
				d.logger.Warn("cannot determine state of skipped stack", "stack", name, "error", err)
				exists = true
			case desc.Exists:
				d.logger.Warn("skipped stack still exists", "stack", name, "status", desc.Status)
				exists = true
			}
			present[dep] = exists
		}
		if exists {
			names = append(names, plan.StackName(dep))
		}
	}
	return names
}
