// Package confirm guards destructive commands behind an explicit answer.
//
// The decision itself is the pure function [Decide]; everything else only
// collects an answer and hands it over, so teardown can be run unattended
// with --yes without touching the orchestration code.
package confirm

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Decision is the outcome of a confirmation.
type Decision int

const (
	// Abort leaves every resource untouched.
	Abort Decision = iota
	// Proceed allows the destructive action.
	Proceed
)

func (d Decision) String() string {
	if d == Proceed {
		return "proceed"
	}
	return "abort"
}

// Decide maps an answer to a decision. Only "y" and "yes" proceed, in any
// case and surrounded by any whitespace.
func Decide(answer string) Decision {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return Proceed
	default:
		return Abort
	}
}

// Resources lists what a teardown will remove.
type Resources struct {
	Zone    string
	Stacks  []string
	Secrets []string
}

// Prompter asks a yes/no question.
type Prompter interface {
	Prompt(ctx context.Context, question string) (Decision, error)
}

// Gate renders the resources and asks for confirmation.
type Gate struct {
	prompter  Prompter
	out       io.Writer
	assumeYes bool
}

// NewGate returns a Gate. With assumeYes the prompter is never consulted.
func NewGate(prompter Prompter, out io.Writer, assumeYes bool) *Gate {
	if out == nil {
		out = io.Discard
	}
	return &Gate{prompter: prompter, out: out, assumeYes: assumeYes}
}

// Confirm shows res and returns the user's decision.
func (g *Gate) Confirm(ctx context.Context, res Resources) (Decision, error) {
	fmt.Fprint(g.out, Describe(res))

	if g.assumeYes {
		fmt.Fprintln(g.out, "Proceeding without confirmation (--yes).")
		return Proceed, nil
	}
	if g.prompter == nil {
		return Abort, fmt.Errorf("no prompter available; rerun with --yes")
	}

	question := fmt.Sprintf("Delete zone %s?", res.Zone)
	d, err := g.prompter.Prompt(ctx, question)
	if err != nil {
		return Abort, err
	}
	return d, nil
}

// Describe renders the exact resources that will be removed.
func Describe(res Resources) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following resources of zone %s will be deleted:\n", res.Zone)
	b.WriteString("  Stacks:\n")
	if len(res.Stacks) == 0 {
		b.WriteString("    (none)\n")
	}
	for _, s := range res.Stacks {
		fmt.Fprintf(&b, "    - %s\n", s)
	}
	if len(res.Secrets) == 0 {
		b.WriteString("  Secrets: kept\n")
		return b.String()
	}
	b.WriteString("  Secrets:\n")
	for _, s := range res.Secrets {
		fmt.Fprintf(&b, "    - %s\n", s)
	}
	return b.String()
}
