package stack

import (
	"context"
	"fmt"
)

// Observation pairs a planned stack with its live description.
type Observation struct {
	Role        Role
	Name        string
	Description Description
}

// Observe describes every planned stack. Nothing is cached: the result
// is whatever the engine reports right now.
func Observe(ctx context.Context, engine Engine, plan *Plan) ([]Observation, error) {
	out := make([]Observation, 0, len(plan.Stacks))
	for _, s := range plan.Stacks {
		desc, err := engine.Describe(ctx, s.Name)
		if err != nil {
			return out, fmt.Errorf("failed to describe stack %s: %w", s.Name, err)
		}
		out = append(out, Observation{Role: s.Role, Name: s.Name, Description: desc})
	}
	return out, nil
}
