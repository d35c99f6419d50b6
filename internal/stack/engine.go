package stack

import "context"

// ApplyInput is everything the engine needs to create or update a stack.
type ApplyInput struct {
	Name         string
	Role         Role
	Template     string
	Parameters   []Parameter
	Capabilities []string
	Tags         map[string]string
}

// ApplyResult is the terminal outcome of an apply. State is APPLIED or FAILED.
type ApplyResult struct {
	State   State
	Outputs map[string]string
	Reason  string
}

// DestroyResult is the terminal outcome of a delete. State is DELETED or FAILED.
type DestroyResult struct {
	State  State
	Reason string
}

// Description is the live remote view of a stack.
type Description struct {
	Name    string
	Exists  bool
	Status  string
	Reason  string
	Outputs map[string]string
}

// Engine is the template engine contract. Apply and Destroy block until
// the stack reaches a terminal state. A returned error means the outcome
// could not be determined.
type Engine interface {
	Apply(ctx context.Context, in ApplyInput) (ApplyResult, error)
	Destroy(ctx context.Context, name string) (DestroyResult, error)
	Describe(ctx context.Context, name string) (Description, error)
}
