package stack

import (
	"errors"
	"fmt"
)

// ApplyFailure aborts a deploy. Indeterminate is set when the wait for a
// terminal state itself failed.
type ApplyFailure struct {
	Stack         string
	Role          Role
	Reason        string
	Indeterminate bool
	Err           error
}

func (e *ApplyFailure) Error() string {
	switch {
	case e.Indeterminate:
		return fmt.Sprintf("stack %s: state indeterminate: %v", e.Stack, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("stack %s failed to apply: %v", e.Stack, e.Err)
	case e.Reason != "":
		return fmt.Sprintf("stack %s failed to apply: %s", e.Stack, e.Reason)
	default:
		return fmt.Sprintf("stack %s failed to apply", e.Stack)
	}
}

func (e *ApplyFailure) Unwrap() error {
	return e.Err
}

// DestroyFailure is recorded for a stack that could not be deleted.
// Blocked is set when the stack was left alone because a dependent
// was not deleted.
type DestroyFailure struct {
	Stack         string
	Role          Role
	Reason        string
	Indeterminate bool
	Blocked       bool
	Err           error
}

func (e *DestroyFailure) Error() string {
	switch {
	case e.Blocked:
		return fmt.Sprintf("stack %s not deleted: %s", e.Stack, e.Reason)
	case e.Indeterminate:
		return fmt.Sprintf("stack %s: deletion state indeterminate: %v", e.Stack, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("stack %s failed to delete: %v", e.Stack, e.Err)
	case e.Reason != "":
		return fmt.Sprintf("stack %s failed to delete: %s", e.Stack, e.Reason)
	default:
		return fmt.Sprintf("stack %s failed to delete", e.Stack)
	}
}

func (e *DestroyFailure) Unwrap() error {
	return e.Err
}

// DestroyFailures extracts every *DestroyFailure from a (joined) error.
func DestroyFailures(err error) []*DestroyFailure {
	if err == nil {
		return nil
	}
	var out []*DestroyFailure
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, DestroyFailures(e)...)
		}
		return out
	}
	var df *DestroyFailure
	if errors.As(err, &df) {
		out = append(out, df)
	}
	return out
}
