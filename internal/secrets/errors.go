package secrets

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists is returned by a Store when Put targets an existing key.
	ErrAlreadyExists = errors.New("secret already exists")

	// ErrNotFound is returned by a Store when the key or reference is absent.
	ErrNotFound = errors.New("secret not found")
)

// ConflictError is returned by Manager.Create when the entry already exists.
type ConflictError struct {
	Key string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("secret %s already exists (remove it or rerun with --reuse-secrets)", e.Key)
}

// Unwrap lets errors.Is(err, ErrAlreadyExists) match.
func (e *ConflictError) Unwrap() error {
	return ErrAlreadyExists
}

// IsConflict reports whether err is (or wraps) a *ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
