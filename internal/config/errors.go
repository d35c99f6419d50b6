package config

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a validation failure.
type Kind string

const (
	// MissingRequiredParameter means a required option was not supplied.
	MissingRequiredParameter Kind = "MissingRequiredParameter"
	// InvalidPath means a supplied file path does not exist.
	InvalidPath Kind = "InvalidPath"
	// UnknownOption means an unrecognized flag or positional argument was given.
	UnknownOption Kind = "UnknownOption"
	// InvalidValue means an option was supplied with a malformed value.
	InvalidValue Kind = "InvalidValue"
)

// ValidationError is returned for any option problem. It is always fatal
// before any side effect and the command layer prints usage alongside it.
type ValidationError struct {
	Kind    Kind
	Fields  []string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Fields, ", "))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// KindOf returns the Kind of a wrapped *ValidationError, or "".
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

func missing(fields ...string) *ValidationError {
	return &ValidationError{Kind: MissingRequiredParameter, Fields: fields, Message: "required option not supplied"}
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: InvalidValue, Fields: []string{field}, Message: fmt.Sprintf(format, args...)}
}

// FlagError maps a flag parsing error (from pflag or cobra) to a
// *ValidationError. Unknown flags become UnknownOption, anything else
// (e.g. a non-boolean value for a boolean flag) is InvalidValue.
func FlagError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		return &ValidationError{Kind: UnknownOption, Message: msg}
	}
	return &ValidationError{Kind: InvalidValue, Message: msg}
}

// PositionalArgs rejects stray positional arguments as UnknownOption.
func PositionalArgs(args []string) error {
	if len(args) == 0 {
		return nil
	}
	return &ValidationError{Kind: UnknownOption, Fields: args, Message: "unexpected argument"}
}
