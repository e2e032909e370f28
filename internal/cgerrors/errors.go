// Package cgerrors defines the error kinds codegraph's core exposes to
// callers, per the error handling design: parse and resolve failures
// are recovered locally and surfaced as diagnostics, store errors
// propagate, and input-validation errors return without side effects.
package cgerrors

import (
	"errors"
	"fmt"
)

// Kind is one of the error kinds from the error handling design.
type Kind string

const (
	NotFound      Kind = "not_found"
	InvalidInput  Kind = "invalid_input"
	ParseFailure  Kind = "parse_failure"
	Unresolved    Kind = "unresolved"
	StoreError    Kind = "store_error"
	Cancelled     Kind = "cancelled"
	Unsupported   Kind = "unsupported"
)

// Error is a typed error carrying a Kind plus operation context so
// callers can branch on classification without string matching.
type Error struct {
	Kind      Kind
	Op        string
	Target    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Op, e.Kind, e.Target, e.Underlying)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Underlying)
}

func (e *Error) Unwrap() error { return e.Underlying }

// New builds an Error. err may be nil, e.g. when a caller wants a pure
// classification error such as InvalidInput.
func New(kind Kind, op, target string, err error) *Error {
	return &Error{Kind: kind, Op: op, Target: target, Underlying: err}
}

// Is reports whether err carries the given kind, unwrapping through
// any wrapper chain.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func NotFoundf(op, target string, format string, args ...any) *Error {
	return New(NotFound, op, target, fmt.Errorf(format, args...))
}

func InvalidInputf(op string, format string, args ...any) *Error {
	return New(InvalidInput, op, "", fmt.Errorf(format, args...))
}

func StoreErrorf(op string, err error) *Error {
	return New(StoreError, op, "", err)
}

func Cancelledf(op string) *Error {
	return New(Cancelled, op, "", errCancelled)
}

var errCancelled = errors.New("operation cancelled")
