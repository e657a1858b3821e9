// Package fpcferrors defines the error kinds used across the property
// store: programmer errors that are fatal and panic, analysis errors that
// are captured per worker and surfaced after a phase completes,
// configuration errors raised at startup, and clean cancellation.
package fpcferrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error the way § 7 of the specification does.
type Kind int

const (
	// Fatal indicates a programmer error: a non-monotone update, a mutation
	// of a final state, a duplicate lazy producer, or similar invariant
	// violation. Callers should not try to recover from a Fatal error;
	// the store panics with one rather than returning it in the common
	// case, but it is still a typed value so panic recovery sites (the
	// worker pool) can inspect it.
	Fatal Kind = iota
	// Analysis indicates a computation function panicked. The phase is
	// marked failed but other analyses still run to completion.
	Analysis
	// Configuration indicates a problem in the scheduler manifest or
	// suppression matrix discovered before any computation runs.
	Configuration
	// Cancellation indicates the phase was cancelled or timed out. This is
	// the one clean, non-defect outcome among the four kinds.
	Cancellation
)

func (k Kind) String() string {
	switch k {
	case Fatal:
		return "fatal"
	case Analysis:
		return "analysis"
	case Configuration:
		return "configuration"
	case Cancellation:
		return "cancellation"
	default:
		return "unknown"
	}
}

// Error is the error type returned (or, for Fatal, panicked with) by this
// module. It carries a Kind so callers can tell a clean cancellation from
// a programmer bug without string matching.
type Error struct {
	Kind    Kind
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, fpcferrors.Cancellation) style checks via [Of].
func (e *Error) Is(target error) bool {
	var o *Error
	if errors.As(target, &o) {
		return o.Kind == e.Kind
	}
	return false
}

// New creates an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates an *Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrapf creates an *Error of the given kind wrapping err.
func Wrapf(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// Of returns a sentinel *Error of the given kind with no message, suitable
// for use with errors.Is(err, fpcferrors.Of(fpcferrors.Cancellation)).
func Of(kind Kind) *Error { return &Error{Kind: kind} }

// Is reports whether err (or anything it wraps) is a Kind-classified error
// of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
