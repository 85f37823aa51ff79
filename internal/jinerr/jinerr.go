// Package jinerr defines jin's error taxonomy: a small set of typed errors
// the core returns so the command layer can map them to exit codes (spec.md
// §6.5) without the core importing os, and without callers string-matching
// error messages.
package jinerr

import (
	"errors"
	"fmt"
)

// Kind tags one of the error categories from spec.md §7.
type Kind int

const (
	KindRouting Kind = iota
	KindValidation
	KindParse
	KindTransaction
	KindState
	KindNotFound
	KindAlreadyExists
	KindConflict
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindRouting:
		return "routing"
	case KindValidation:
		return "validation"
	case KindParse:
		return "parse"
	case KindTransaction:
		return "transaction"
	case KindState:
		return "state"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a taxonomy-tagged error carrying an optional offending path and a
// recovery hint, both surfaced verbatim by the command layer.
type Error struct {
	Kind    Kind
	Path    string
	Hint    string
	Wrapped error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + ": " + e.Wrapped.Error()
	if e.Path != "" {
		msg = e.Kind.String() + ": " + e.Path + ": " + e.Wrapped.Error()
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Wrapped }

// ExitCode maps a Kind to the process exit code from spec.md §6.5.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindTransaction:
		return 2
	case KindInternal:
		return 3
	default:
		return 1
	}
}

// New builds a tagged error wrapping a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Wrapped: fmt.Errorf(format, args...)}
}

// Wrap tags an existing error with a kind, leaving it unwrapped via errors.Is/As.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Wrapped: err}
}

// WithPath attaches the offending path for a user-facing message.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithHint attaches a recovery-command suggestion (e.g. "run jin repair").
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// Is lets errors.Is(err, jinerr.Routing) match by Kind regardless of message.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return e.Kind == te.Kind
	}
	return false
}

// Sentinel values for errors.Is comparisons against a specific kind, e.g.
// errors.Is(err, jinerr.Routing).
var (
	Routing        = &Error{Kind: KindRouting, Wrapped: errors.New("routing")}
	Validation     = &Error{Kind: KindValidation, Wrapped: errors.New("validation")}
	Parse          = &Error{Kind: KindParse, Wrapped: errors.New("parse")}
	Transaction    = &Error{Kind: KindTransaction, Wrapped: errors.New("transaction")}
	State          = &Error{Kind: KindState, Wrapped: errors.New("state")}
	NotFound       = &Error{Kind: KindNotFound, Wrapped: errors.New("not found")}
	AlreadyExists  = &Error{Kind: KindAlreadyExists, Wrapped: errors.New("already exists")}
	Conflict       = &Error{Kind: KindConflict, Wrapped: errors.New("conflict")}
	Internal       = &Error{Kind: KindInternal, Wrapped: errors.New("internal")}
)

// ExitCode extracts the exit code from any error, defaulting to 1 for
// untagged errors and 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var je *Error
	if errors.As(err, &je) {
		return je.ExitCode()
	}
	return 1
}
