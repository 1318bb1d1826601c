// Package dserr defines the typed error taxonomy shared by every
// package in this module.
//
// The original C library reported failures through a thread-local
// errno plus a handful of sentinel integer codes. This module replaces
// that pattern with explicit error values: every fallible call returns
// a Go error wrapping an *Error, and callers recover the Kind with
// errors.As or KindOf.
package dserr

import (
	"errors"
	"fmt"
)

// Kind classifies the reason an operation failed. It is the complete
// taxonomy required by the render core and its foundation services.
type Kind int

const (
	// Unknown is the zero value; it should never be returned by a
	// well-behaved call.
	Unknown Kind = iota

	// InvalidArgument means a parameter was null, zero, or malformed.
	InvalidArgument
	// OutOfMemory means an allocator could not satisfy a request.
	OutOfMemory
	// PermissionDenied means the call came from the wrong thread, the
	// object was in the wrong state (e.g. unlock not held), or a
	// feature is disabled.
	PermissionDenied
	// OutOfRange means an index or offset fell outside valid bounds.
	OutOfRange
	// SizeError means a supplied buffer was too small.
	SizeError
	// NotFound means a requested entry is absent.
	NotFound
	// Format means a parse or shader-link step failed.
	Format
	// Busy means a TryLock call lost a lock race.
	Busy
	// Timeout means a bounded wait expired.
	Timeout
	// AlreadyExists means a duplicate insertion was attempted.
	AlreadyExists
	// NoEntry means a filesystem-like path could not be resolved.
	NoEntry
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case OutOfMemory:
		return "out of memory"
	case PermissionDenied:
		return "permission denied"
	case OutOfRange:
		return "out of range"
	case SizeError:
		return "size error"
	case NotFound:
		return "not found"
	case Format:
		return "format error"
	case Busy:
		return "busy"
	case Timeout:
		return "timeout"
	case AlreadyExists:
		return "already exists"
	case NoEntry:
		return "no entry"
	default:
		return "unknown error"
	}
}

// Error is the concrete error type returned by this module's fallible
// calls. Op names the failing operation (e.g. "alloc.Bump.Alloc") so
// that log lines and test failures can pinpoint the call site without
// parsing the message text.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error wrapped as an error.
func New(op string, kind Kind) error {
	return &Error{Kind: kind, Op: op}
}

// Wrap constructs an *Error that also carries an underlying cause.
func Wrap(op string, kind Kind, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind from err, returning Unknown if err is nil
// or does not wrap a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
