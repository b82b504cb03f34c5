package core

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation was rejected.
type Kind int

const (
	// KindUnknown is reported for errors that did not originate in this module.
	KindUnknown Kind = iota
	// KindNotFound means a referenced identifier did not resolve.
	KindNotFound
	// KindUnauthorized means the actor's role or relationship to the target
	// does not satisfy the operation.
	KindUnauthorized
	// KindCapacityExceeded means a bounded collection is full.
	KindCapacityExceeded
	// KindDuplicate means a uniqueness or idempotency rule would be broken.
	KindDuplicate
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindCapacityExceeded:
		return "CAPACITY_EXCEEDED"
	case KindDuplicate:
		return "DUPLICATE"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrNotFound is the sentinel for KindNotFound.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is the sentinel for KindUnauthorized.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrCapacityExceeded is the sentinel for KindCapacityExceeded.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrDuplicate is the sentinel for KindDuplicate.
	ErrDuplicate = errors.New("duplicate")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindUnauthorized:
		return ErrUnauthorized
	case KindCapacityExceeded:
		return ErrCapacityExceeded
	case KindDuplicate:
		return ErrDuplicate
	default:
		return nil
	}
}

// Error is the structured error returned by registry and action operations.
// It unwraps to the sentinel of its Kind so errors.Is(err, ErrNotFound)
// works across wrapping.
type Error struct {
	Op      string // Operation that rejected the call, e.g. "enroll"
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}

	return e.Op + ": " + e.Message
}

// Unwrap returns the sentinel error for the kind.
func (e *Error) Unwrap() error { return e.Kind.sentinel() }

// NewError creates an error of the given kind with a formatted message.
func NewError(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err. Bare sentinels are recognised too.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	for _, k := range []Kind{KindNotFound, KindUnauthorized, KindCapacityExceeded, KindDuplicate} {
		if errors.Is(err, k.sentinel()) {
			return k
		}
	}

	return KindUnknown
}

// Wrap converts a bare sentinel (as returned by Bounded) into an *Error for op.
func Wrap(op string, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return NewError(op, KindOf(err), format, args...)
}
