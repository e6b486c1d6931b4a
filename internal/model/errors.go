package model

import (
	"errors"
	"fmt"
)

// ErrorKind is a closed enumeration of the ways a core operation can fail.
// Every error the core returns to the HTTP layer carries exactly one Kind,
// which the HTTP layer maps to a status code.
type ErrorKind int

const (
	// KindNotFound means an id or name was not found. Maps to 404.
	KindNotFound ErrorKind = iota
	// KindConflict means a duplicate name was supplied on create/update. Maps to 409.
	KindConflict
	// KindValidation means the request body or a Job field failed validation. Maps to 400.
	KindValidation
	// KindStorage means an I/O failure occurred in the catalog or log stores. Maps to 500.
	KindStorage
	// KindSubprocessSpawn means a child process could not be spawned. Never
	// bubbled to an API caller directly — surfaced as a Failed event and a
	// Failed run record instead.
	KindSubprocessSpawn
	// KindTimeout means a run exceeded its timeout. Internal only; surfaces
	// as a Failed event with error "execution timed out".
	KindTimeout
	// KindInternal is any other unexpected failure. Maps to 500.
	KindInternal
)

// String returns the wire form used in HTTP error bodies and log fields.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindStorage:
		return "storage"
	case KindSubprocessSpawn:
		return "subprocess_spawn"
	case KindTimeout:
		return "timeout"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per Kind, so callers can test with errors.Is without
// inspecting an *Error's fields directly.
var (
	ErrNotFound        = errors.New("model: not found")
	ErrConflict        = errors.New("model: conflict")
	ErrValidation      = errors.New("model: validation")
	ErrStorage         = errors.New("model: storage")
	ErrSubprocessSpawn = errors.New("model: subprocess spawn")
	ErrTimeout         = errors.New("model: timeout")
	ErrInternal        = errors.New("model: internal")
)

func sentinelFor(k ErrorKind) error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindValidation:
		return ErrValidation
	case KindStorage:
		return ErrStorage
	case KindSubprocessSpawn:
		return ErrSubprocessSpawn
	case KindTimeout:
		return ErrTimeout
	default:
		return ErrInternal
	}
}

// Error is the concrete error type returned by core operations. It carries a
// Kind for status-code mapping, a human message, and an optional wrapped
// cause (e.g. the underlying os.PathError from a failed write).
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel error for e.Kind, so
// errors.Is(err, model.ErrNotFound) works regardless of message or cause.
func (e *Error) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

// NewNotFound builds a KindNotFound error.
func NewNotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewConflict builds a KindConflict error.
func NewConflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NewValidation builds a KindValidation error.
func NewValidation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewStorage wraps cause as a KindStorage error.
func NewStorage(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NewSubprocessSpawn wraps cause as a KindSubprocessSpawn error.
func NewSubprocessSpawn(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindSubprocessSpawn, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NewTimeout builds a KindTimeout error.
func NewTimeout(format string, args ...any) *Error {
	return &Error{Kind: KindTimeout, Message: fmt.Sprintf(format, args...)}
}

// NewInternal wraps cause as a KindInternal error.
func NewInternal(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the ErrorKind from err, defaulting to KindInternal if err
// is not (or does not wrap) an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
