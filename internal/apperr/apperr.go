// Package apperr holds the typed errors raised by the interaction services.
// Transports (REST, live channel) map a Kind to their own signal.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindSelfReference
	KindConflict
	KindNotFound
	KindForbidden
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSelfReference:
		return "self_reference"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindAuth:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a classified failure. Msg is safe to show to callers; Err is not.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a missing or malformed field.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// SelfReference reports an edge whose two ends are the same entity.
func SelfReference(msg string) error {
	return &Error{Kind: KindSelfReference, Msg: msg}
}

// AlreadyActive reports a toggle that lost a race against an identical request.
func AlreadyActive(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// NotFound reports an unknown id.
func NotFound(what string) error {
	return &Error{Kind: KindNotFound, Msg: what + " not found"}
}

// Forbidden reports a requester that does not own the resource.
func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// Auth reports a missing, malformed, expired or badly signed credential.
func Auth(msg string, err error) error {
	return &Error{Kind: KindAuth, Msg: msg, Err: err}
}

// Internal wraps an unexpected failure. The wrapped error is never shown to callers.
func Internal(err error) error {
	return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
}

// KindOf returns the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Message returns the caller-safe text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	return "internal error"
}
