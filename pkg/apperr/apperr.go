package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error so transport layers can map it to a status
// without inspecting messages.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindPermission Kind = "PERMISSION"
	KindConflict   Kind = "CONFLICT"
	KindNotFound   Kind = "NOT_FOUND"
	KindTransient  Kind = "TRANSIENT"
)

// Error is the application error carried across service boundaries.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed or inconsistent input. Not retryable
// without client correction.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Permission reports that the actor lacks the required capability.
func Permission(message string) *Error {
	return &Error{Kind: KindPermission, Message: message}
}

// Conflict reports a violated state precondition (already settled, stale
// version, unpaid obligations). Retryable after re-reading state.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent group, expense or member.
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// Transient reports an I/O or timeout failure. Retryable with backoff.
func Transient(err error, message string) *Error {
	return &Error{Kind: KindTransient, Message: message, Err: err}
}

// KindOf returns the kind of err, or "" when err is not an application error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Translate maps a low-level persistence or collaborator failure into the
// taxonomy. Errors that already carry a kind pass through unchanged;
// deadline and cancellation failures become transient, as does everything
// else coming out of the store.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient(err, "operation timed out")
	}
	if errors.Is(err, context.Canceled) {
		return Transient(err, "operation canceled")
	}
	return Transient(err, "storage unavailable")
}
