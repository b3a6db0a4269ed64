// Package apperrors defines the error taxonomy shared by the service and
// transport layers. Services return *Error values; handlers map them to
// status codes without inspecting storage-level causes.
package apperrors

import (
	"errors"
)

// Kinds of application errors. An *Error matches its kind with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

// Error is an application error with a client-safe message.
type Error struct {
	// Kind is one of the package-level sentinels.
	Kind error
	// Message is safe to return to clients.
	Message string
	// Err is the underlying cause, if any. It is never shown to clients.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns an ErrValidation error.
func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

// Unauthorized returns an ErrUnauthorized error.
func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Message: msg}
}

// NotFound returns an ErrNotFound error.
func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Conflict returns an ErrConflict error.
func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// Internal returns an ErrInternal error wrapping cause.
func Internal(msg string, cause error) error {
	return &Error{Kind: ErrInternal, Message: msg, Err: cause}
}

// Message returns the client-safe message of err. Errors outside the
// taxonomy yield a generic message so their details do not leak.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}
