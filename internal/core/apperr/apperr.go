// Package apperr defines the error taxonomy shared by every feature.
//
// Errors carry a Kind (what the caller should do about it) and a Code (a stable,
// machine-readable identifier). Sentinels are declared with New and compared with
// errors.Is, which matches on Code so that copies made by WithField or WithDetails
// still match their sentinel.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the caller.
type Kind string

const (
	// KindValidation means a field is missing or malformed; fix the input and retry.
	KindValidation Kind = "validation"
	// KindNotFound means a referenced id does not resolve.
	KindNotFound Kind = "not_found"
	// KindConflict means a uniqueness or concurrent-modification violation.
	KindConflict Kind = "conflict"
	// KindPermission means the actor is not allowed to perform the operation.
	KindPermission Kind = "permission"
	// KindState means the record is in a state that forbids the operation.
	KindState Kind = "state"
	// KindUnauthenticated means no valid actor was supplied.
	KindUnauthenticated Kind = "unauthenticated"
	// KindInternal is anything unexpected.
	KindInternal Kind = "internal"
)

// Error is the structured error returned across package boundaries.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Code is the machine-readable identifier (e.g. "parcel_terminal").
	Code string
	// Message is the human-readable description.
	Message string
	// Field names the offending input field, if any.
	Field string
	// Details carries extra structured context (e.g. dependent record counts).
	Details map[string]any
	// Err is the underlying cause, if any.
	Err error
}

// New creates an error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation creates a validation error bound to a field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Code: "invalid_" + field, Message: message, Field: field}
}

// Internal wraps an unexpected error.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "internal", Message: "internal error", Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithField returns a copy bound to the given field.
func (e *Error) WithField(field string) *Error {
	c := *e
	c.Field = field
	return &c
}

// WithMessage returns a copy with a different human message.
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

// WithDetails returns a copy carrying the given details.
func (e *Error) WithDetails(details map[string]any) *Error {
	c := *e
	c.Details = details
	return &c
}

// Wrap returns a copy with err as the underlying cause.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindState:
		return http.StatusConflict
	case KindPermission:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
