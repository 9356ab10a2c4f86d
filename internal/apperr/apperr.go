// Package apperr defines the error taxonomy surfaced to API clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindUnavailable     Kind = "unavailable"
	KindRateLimited     Kind = "rate_limited"
	KindDependency      Kind = "dependency"
)

// Error is an application error with a stable machine-readable code and a human message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Status  int
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code so that copies made by WithDetails or Wrap still
// compare equal to the sentinel they came from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New builds an error whose HTTP status is derived from kind.
func New(kind Kind, code, message string) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Status:  statusFor(kind),
	}
}

// WithStatus returns a copy of e answering with status instead of the kind default.
func (e *Error) WithStatus(status int) *Error {
	cp := *e
	cp.Status = status
	return &cp
}

// WithDetails returns a copy of e carrying per-field details.
func (e *Error) WithDetails(details map[string]string) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// Wrap returns a copy of e with err attached as the cause.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// Validation is a shorthand for a VALIDATION_FAILED error with a custom message.
func Validation(message string) *Error {
	return New(KindValidation, "VALIDATION_FAILED", message)
}

// Internal wraps an unexpected failure of a collaborator.
func Internal(err error) *Error {
	return &Error{
		Kind:    KindDependency,
		Code:    "INTERNAL",
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// From extracts an *Error from err, converting anything else into an internal error.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

func statusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
