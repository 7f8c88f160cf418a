// Package apperr defines the error taxonomy shared by every layer.
// Each error carries a Kind, which decides the HTTP status, and a stable Key
// that clients look up in the locale dictionaries.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthenticated
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is an application error with a client-safe key.
// Err holds the underlying cause and is never sent to clients.
type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Key, e.Err)
	}
	return e.Key
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind and Key so wrapped copies of a sentinel still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Key == t.Key
}

func New(kind Kind, key string) *Error {
	return &Error{Kind: kind, Key: key}
}

// Wrap attaches a cause to a sentinel without changing its identity.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Key: sentinel.Key, Err: cause}
}

// Internal wraps an unexpected failure, typically a database error.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Key: "error_internal", Err: cause}
}

// KindOf reports the Kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// KeyOf reports the client key of err, "error_internal" for foreign errors.
func KeyOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Key
	}
	return "error_internal"
}

// Validation errors
var (
	ErrInvalidRequest = New(KindValidation, "error_invalid_request")
	ErrRequiredFields = New(KindValidation, "error_required_fields")
	ErrInvalidEmail   = New(KindValidation, "error_invalid_email")
	ErrInvalidPhone   = New(KindValidation, "error_invalid_phone")
	ErrPasswordPolicy = New(KindValidation, "password_hint")
	ErrInvalidGrade   = New(KindValidation, "error_grade_range")
	ErrInvalidCredits = New(KindValidation, "error_invalid_credits")
	ErrInvalidDate    = New(KindValidation, "error_invalid_date")
)

// Conflict errors
var (
	ErrEmailExists      = New(KindConflict, "error_email_duplicate")
	ErrUsernameTaken    = New(KindConflict, "error_username_taken")
	ErrCourseExists     = New(KindConflict, "error_course_exists")
	ErrEnrollmentExists = New(KindConflict, "error_enroll_exists")
)

// Lookup and access errors
var (
	ErrNotFound           = New(KindNotFound, "404_msg")
	ErrUnauthenticated    = New(KindUnauthenticated, "access_denied")
	ErrInvalidCredentials = New(KindUnauthenticated, "error_invalid_credentials")
	ErrForbidden          = New(KindForbidden, "access_denied")
	ErrNotOwner           = New(KindForbidden, "access_denied_msg")
)
