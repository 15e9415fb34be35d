package shared

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so callers can branch without type assertions.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindForbidden  Kind = "FORBIDDEN"
	KindDatabase   Kind = "DATABASE"
)

// Error is the tagged error carried across service boundaries.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches kind sentinels, so errors.Is(err, ErrNotFound) works for any code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == "" {
		return e.Kind == t.Kind
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Kind sentinels for errors.Is.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrDatabase   = &Error{Kind: KindDatabase}
)

// ErrInvalidCredentials indicates login failure.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Validation builds a validation failure.
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// NotFound builds a missing-entity failure.
func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Forbidden builds an authorization failure.
func Forbidden(code, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

// Database wraps a persistence failure. Errors that already carry a kind are
// returned untouched.
func Database(err error, message string) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return err
	}
	return &Error{Kind: KindDatabase, Code: "DATABASE_ERROR", Message: message, Err: err}
}

// KindOf reports the kind of err, or "" for untagged errors.
func KindOf(err error) Kind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return ""
}

// UserSafeMessage returns the message that may be shown to API clients.
func UserSafeMessage(err error) string {
	var tagged *Error
	if !errors.As(err, &tagged) {
		return "internal error"
	}
	return tagged.Message
}

// CodeOf returns the machine readable code for err.
func CodeOf(err error) string {
	var tagged *Error
	if errors.As(err, &tagged) && tagged.Code != "" {
		return tagged.Code
	}
	return "INTERNAL_ERROR"
}
