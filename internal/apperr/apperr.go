// Package apperr is the domain error taxonomy shared by services and the HTTP
// boundary. Messages are client-safe; causes are kept for logging only.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified domain error.
type Error struct {
	kind   Kind
	msg    string
	fields []FieldError
	parent error
}

func newError(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func Validation(msg string, fields ...FieldError) *Error {
	e := newError(KindValidation, msg)
	e.fields = fields
	return e
}

func Auth(msg string) *Error { return newError(KindAuth, msg) }
func Forbidden(msg string) *Error { return newError(KindForbidden, msg) }
func NotFound(msg string) *Error { return newError(KindNotFound, msg) }
func Conflict(msg string) *Error { return newError(KindConflict, msg) }

// Internal hides cause behind a generic message.
func Internal(msg string, cause error) *Error {
	e := newError(KindInternal, msg)
	e.parent = cause
	return e
}

// Error returns the message and, when present, the cause.
func (e *Error) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.parent)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	if cause == nil {
		return e
	}
	cp := *e
	cp.parent = cause
	return &cp
}

func (e *Error) Unwrap() error { return e.parent }

// Is matches another *Error of the same kind and message, so package-level
// sentinels work with errors.Is even after Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind && e.msg == t.msg
}

func (e *Error) Kind() Kind { return e.kind }
func (e *Error) Message() string { return e.msg }
func (e *Error) Fields() []FieldError { return e.fields }

// KindOf reports the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.kind == kind
}
