package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the API layer. The kind decides the
// machine-readable code exposed in the GraphQL error extensions.
type Kind int

const (
	KindInvalidInput Kind = iota + 1 // malformed or constraint-violating input
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindDomain // business-rule violation
	KindInternal
)

// Code returns the extensions code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindInvalidInput:
		return "BAD_USER_INPUT"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindDomain:
		return "DOMAIN_ERROR"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// Error is a classified application error. Message is safe to show to the
// caller; Err carries the underlying cause, if any.
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

func (e *Error) Unwrap() error { return e.Err }

// Extensions satisfies gqlerrors.ExtendedError so the code travels with the
// formatted GraphQL error.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Kind.Code()}
}

func InvalidInput(msg string) *Error    { return &Error{Kind: KindInvalidInput, Message: msg} }
func Unauthenticated(msg string) *Error { return &Error{Kind: KindUnauthenticated, Message: msg} }
func Forbidden(msg string) *Error       { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error        { return &Error{Kind: KindNotFound, Message: msg} }
func Domain(msg string) *Error          { return &Error{Kind: KindDomain, Message: msg} }

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
