package common

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindUnauthenticated   ErrorKind = "unauthenticated"
	KindPermissionDenied  ErrorKind = "permission_denied"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindInvalidArgument   ErrorKind = "invalid_argument"
	KindNotFound          ErrorKind = "not_found"
	KindTransient         ErrorKind = "transient"
)

// Error is the engine's structured failure. Message is safe to show to a
// user; Code preserves the remote store's diagnostic code when one exists.
type Error struct {
	Kind    ErrorKind
	Message string
	Code    string
	cause   error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WrapError(kind ErrorKind, code string, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Code: code, cause: cause}
}

// KindOf classifies any error into the engine taxonomy. Unknown errors
// count as transient so callers retry rather than misreport a denial.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}
