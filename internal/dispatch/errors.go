package dispatch

import (
	"errors"
)

// Code classifies dispatch failures for callers.
type Code string

const (
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeUnauthenticated   Code = "UNAUTHENTICATED"
	CodePermissionDenied  Code = "PERMISSION_DENIED"
	CodeResourceExhausted Code = "RESOURCE_EXHAUSTED"
	CodeInternal          Code = "INTERNAL"
)

// Error is a classified dispatch failure. Message is safe to show callers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidArgument reports a request rejected before any rendering or I/O.
func InvalidArgument(msg string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: msg}
}

// Internal reports a failure after validation passed. The message should
// carry the underlying detail.
func Internal(msg string, err error) *Error {
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}

// CodeOf returns the classification of err. Unclassified errors are Internal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
