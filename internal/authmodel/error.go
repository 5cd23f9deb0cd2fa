// Package authmodel holds the small slice of the authentication client's
// data model the harness needs to talk about: results, errors and token
// cache items. It carries no protocol logic.
package authmodel

import (
	"errors"
	"fmt"
)

// ErrorDomain is the domain stamped on errors raised by the client itself.
const ErrorDomain = "ADAuthenticationErrorDomain"

// ErrorCode categorizes authentication errors.
type ErrorCode int

const (
	CodeSucceeded        ErrorCode = 0
	CodeUnexpected       ErrorCode = -1
	CodeInvalidArgument  ErrorCode = 1
	CodeMissingAuthority ErrorCode = 2
	CodeUserCancelled    ErrorCode = 3
	CodeCacheMiss        ErrorCode = 4
)

// String returns the symbolic code name.
func (c ErrorCode) String() string {
	switch c {
	case CodeSucceeded:
		return "SUCCEEDED"
	case CodeUnexpected:
		return "UNEXPECTED"
	case CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case CodeMissingAuthority:
		return "MISSING_AUTHORITY"
	case CodeUserCancelled:
		return "USER_CANCELLED"
	case CodeCacheMiss:
		return "CACHE_MISS"
	default:
		return fmt.Sprintf("ERROR_%d", int(c))
	}
}

// Error is the authentication error value.
type Error struct {
	Domain       string
	Code         ErrorCode
	ProtocolCode string // server-side error code, if any
	Details      string // human-readable description
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ProtocolCode != "" {
		return fmt.Sprintf("%s (%s, protocol=%s): %s", e.Code, e.Domain, e.ProtocolCode, e.Details)
	}
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Domain, e.Details)
}

// Description returns the human-readable description.
func (e *Error) Description() string {
	return e.Details
}

// NewError creates an error in the client domain.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Domain:  ErrorDomain,
		Code:    code,
		Details: fmt.Sprintf(format, args...),
	}
}

// InvalidArgumentError reports a bad argument by name.
// The name always appears in the description.
func InvalidArgumentError(argument string, reason string) *Error {
	if reason == "" {
		return NewError(CodeInvalidArgument, "The argument '%s' is invalid.", argument)
	}
	return NewError(CodeInvalidArgument, "The argument '%s' is invalid. %s", argument, reason)
}

// CodeOf returns the code of err if it is (or wraps) an *Error.
func CodeOf(err error) (ErrorCode, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code, true
	}
	return 0, false
}
