// Package apperr defines the error taxonomy shared by the policy engine, the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Code classifies a failure so callers can render distinct messages.
type Code string

const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeForbiddenRole      Code = "FORBIDDEN_ROLE"
	CodeForbiddenOwnership Code = "FORBIDDEN_OWNERSHIP"
	CodeForbiddenState     Code = "FORBIDDEN_STATE"
	CodeEmptyUpdate        Code = "EMPTY_UPDATE"
	CodeNoOpState          Code = "NO_OP_STATE"
	CodeConflict           Code = "CONFLICT"
	CodeDependencyFailure  Code = "DEPENDENCY_FAILURE"
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeInternal           Code = "INTERNAL"
)

// Error carries a taxonomy code, a human readable message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so errors.Is(err, apperr.ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrForbiddenRole      = &Error{Code: CodeForbiddenRole, Message: "role not permitted"}
	ErrForbiddenOwnership = &Error{Code: CodeForbiddenOwnership, Message: "resource not owned"}
	ErrForbiddenState     = &Error{Code: CodeForbiddenState, Message: "not allowed in current state"}
	ErrEmptyUpdate        = &Error{Code: CodeEmptyUpdate, Message: "at least one field must be provided for update"}
	ErrNoOpState          = &Error{Code: CodeNoOpState, Message: "status unchanged"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "already exists"}
	ErrDependencyFailure  = &Error{Code: CodeDependencyFailure, Message: "dependency failed"}
	ErrInvalidInput       = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrUnauthenticated    = &Error{Code: CodeUnauthenticated, Message: "unauthenticated"}
)

// New returns an *Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap returns an *Error with the given code and message wrapping cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

func NotFound(message string) *Error           { return New(CodeNotFound, message) }
func ForbiddenRole(message string) *Error      { return New(CodeForbiddenRole, message) }
func ForbiddenOwnership(message string) *Error { return New(CodeForbiddenOwnership, message) }
func ForbiddenState(message string) *Error     { return New(CodeForbiddenState, message) }
func Conflict(message string) *Error           { return New(CodeConflict, message) }
func InvalidInput(message string) *Error       { return New(CodeInvalidInput, message) }

// CodeOf returns the taxonomy code of err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the message of the outermost *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// Dependency reports a storage or transport failure as DEPENDENCY_FAILURE. Errors that
// already carry a code, such as a late CONFLICT from a repository, pass through unchanged.
func Dependency(message string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Wrap(CodeDependencyFailure, message, err)
}
