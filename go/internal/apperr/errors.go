// Package apperr defines the failure taxonomy every workflow reports and the
// result envelope returned to callers.
package apperr

import (
	"errors"
	"fmt"
)

// Code classifies a failure for the caller.
type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeStorage         Code = "STORAGE_FAILURE"
)

// Error is a classified failure. Message is safe to show to the caller;
// Cause is kept for logs only.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same code, so callers can write
// errors.Is(err, apperr.ErrConflict).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Code == e.Code
}

// Bare sentinels for errors.Is checks against a code.
var (
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated}
	ErrUnauthorized    = &Error{Code: CodeUnauthorized}
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrConflict        = &Error{Code: CodeConflict}
	ErrValidation      = &Error{Code: CodeValidation}
	ErrStorage         = &Error{Code: CodeStorage}
)

func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func Unauthenticated(msg string) *Error { return New(CodeUnauthenticated, msg) }
func Unauthorized(msg string) *Error    { return New(CodeUnauthorized, msg) }
func NotFound(msg string) *Error        { return New(CodeNotFound, msg) }
func Conflict(msg string) *Error        { return New(CodeConflict, msg) }
func Validation(msg string) *Error      { return New(CodeValidation, msg) }

// Storage wraps an unexpected storage error. The caller may retry.
func Storage(cause error) *Error {
	return &Error{Code: CodeStorage, Message: "storage failure", Cause: cause}
}

// From returns err as an *Error, classifying anything unknown as a storage failure.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Storage(err)
}

// CodeOf returns the code carried by err, or "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	return From(err).Code
}
