// Package errors provides structured error types for depscope.
//
// Error codes are machine-readable and shared between the CLI and the HTTP
// API so that both surfaces classify failures the same way:
//   - INVALID_*: input validation failures
//   - *_NOT_FOUND: the registry has no such package or version
//   - NETWORK_*, TIMEOUT, MALFORMED_RESPONSE: registry fetch failures
//   - INTERNAL_ERROR: unexpected internal errors
//
// Usage:
//
//	err := errors.New(errors.ErrCodePackageNotFound, "npm package %s", name)
//	if errors.Is(err, errors.ErrCodePackageNotFound) {
//	    // 404 from the registry
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidRange   Code = "INVALID_RANGE"
	ErrCodeInvalidGraph   Code = "INVALID_GRAPH"

	// Resource not found errors
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"
	ErrCodeVersionNotFound Code = "VERSION_NOT_FOUND"
	ErrCodeNodeNotFound    Code = "NODE_NOT_FOUND"

	// Registry fetch errors
	ErrCodeNetwork   Code = "NETWORK_ERROR"
	ErrCodeTimeout   Code = "TIMEOUT"
	ErrCodeMalformed Code = "MALFORMED_RESPONSE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
