// Package errors provides structured error types for the Towline application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across planning and pipeline execution
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input/configuration validation failures
//   - UNSUPPORTED_*: Operations the version algebra refuses to perform
//   - NOT_FOUND_*: Resource not found
//   - NETWORK_*: Network-related errors
//   - INTERNAL_*: Unexpected internal errors
//
// Errors carrying these codes are the fatal/configuration tier: they abort a
// run immediately regardless of dry-run, because the plan itself cannot be
// trusted. Process failures inside a release (commit failed, hook exited
// non-zero) are not represented here; those map to pipeline outcome codes.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidVersion, "invalid version: %s", raw)
//	if errors.Is(err, errors.ErrCodeInvalidVersion) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeManifest, origErr, "failed to read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input/configuration validation errors
	ErrCodeInvalidVersion    Code = "INVALID_VERSION"
	ErrCodeInvalidPrerelease Code = "INVALID_PRERELEASE"
	ErrCodeInvalidLevel      Code = "INVALID_RELEASE_LEVEL"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeInvalidReplace    Code = "INVALID_REPLACEMENT"
	ErrCodeInvalidWorkspace  Code = "INVALID_WORKSPACE"

	// Operations the version algebra refuses to perform
	ErrCodeUnsupportedRequirement Code = "UNSUPPORTED_REQUIREMENT"
	ErrCodeUnsupportedPrerelease  Code = "UNSUPPORTED_PRERELEASE_SCHEME"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"

	// Manifest and lock file I/O
	ErrCodeManifest Code = "MANIFEST_ERROR"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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
