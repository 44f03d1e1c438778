// Package errors provides structured error types for qmetal.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library and CLI
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or precondition failures
//   - MISSING_* / NOT_FOUND: Lookups of absent resources
//   - BUILD_FAILED: A component's make step returned an error
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingPin, "pin %q not found on %s", name, comp)
//	if errors.Is(err, errors.ErrCodeMissingPin) {
//	    // Handle missing pin
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeBuildFailed, makeErr, "make %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Precondition failures
	ErrCodeInvalidDesign  Code = "INVALID_DESIGN"
	ErrCodeInvalidName    Code = "INVALID_NAME"
	ErrCodeInvalidPin     Code = "INVALID_PIN"
	ErrCodeInvalidElement Code = "INVALID_ELEMENT"
	ErrCodeInvalidType    Code = "INVALID_TYPE"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeDuplicateName  Code = "DUPLICATE_NAME"
	ErrCodeParse          Code = "PARSE_ERROR"

	// Lookup failures
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeMissingPin  Code = "MISSING_PIN"
	ErrCodeUnknownType Code = "UNKNOWN_TYPE"

	// Lifecycle failures
	ErrCodeBuildFailed     Code = "BUILD_FAILED"
	ErrCodeDependencyCycle Code = "DEPENDENCY_CYCLE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// It walks the whole chain, so a BUILD_FAILED wrapping a MISSING_PIN
// matches both codes.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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
