// Package errors provides structured error types for scriptflow.
//
// This package defines error codes and types that enable:
//   - Consistent handling of listing, opcode table and graph failures
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - UNKNOWN_* / DUPLICATE_*: Label references that violate the format
//   - AMBIGUOUS_*: Graph shapes a pass cannot interpret
//   - INTERNAL_*: Unexpected internal errors
//
// Codes in the second and third group are fatal for the routine they occur
// in: the input breaks the bytecode format's own invariants and no pass may
// guess around it.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownLabel, "routine %d: label %d", rtn, id)
//	if errors.Is(err, errors.ErrCodeUnknownLabel) {
//	    // Abort the routine
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidListing, origErr, "decode %s", path)
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
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidListing     Code = "INVALID_LISTING"
	ErrCodeInvalidOpcodeTable Code = "INVALID_OPCODE_TABLE"
	ErrCodeInvalidPath        Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeRoutineNotFound Code = "ROUTINE_NOT_FOUND"

	// Format invariant violations (fatal per routine)
	ErrCodeUnknownLabel    Code = "UNKNOWN_LABEL"
	ErrCodeDuplicateLabel  Code = "DUPLICATE_LABEL"
	ErrCodeAmbiguousBranch Code = "AMBIGUOUS_BRANCH"

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

// Fatal reports whether err carries a code that marks a broken format
// invariant, as opposed to bad user input.
func Fatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeUnknownLabel, ErrCodeDuplicateLabel, ErrCodeAmbiguousBranch, ErrCodeInternal:
		return true
	}
	return false
}
