// Package errors provides structured error types for mmd2png.
//
// Every failure the tool can report falls into one of three categories:
//   - environment: the renderer is missing or does not answer the probe
//   - input: the requested file or directory cannot be converted
//   - conversion: the renderer ran and exited non-zero
//
// Codes carry the category so the CLI can choose the right message without
// string matching.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeFileNotFound, "not found: %s", path)
//	if errors.Is(err, errors.ErrCodeFileNotFound) {
//	    // Handle missing input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRenderFailed, exitErr, "render %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Environment errors
	ErrCodeRendererNotFound    Code = "RENDERER_NOT_FOUND"
	ErrCodeRendererUnavailable Code = "RENDERER_UNAVAILABLE"
	ErrCodeTimeout             Code = "TIMEOUT"

	// Input errors
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"
	ErrCodeInvalidExtension Code = "INVALID_EXTENSION"
	ErrCodeNotADirectory    Code = "NOT_A_DIRECTORY"
	ErrCodeNoInputFiles     Code = "NO_INPUT_FILES"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	// Conversion errors
	ErrCodeRenderFailed Code = "RENDER_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Category groups codes by who has to act on them.
type Category string

const (
	CategoryEnvironment Category = "environment"
	CategoryInput       Category = "input"
	CategoryConversion  Category = "conversion"
	CategoryInternal    Category = "internal"
)

// Category returns the category the code belongs to.
func (c Code) Category() Category {
	switch c {
	case ErrCodeRendererNotFound, ErrCodeRendererUnavailable, ErrCodeTimeout:
		return CategoryEnvironment
	case ErrCodeFileNotFound, ErrCodeInvalidExtension, ErrCodeNotADirectory,
		ErrCodeNoInputFiles, ErrCodeInvalidConfig:
		return CategoryInput
	case ErrCodeRenderFailed:
		return CategoryConversion
	default:
		return CategoryInternal
	}
}

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
