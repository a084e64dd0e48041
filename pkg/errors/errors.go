// Package errors provides structured error types for depcollect.
//
// Library packages return plain sentinel errors (collect.ErrNotFound,
// artifact.ErrInvalidCoordinate, ...). The CLI and the HTTP server convert
// them into an [*Error] with a machine-readable [Code] so that exit codes,
// JSON error bodies and log fields stay consistent.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Missing artifacts or files
//   - NETWORK_*, TIMEOUT: Transport failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidCoordinate, "bad coordinate: %s", s)
//	if errors.Is(err, errors.ErrCodeInvalidCoordinate) {
//	    // Handle validation error
//	}
//
//	// Attach a code to an error coming from a library package
//	err = errors.Classify(res.Err)
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/cache"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/integrations"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidCoordinate Code = "INVALID_COORDINATE"
	ErrCodeInvalidPOM        Code = "INVALID_POM"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeArtifactNotFound Code = "ARTIFACT_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Collection errors
	ErrCodeResolutionFailed Code = "RESOLUTION_FAILED"
	ErrCodeCanceled         Code = "CANCELED"

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
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// Classify attaches a code to err based on the sentinel errors of the
// library packages. Errors that already carry a code and nil are returned
// unchanged. The original error stays reachable through Unwrap.
func Classify(err error) error {
	if err == nil || GetCode(err) != "" {
		return err
	}
	code := codeOf(err)
	return Wrap(code, err, "%s", summaries[code])
}

var summaries = map[Code]string{
	ErrCodeCanceled:          "collection canceled",
	ErrCodeTimeout:           "deadline exceeded",
	ErrCodeInvalidCoordinate: "invalid coordinate",
	ErrCodeArtifactNotFound:  "artifact not found",
	ErrCodeNetwork:           "repository unreachable",
	ErrCodeResolutionFailed:  "resolution failed",
	ErrCodeInternal:          "internal error",
}

func codeOf(err error) Code {
	switch {
	case errors.Is(err, context.Canceled):
		return ErrCodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	case errors.Is(err, artifact.ErrInvalidCoordinate):
		return ErrCodeInvalidCoordinate
	case errors.Is(err, collect.ErrNotFound), errors.Is(err, integrations.ErrNotFound):
		return ErrCodeArtifactNotFound
	case errors.Is(err, integrations.ErrNetwork), errors.Is(err, cache.ErrNetwork):
		return ErrCodeNetwork
	}
	var re *collect.ResolutionError
	if errors.As(err, &re) {
		return ErrCodeResolutionFailed
	}
	return ErrCodeInternal
}

// HTTPStatus maps a code to the status the server responds with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidCoordinate, ErrCodeInvalidPOM,
		ErrCodeInvalidConfig, ErrCodeInvalidPath, ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case ErrCodeArtifactNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeResolutionFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeNetwork:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeCanceled:
		return 499
	}
	return http.StatusInternalServerError
}

// ExitCode maps a code to a process exit status.
func ExitCode(code Code) int {
	switch code {
	case "":
		return 1
	case ErrCodeInvalidInput, ErrCodeInvalidCoordinate, ErrCodeInvalidPOM,
		ErrCodeInvalidConfig, ErrCodeInvalidPath, ErrCodeInvalidFormat:
		return 2
	case ErrCodeArtifactNotFound, ErrCodeFileNotFound, ErrCodeResolutionFailed:
		return 3
	case ErrCodeNetwork, ErrCodeTimeout:
		return 4
	case ErrCodeCanceled:
		return 130
	}
	return 1
}
