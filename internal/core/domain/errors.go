// Package domain defines the error vocabulary shared by envlayer packages.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a loader error with a structured error code.
// Codes follow the format ENV-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "ENV-DIR-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
// Two DomainErrors match when their codes are equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Directory Errors (DIR)
// ============================================================================

var (
	// ErrDirectoryNotFound indicates the config directory does not exist.
	ErrDirectoryNotFound = NewDomainError("ENV-DIR-4040", "config directory not found")

	// ErrNotDirectory indicates the config path exists but is not a directory.
	ErrNotDirectory = NewDomainError("ENV-DIR-4000", "config path is not a directory")

	// ErrDirectoryUnreadable indicates the directory could not be inspected.
	ErrDirectoryUnreadable = NewDomainError("ENV-DIR-5000", "config directory unreadable")
)

// ============================================================================
// Layer Errors (LAYER)
// ============================================================================

var (
	// ErrParse indicates a layer file could not be parsed as dotenv.
	ErrParse = NewDomainError("ENV-PARSE-4220", "malformed env file")

	// ErrLayerUnreadable indicates a layer file exists but could not be read.
	ErrLayerUnreadable = NewDomainError("ENV-LAYER-5000", "env file unreadable")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidMode indicates an unknown mode name.
	ErrInvalidMode = NewDomainError("ENV-MODE-4000", "invalid mode")

	// ErrInvalidEnvironment indicates an empty or path-like environment name.
	ErrInvalidEnvironment = NewDomainError("ENV-ARG-4000", "invalid environment name")

	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("ENV-ARG-4001", "invalid argument")
)
