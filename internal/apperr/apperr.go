// Package apperr defines the application error taxonomy shared by all layers.
// Errors carry a machine code, a severity tier used for logging emphasis, a
// user-facing message and optional structured details. The wrapped cause is
// for logs only and must never be sent to clients.
package apperr

import "fmt"

// Code is a machine-readable error classification.
type Code string

const (
	CodeAuthRequired    Code = "AUTH_REQUIRED"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeFileTooLarge    Code = "FILE_TOO_LARGE"
	CodeInvalidFileType Code = "INVALID_FILE_TYPE"
	CodeNetworkError    Code = "NETWORK_ERROR"
	CodeServerError     Code = "SERVER_ERROR"
	CodeStorageError    Code = "STORAGE_ERROR"
	CodeDatabaseError   Code = "DATABASE_ERROR"
	CodeUnknownError    Code = "UNKNOWN_ERROR"
)

// Severity tiers only influence logging emphasis, never behavior.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error is the structured application error.
type Error struct {
	Code     Code
	Severity Severity
	Message  string         // safe to show to the caller
	Details  map[string]any // optional structured diagnostics, safe for clients
	Cause    error          // original error, logged but never serialized
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error with the default medium severity.
func New(code Code, message string) *Error {
	return &Error{Code: code, Severity: SeverityMedium, Message: message}
}

// WithSeverity overrides the severity tier.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// WithDetails attaches structured diagnostic details.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// WithCause attaches the original error for logging.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// Wrap builds an Error around a collaborator failure. The cause is retained
// for logs while message stays generic and non-leaking.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Severity: SeverityHigh, Message: message, Cause: cause}
}
