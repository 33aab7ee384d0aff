package models

import (
	"errors"
	"fmt"
)

// ErrorCode classifies orchestration failures for routing and reporting.
type ErrorCode string

const (
	// ErrCodeValidation marks malformed tool arguments or catalog entries.
	// Local and always recoverable by the caller.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeToolExecution marks an external tool capability failure.
	// Recoverable per subtask; surfaces as a failed result.
	ErrCodeToolExecution ErrorCode = "tool_execution"
	// ErrCodeUnroutable marks a subtask no registered worker matches.
	ErrCodeUnroutable ErrorCode = "unroutable_subtask"
	// ErrCodeBackendUnavailable marks a capability provider that cannot
	// be reached (transport, auth, or upstream failure).
	ErrCodeBackendUnavailable ErrorCode = "backend_unavailable"
	// ErrCodeBackendTimeout marks a capability provider call that hit
	// its deadline.
	ErrCodeBackendTimeout ErrorCode = "backend_timeout"
	// ErrCodeDuplicateWorker marks a registration name collision.
	ErrCodeDuplicateWorker ErrorCode = "duplicate_worker"
	// ErrCodeNotFound marks a lookup for an unknown worker or tool.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodePlanInvalid marks planner output that failed validation.
	ErrCodePlanInvalid ErrorCode = "plan_invalid"
)

// Error is the typed failure value used across component boundaries.
// Components below the coordinator never panic or throw; they return
// an *Error (or a wrapped one) instead.
type Error struct {
	// Code classifies the failure.
	Code ErrorCode `json:"code"`
	// Message is the human-readable detail.
	Message string `json:"message"`
	// Retryable indicates whether retrying the same call may succeed.
	Retryable bool `json:"retryable"`
	// Cause is the underlying error, if any.
	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports code equality so errors.Is can match taxonomy values.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewError creates a typed error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a typed error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches an underlying error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error retryable or not and returns the receiver.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// CodeOf extracts the taxonomy code from err, or empty if err is not typed.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode returns true if err carries the given taxonomy code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsBackendFailure returns true for provider unavailability or timeout,
// the failure class that can drive the orchestrator into its failed state.
func IsBackendFailure(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeBackendUnavailable || code == ErrCodeBackendTimeout
}
