package models

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	plain := NewError(ErrCodeValidation, "missing required parameter location")
	if got := plain.Error(); !strings.Contains(got, "validation") || !strings.Contains(got, "location") {
		t.Errorf("Error() = %q, want code and message", got)
	}

	cause := errors.New("connection refused")
	wrapped := NewError(ErrCodeBackendUnavailable, "anthropic request failed").WithCause(cause)
	if got := wrapped.Error(); !strings.Contains(got, "connection refused") {
		t.Errorf("Error() = %q, want underlying cause", got)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(ErrCodeToolExecution, "tool crashed").WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestError_Is_MatchesByCode(t *testing.T) {
	err := Errorf(ErrCodeNotFound, "no worker named %q", "Ghost")

	if !errors.Is(err, NewError(ErrCodeNotFound, "")) {
		t.Error("errors.Is should match another error with the same code")
	}
	if errors.Is(err, NewError(ErrCodeValidation, "")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestError_Is_ThroughWrapping(t *testing.T) {
	inner := NewError(ErrCodeBackendTimeout, "deadline exceeded")
	outer := fmt.Errorf("plan query: %w", inner)

	if !errors.Is(outer, NewError(ErrCodeBackendTimeout, "")) {
		t.Error("errors.Is should match through fmt.Errorf wrapping")
	}
	if CodeOf(outer) != ErrCodeBackendTimeout {
		t.Errorf("CodeOf() = %q, want %q", CodeOf(outer), ErrCodeBackendTimeout)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"typed error", NewError(ErrCodeUnroutable, "no match"), ErrCodeUnroutable},
		{"wrapped typed error", fmt.Errorf("assign: %w", NewError(ErrCodeUnroutable, "no match")), ErrCodeUnroutable},
		{"plain error", errors.New("plain"), ErrorCode("")},
		{"nil error", nil, ErrorCode("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsBackendFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"backend unavailable", NewError(ErrCodeBackendUnavailable, "503"), true},
		{"backend timeout", NewError(ErrCodeBackendTimeout, "deadline"), true},
		{"tool execution", NewError(ErrCodeToolExecution, "crash"), false},
		{"plain error", errors.New("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBackendFailure(tt.err); got != tt.want {
				t.Errorf("IsBackendFailure() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_WithRetryable(t *testing.T) {
	err := NewError(ErrCodeBackendUnavailable, "overloaded").WithRetryable(true)
	if !err.Retryable {
		t.Error("WithRetryable(true) should mark the error retryable")
	}
}
