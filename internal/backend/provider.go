// Package backend provides capability-provider integration for hive
// components. Planning, worker reasoning, and synthesis all go through
// the Provider interface; the Anthropic implementation is the default.
package backend

import "context"

// Default generation settings, matching the agent catalog's expectations.
const (
	// DefaultMaxTokens bounds completion length when a request does not set one.
	DefaultMaxTokens = 2000
	// DefaultTemperature is used when a request does not set one.
	DefaultTemperature = 0.7
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks input from the orchestration side.
	RoleUser Role = "user"
	// RoleAssistant marks prior provider output carried back as context.
	RoleAssistant Role = "assistant"
)

// Message is one turn of provider conversation context.
type Message struct {
	// Role is who authored the message.
	Role Role
	// Content is the message text.
	Content string
}

// PromptRequest carries one completion request to a capability provider.
type PromptRequest struct {
	// System is the role prompt (backstory, task, advertised tools).
	System string
	// Messages is the ordered conversation context, oldest first.
	Messages []Message
	// MaxTokens bounds the completion length. Zero means DefaultMaxTokens.
	MaxTokens int
	// Temperature controls sampling. Zero means DefaultTemperature.
	Temperature float64
}

// Provider is the capability-provider contract consumed by the planner,
// workers, and the synthesizer. Implementations must return typed
// backend errors (models.ErrCodeBackendUnavailable or
// models.ErrCodeBackendTimeout) so callers can classify failures.
type Provider interface {
	// Complete sends the request and returns the provider's text reply.
	Complete(ctx context.Context, req PromptRequest) (string, error)
	// Name identifies the provider for logging and profiles.
	Name() string
}
