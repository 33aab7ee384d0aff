// Package memory persists per-conversation digests so follow-up queries
// can carry prior context into planning.
package memory

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultHistoryLimit is how many digests a conversation retains.
	DefaultHistoryLimit = 10
	// DefaultMaxConversations bounds the in-memory store.
	DefaultMaxConversations = 256
)

// Digest is the durable summary of one completed turn. Raw transcripts
// are never stored.
type Digest struct {
	ConversationID string    `json:"conversation_id"`
	Query          string    `json:"query"`
	Response       string    `json:"response"`
	Confidence     float64   `json:"confidence"`
	Subtasks       []string  `json:"subtasks,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// PromptLine renders the digest as one line of planning context.
func (d Digest) PromptLine() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Q: %s | A: %s", d.Query, d.Response)
	if d.Confidence > 0 {
		fmt.Fprintf(&b, " (confidence %.2f)", d.Confidence)
	}
	return b.String()
}

// Store keeps bounded digest histories keyed by conversation id.
// Histories are append-only from the caller's perspective; stores trim
// old entries on append. Writes for one conversation come from a single
// writer, but stores must still be safe for concurrent use across
// conversations.
type Store interface {
	// Append adds a digest to its conversation's history.
	Append(ctx context.Context, d Digest) error
	// History returns a conversation's retained digests, oldest first.
	// Unknown conversations yield an empty history, not an error.
	History(ctx context.Context, conversationID string) ([]Digest, error)
	// Close releases any underlying resources.
	Close() error
}

// PromptLines renders digests for inclusion in a planning prompt.
func PromptLines(digests []Digest) []string {
	lines := make([]string, 0, len(digests))
	for _, d := range digests {
		lines = append(lines, d.PromptLine())
	}
	return lines
}
