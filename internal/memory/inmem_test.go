package memory

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func digest(conversation, query string) Digest {
	return Digest{ConversationID: conversation, Query: query, Response: "answer to " + query, Confidence: 0.8}
}

func TestInMemoryRoundtrip(t *testing.T) {
	s := NewInMemoryStore(10, 10)
	ctx := context.Background()

	if err := s.Append(ctx, digest("conv-1", "first")); err != nil {
		t.Fatalf("Append error = %v", err)
	}
	if err := s.Append(ctx, digest("conv-1", "second")); err != nil {
		t.Fatalf("Append error = %v", err)
	}

	history, err := s.History(ctx, "conv-1")
	if err != nil {
		t.Fatalf("History error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("History returned %d digests, want 2", len(history))
	}
	if history[0].Query != "first" || history[1].Query != "second" {
		t.Errorf("History order = [%s %s], want oldest first", history[0].Query, history[1].Query)
	}
}

func TestInMemoryHistoryBound(t *testing.T) {
	s := NewInMemoryStore(10, 10)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if err := s.Append(ctx, digest("conv-1", fmt.Sprintf("q%d", i))); err != nil {
			t.Fatalf("Append error = %v", err)
		}
	}

	history, err := s.History(ctx, "conv-1")
	if err != nil {
		t.Fatalf("History error = %v", err)
	}
	if len(history) != 10 {
		t.Fatalf("History returned %d digests, want the last 10", len(history))
	}
	if history[0].Query != "q2" {
		t.Errorf("oldest retained = %q, want q2 (q0 and q1 trimmed)", history[0].Query)
	}
	if history[9].Query != "q11" {
		t.Errorf("newest retained = %q, want q11", history[9].Query)
	}
}

func TestInMemoryConversationEviction(t *testing.T) {
	s := NewInMemoryStore(10, 2)
	ctx := context.Background()

	for _, conv := range []string{"a", "b", "c"} {
		if err := s.Append(ctx, digest(conv, "q")); err != nil {
			t.Fatalf("Append error = %v", err)
		}
	}

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want cap 2", s.Len())
	}
	if history, _ := s.History(ctx, "a"); len(history) != 0 {
		t.Errorf("conversation a should be evicted, got %d digests", len(history))
	}
	if history, _ := s.History(ctx, "c"); len(history) != 1 {
		t.Errorf("conversation c should be retained, got %d digests", len(history))
	}
}

func TestInMemoryEvictionFollowsRecency(t *testing.T) {
	s := NewInMemoryStore(10, 2)
	ctx := context.Background()

	if err := s.Append(ctx, digest("a", "q")); err != nil {
		t.Fatalf("Append error = %v", err)
	}
	if err := s.Append(ctx, digest("b", "q")); err != nil {
		t.Fatalf("Append error = %v", err)
	}
	// Touch a so b becomes the least recently used.
	if _, err := s.History(ctx, "a"); err != nil {
		t.Fatalf("History error = %v", err)
	}
	if err := s.Append(ctx, digest("c", "q")); err != nil {
		t.Fatalf("Append error = %v", err)
	}

	if history, _ := s.History(ctx, "b"); len(history) != 0 {
		t.Error("b should be evicted as least recently used")
	}
	if history, _ := s.History(ctx, "a"); len(history) != 1 {
		t.Error("a should survive after being touched")
	}
}

func TestInMemoryUnknownConversation(t *testing.T) {
	s := NewInMemoryStore(0, 0)
	history, err := s.History(context.Background(), "missing")
	if err != nil {
		t.Fatalf("History error = %v", err)
	}
	if len(history) != 0 {
		t.Errorf("History(missing) = %d digests, want 0", len(history))
	}
}

func TestPromptLine(t *testing.T) {
	d := Digest{Query: "what is 2+2", Response: "4", Confidence: 0.9}
	line := d.PromptLine()
	for _, want := range []string{"what is 2+2", "4", "0.90"} {
		if !strings.Contains(line, want) {
			t.Errorf("PromptLine() = %q, missing %q", line, want)
		}
	}

	bare := Digest{Query: "q", Response: "a"}
	if strings.Contains(bare.PromptLine(), "confidence") {
		t.Errorf("PromptLine() = %q, should omit zero confidence", bare.PromptLine())
	}
}
