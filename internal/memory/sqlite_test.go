package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T, historyLimit int) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "memory.db"), historyLimit, 0)
	if err != nil {
		t.Fatalf("OpenSQLite error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundtrip(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()

	d := Digest{
		ConversationID: "conv-1",
		Query:          "what grew fastest",
		Response:       "digital channels",
		Confidence:     0.85,
		Subtasks:       []string{"analysis: ok", "research: ok"},
	}
	if err := s.Append(ctx, d); err != nil {
		t.Fatalf("Append error = %v", err)
	}

	history, err := s.History(ctx, "conv-1")
	if err != nil {
		t.Fatalf("History error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("History returned %d digests, want 1", len(history))
	}
	got := history[0]
	if got.Query != d.Query || got.Response != d.Response {
		t.Errorf("roundtrip = %q/%q, want %q/%q", got.Query, got.Response, d.Query, d.Response)
	}
	if got.Confidence != d.Confidence {
		t.Errorf("Confidence = %v, want %v", got.Confidence, d.Confidence)
	}
	if len(got.Subtasks) != 2 || got.Subtasks[0] != "analysis: ok" {
		t.Errorf("Subtasks = %v, want %v", got.Subtasks, d.Subtasks)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be filled on append")
	}
}

func TestSQLiteTrimsOnAppend(t *testing.T) {
	s := openTestStore(t, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Append(ctx, Digest{ConversationID: "conv-1", Query: fmt.Sprintf("q%d", i), Response: "a"}); err != nil {
			t.Fatalf("Append error = %v", err)
		}
	}

	history, err := s.History(ctx, "conv-1")
	if err != nil {
		t.Fatalf("History error = %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("History returned %d digests, want trimmed 3", len(history))
	}
	if history[0].Query != "q2" || history[2].Query != "q4" {
		t.Errorf("retained [%s..%s], want q2..q4", history[0].Query, history[2].Query)
	}
}

func TestSQLiteConversationsIsolated(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()

	if err := s.Append(ctx, Digest{ConversationID: "a", Query: "qa", Response: "ra"}); err != nil {
		t.Fatalf("Append error = %v", err)
	}
	if err := s.Append(ctx, Digest{ConversationID: "b", Query: "qb", Response: "rb"}); err != nil {
		t.Fatalf("Append error = %v", err)
	}

	history, err := s.History(ctx, "a")
	if err != nil {
		t.Fatalf("History error = %v", err)
	}
	if len(history) != 1 || history[0].Query != "qa" {
		t.Errorf("History(a) = %v, want only qa", history)
	}
}

func TestSQLitePurge(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "memory.db"), 10, 24*time.Hour)
	if err != nil {
		t.Fatalf("OpenSQLite error = %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	stale := Digest{ConversationID: "old", Query: "q", Response: "a", CreatedAt: time.Now().UTC().Add(-48 * time.Hour)}
	fresh := Digest{ConversationID: "new", Query: "q", Response: "a"}
	if err := s.Append(ctx, stale); err != nil {
		t.Fatalf("Append error = %v", err)
	}
	if err := s.Append(ctx, fresh); err != nil {
		t.Fatalf("Append error = %v", err)
	}

	removed, err := s.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Purge removed %d digests, want 1", removed)
	}
	if history, _ := s.History(ctx, "old"); len(history) != 0 {
		t.Error("stale conversation should be purged")
	}
	if history, _ := s.History(ctx, "new"); len(history) != 1 {
		t.Error("fresh conversation should survive the purge")
	}
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	ctx := context.Background()

	s, err := OpenSQLite(path, 10, 0)
	if err != nil {
		t.Fatalf("OpenSQLite error = %v", err)
	}
	if err := s.Append(ctx, Digest{ConversationID: "conv-1", Query: "q", Response: "a"}); err != nil {
		t.Fatalf("Append error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}

	reopened, err := OpenSQLite(path, 10, 0)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	history, err := reopened.History(ctx, "conv-1")
	if err != nil {
		t.Fatalf("History error = %v", err)
	}
	if len(history) != 1 {
		t.Errorf("History after reopen = %d digests, want 1", len(history))
	}
}
