package memory

import (
	"container/list"
	"context"
	"sync"
)

// InMemoryStore is a process-local Store with two bounds: each
// conversation keeps at most historyLimit digests, and at most
// maxConversations conversations are retained, evicted least recently
// used.
type InMemoryStore struct {
	mu               sync.Mutex
	historyLimit     int
	maxConversations int
	histories        map[string]*list.Element
	order            *list.List
}

type conversationHistory struct {
	id      string
	digests []Digest
}

// NewInMemoryStore creates a store with the given bounds. Non-positive
// values select the defaults.
func NewInMemoryStore(historyLimit, maxConversations int) *InMemoryStore {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if maxConversations <= 0 {
		maxConversations = DefaultMaxConversations
	}
	return &InMemoryStore{
		historyLimit:     historyLimit,
		maxConversations: maxConversations,
		histories:        make(map[string]*list.Element),
		order:            list.New(),
	}
}

// Append adds the digest and trims the conversation to the history limit.
func (s *InMemoryStore) Append(_ context.Context, d Digest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.histories[d.ConversationID]
	if !ok {
		elem = s.order.PushFront(&conversationHistory{id: d.ConversationID})
		s.histories[d.ConversationID] = elem
		s.evictLocked()
	} else {
		s.order.MoveToFront(elem)
	}

	h := elem.Value.(*conversationHistory)
	h.digests = append(h.digests, d)
	if len(h.digests) > s.historyLimit {
		h.digests = h.digests[len(h.digests)-s.historyLimit:]
	}
	return nil
}

// History returns the retained digests, oldest first. Reading refreshes
// the conversation's recency.
func (s *InMemoryStore) History(_ context.Context, conversationID string) ([]Digest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.histories[conversationID]
	if !ok {
		return nil, nil
	}
	s.order.MoveToFront(elem)

	h := elem.Value.(*conversationHistory)
	return append([]Digest(nil), h.digests...), nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }

// Len returns the number of retained conversations.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.histories)
}

// evictLocked drops least recently used conversations over the cap.
func (s *InMemoryStore) evictLocked() {
	for len(s.histories) > s.maxConversations {
		oldest := s.order.Back()
		if oldest == nil {
			return
		}
		s.order.Remove(oldest)
		delete(s.histories, oldest.Value.(*conversationHistory).id)
	}
}

var _ Store = (*InMemoryStore)(nil)
