package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loomworks/aide/core"
)

// InMemoryStore is a simple in-process chat store for local/dev use and
// tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	turns map[string][]core.Turn
}

// NewInMemoryStore creates an empty in-process store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{turns: make(map[string][]core.Turn)}
}

// AppendTurn stores one turn at the end of the conversation.
func (s *InMemoryStore) AppendTurn(_ context.Context, conversationID string, role core.Role, content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn := core.Turn{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	s.turns[conversationID] = append(s.turns[conversationID], turn)
	return turn.ID, nil
}

// RecentTurns returns the last limit turns, oldest first.
func (s *InMemoryStore) RecentTurns(_ context.Context, conversationID string, limit int) ([]core.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.turns[conversationID]
	if len(all) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	out := make([]core.Turn, limit)
	copy(out, all[len(all)-limit:])
	return out, nil
}

// Close releases nothing.
func (s *InMemoryStore) Close() error { return nil }
