// Package chromem backs the long-term memory store with chromem-go, a
// pure Go embedded vector database. This is the default backend: no
// external service, optional on-disk persistence.
package chromem

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/loomworks/aide/core"
	"github.com/loomworks/aide/memory"
)

const (
	metaScope        = "scope"
	metaConversation = "conversation_id"
	metaCreatedAt    = "created_at"
)

// Store keeps one chromem collection per owner so owners can never see
// each other's records regardless of query filters.
type Store struct {
	db          *chromem.DB
	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

// New creates an in-process, in-memory store.
func New() *Store {
	return &Store{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

// NewPersistent creates a store persisted under dir. Records survive
// restarts; there is still no eviction.
func NewPersistent(dir string) (*Store, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open persistent db: %w", err)
	}
	return &Store{db: db, collections: make(map[string]*chromem.Collection)}, nil
}

func (s *Store) collection(ownerID string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, ok := s.collections[ownerID]
	s.mu.RUnlock()
	if ok {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if col, ok := s.collections[ownerID]; ok {
		return col, nil
	}

	col, err := s.db.GetOrCreateCollection(fmt.Sprintf("owner_%s", ownerID), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	s.collections[ownerID] = col
	return col, nil
}

// Put appends one record to the owner's collection.
func (s *Store) Put(ctx context.Context, rec memory.Record) error {
	col, err := s.collection(rec.OwnerID)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:        rec.ID,
		Content:   rec.Text,
		Embedding: rec.Embedding,
		Metadata: map[string]string{
			metaScope:        string(rec.Scope),
			metaConversation: rec.ConversationID,
			metaCreatedAt:    rec.CreatedAt.Format(time.RFC3339Nano),
		},
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Search queries the owner's collection for records scoped global or to
// the given conversation. chromem's where clause is equality-only, so the
// disjunction runs as two filtered queries merged by ID. Each query
// returns the limit best within its eligible subset, so the union always
// contains the limit best of the whole eligible set no matter how many
// records from other conversations sit closer to the query.
func (s *Store) Search(ctx context.Context, ownerID, conversationID string, embedding []float32, limit int) ([]memory.Match, error) {
	col, err := s.collection(ownerID)
	if err != nil {
		return nil, err
	}

	total := col.Count()
	if total == 0 {
		return nil, nil
	}
	fetch := limit
	if fetch > total {
		fetch = total
	}

	wheres := []map[string]string{
		{metaScope: string(core.ScopeGlobal)},
		{metaConversation: conversationID},
	}

	seen := make(map[string]struct{})
	matches := make([]memory.Match, 0, 2*fetch)
	for _, where := range wheres {
		results, err := col.QueryEmbedding(ctx, embedding, fetch, where, nil)
		if err != nil {
			return nil, fmt.Errorf("query embedding: %w", err)
		}
		for _, res := range results {
			// A global record also matches its home conversation's filter.
			if _, ok := seen[res.ID]; ok {
				continue
			}
			seen[res.ID] = struct{}{}

			createdAt, err := time.Parse(time.RFC3339Nano, res.Metadata[metaCreatedAt])
			if err != nil {
				log.Printf("[CHROMEM] Malformed created_at on record %s: %v", res.ID, err)
			}
			matches = append(matches, memory.Match{
				Record: memory.Record{
					ID:             res.ID,
					OwnerID:        ownerID,
					ConversationID: res.Metadata[metaConversation],
					Scope:          core.Scope(res.Metadata[metaScope]),
					Text:           res.Content,
					Embedding:      res.Embedding,
					CreatedAt:      createdAt,
				},
				Similarity: res.Similarity,
			})
		}
	}
	return matches, nil
}

// Count reports the owner's record count.
func (s *Store) Count(ctx context.Context, ownerID string) (int, error) {
	col, err := s.collection(ownerID)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}

// Close releases nothing for the in-memory form; the persistent form
// flushes on every write, so there is nothing to do either.
func (s *Store) Close() error {
	return nil
}
