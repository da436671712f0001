package memory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/loomworks/aide/core"
)

// Config holds LongTerm tuning knobs.
type Config struct {
	// RecallLimit caps how many snippets a recall returns when the caller
	// passes no limit. Default: 5.
	RecallLimit int

	// MinSimilarity drops candidates below this cosine similarity
	// [0.0-1.0] when set above zero. Default: 0 (keep everything the
	// backend returns). Tiny local embedders produce low absolute
	// scores, so the default stays permissive.
	MinSimilarity float32
}

// DefaultConfig returns the defaults used when no config is given.
var DefaultConfig = Config{RecallLimit: 5}

// LongTerm is the long-term memory store component. It owns record
// lifecycle (create-only) and retrieval ordering; vector math and
// persistence live behind Backend and Embedder.
type LongTerm struct {
	backend  Backend
	embedder Embedder
	config   Config
}

// New creates a LongTerm store over the given backend and embedder.
func New(backend Backend, embedder Embedder, config *Config) *LongTerm {
	cfg := DefaultConfig
	if config != nil {
		cfg = *config
	}
	if cfg.RecallLimit <= 0 {
		cfg.RecallLimit = DefaultConfig.RecallLimit
	}
	return &LongTerm{backend: backend, embedder: embedder, config: cfg}
}

// Add appends one record for the owner. Ignorable scope is a no-op.
// Duplicate calls create duplicate records; callers are responsible for
// calling at most once per turn. A write failure is surfaced, never
// swallowed: silent memory loss is a correctness defect.
func (m *LongTerm) Add(ctx context.Context, ownerID, conversationID string, scope core.Scope, text string) error {
	if !scope.Persistable() {
		return nil
	}

	embedding, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed memory text: %w", err)
	}

	rec := Record{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		ConversationID: conversationID,
		Scope:          scope,
		Text:           text,
		Embedding:      embedding,
		CreatedAt:      time.Now().UTC(),
	}

	if err := m.backend.Put(ctx, rec); err != nil {
		return fmt.Errorf("%w: put record: %v", core.ErrStoreUnavailable, err)
	}

	log.Printf("[MEMORY] Stored %s record for owner=%s conversation=%s", scope, ownerID, conversationID)
	return nil
}

// Recall returns up to limit stored texts relevant to query, most similar
// first, ties broken by most recent record. Only records owned by ownerID
// and scoped global or to conversationID are candidates. An empty store
// yields an empty result, not an error; an unreachable backend yields an
// error wrapping core.ErrStoreUnavailable so callers can decide whether to
// degrade.
func (m *LongTerm) Recall(ctx context.Context, ownerID, conversationID, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = m.config.RecallLimit
	}

	embedding, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := m.backend.Search(ctx, ownerID, conversationID, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: search backend: %v", core.ErrStoreUnavailable, err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	texts := make([]string, 0, len(matches))
	for _, match := range matches {
		if m.config.MinSimilarity > 0 && match.Similarity < m.config.MinSimilarity {
			continue
		}
		if len(texts) == limit {
			break
		}
		texts = append(texts, match.Text)
	}

	log.Printf("[MEMORY] Recalled %d of %d candidates for owner=%s", len(texts), len(matches), ownerID)
	return texts, nil
}

// Count reports how many records the owner has accumulated. There is no
// eviction: records grow unbounded, matching the store's append-only
// lifecycle.
func (m *LongTerm) Count(ctx context.Context, ownerID string) (int, error) {
	n, err := m.backend.Count(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%w: count records: %v", core.ErrStoreUnavailable, err)
	}
	return n, nil
}
