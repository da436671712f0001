package memory

import (
	"context"
	"time"

	"github.com/loomworks/aide/core"
)

// Record is one stored memory snippet. Records are created once and never
// updated; a newer record with a higher similarity score supersedes an
// older one implicitly at query time.
type Record struct {
	ID             string
	OwnerID        string
	ConversationID string
	Scope          core.Scope
	Text           string
	Embedding      []float32
	CreatedAt      time.Time
}

// Match is a record paired with its similarity to a query embedding.
type Match struct {
	Record
	Similarity float32
}

// Backend is the vector storage behind the long-term store.
// Implementations: chromem (embedded, default), pgvector (Postgres).
type Backend interface {
	// Put appends a record with its embedding already set.
	Put(ctx context.Context, rec Record) error

	// Search returns up to limit candidates for the owner whose scope is
	// global or whose conversation matches, most similar first.
	Search(ctx context.Context, ownerID, conversationID string, embedding []float32, limit int) ([]Match, error)

	// Count reports how many records the owner has. Used by callers that
	// need to observe store growth.
	Count(ctx context.Context, ownerID string) (int, error)

	// Close releases resources.
	Close() error
}

// Embedder converts text to a fixed-dimension vector.
// Implementations: hash-based mock (testing), ONNX local model,
// ristretto-cached wrapper around either.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
