// Package cache wraps an Embedder with a ristretto read-through cache.
// Every turn embeds the user's text at least twice (recall query plus the
// stored record), and classifiers re-see the same short utterances, so a
// small cache removes most embedding calls.
package cache

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/loomworks/aide/memory"
)

// Embedder is a caching decorator around another memory.Embedder.
type Embedder struct {
	inner memory.Embedder
	cache *ristretto.Cache
}

// New wraps inner with a cache holding up to maxEntries embeddings.
func New(inner memory.Embedder, maxEntries int64) (*Embedder, error) {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Embedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text, or embeds and caches it.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		return v.([]float32), nil
	}

	embedding, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, embedding, 1)
	return embedding, nil
}

// Dimensions reports the wrapped embedder's size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Wait blocks until pending cache writes are applied. Only needed when a
// test wants deterministic hit behavior.
func (e *Embedder) Wait() {
	e.cache.Wait()
}
