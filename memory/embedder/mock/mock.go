// Package mock provides a deterministic, offline embedder for tests and
// local development. It is a bag-of-words hash embedder: each word
// contributes a hash-seeded pseudo-random vector, so texts sharing words
// land near each other. Not real semantics, but similarity ordering is
// stable and overlapping texts do score higher than unrelated ones.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// Embedder generates deterministic embeddings from text content.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder with the all-MiniLM-L6-v2 dimension count.
func New() *Embedder {
	return NewWithDimensions(384)
}

// NewWithDimensions creates a mock embedder of the given size.
func NewWithDimensions(dims int) *Embedder {
	return &Embedder{dimensions: dims}
}

// Embed sums per-word hash vectors and normalizes to a unit vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding := make([]float32, e.dimensions)

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		words = []string{text}
	}
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'")
		e.accumulate(embedding, word)
	}

	return normalize(embedding), nil
}

// Dimensions returns the embedding size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// accumulate adds the word's hash-seeded vector into acc. A linear
// congruential generator stretches the 64-bit hash across all dimensions.
func (e *Embedder) accumulate(acc []float32, word string) {
	h := fnv.New64a()
	h.Write([]byte(word))
	seed := h.Sum64()

	for i := 0; i < e.dimensions; i++ {
		seed = seed*6364136223846793005 + 1442695040888963407
		acc[i] += float32(int64(seed)) / float32(math.MaxInt64)
	}
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}
