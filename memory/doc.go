// Package memory implements the long-term memory store: an
// embedding-indexed record store keyed by (owner, scope, conversation).
//
// Records are immutable and append-only. Retrieval ranks candidates by
// cosine similarity to the query text, restricted to the owning user and
// to records that are either global or belong to the queried conversation.
//
// Architecture:
//   - Backend: vector storage (chromem-go embedded store for local use,
//     pgvector for deployments that already run Postgres)
//   - Embedder: text-to-vector conversion (deterministic hash embedder for
//     tests, ONNX local model behind the onnx build tag, optional
//     ristretto read-through cache)
//   - LongTerm: the store component itself, orchestrating Add and Recall
package memory
