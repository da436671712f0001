// Package pgvector backs the long-term memory store with PostgreSQL and
// the pgvector extension, for deployments that already run Postgres and
// want memory to share its durability story.
package pgvector

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loomworks/aide/core"
	"github.com/loomworks/aide/memory"
)

// Store persists memory records in a pgvector-indexed table.
type Store struct {
	pool *pgxpool.Pool
	dim  int
}

// New connects to Postgres and ensures the schema exists. dim must match
// the embedder's Dimensions.
func New(ctx context.Context, databaseURL string, dim int) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	s := &Store{pool: pool, dim: dim}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS memory_records (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			conversation_id TEXT NOT NULL,
			scope TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, s.dim),
		`CREATE INDEX IF NOT EXISTS idx_memory_records_owner ON memory_records (owner_id, created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

// Put appends one record.
func (s *Store) Put(ctx context.Context, rec memory.Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO memory_records (id, owner_id, conversation_id, scope, content, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6::vector, $7)`,
		rec.ID,
		rec.OwnerID,
		rec.ConversationID,
		string(rec.Scope),
		rec.Text,
		vectorLiteral(rec.Embedding),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Search ranks the owner's global-or-conversation records by cosine
// similarity. Ties fall back to most recent first.
func (s *Store) Search(ctx context.Context, ownerID, conversationID string, embedding []float32, limit int) ([]memory.Match, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, conversation_id, scope, content, created_at,
		        1 - (embedding <=> $3::vector) AS similarity
		 FROM memory_records
		 WHERE owner_id = $1 AND (scope = 'global' OR conversation_id = $2)
		 ORDER BY embedding <=> $3::vector ASC, created_at DESC
		 LIMIT $4`,
		ownerID,
		conversationID,
		vectorLiteral(embedding),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	matches := make([]memory.Match, 0, limit)
	for rows.Next() {
		var m memory.Match
		var scope string
		var similarity float64
		if err := rows.Scan(&m.ID, &m.ConversationID, &scope, &m.Text, &m.CreatedAt, &similarity); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		m.OwnerID = ownerID
		m.Scope = core.Scope(scope)
		m.Similarity = float32(similarity)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}
	return matches, nil
}

// Count reports the owner's record count.
func (s *Store) Count(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM memory_records WHERE owner_id = $1`, ownerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func vectorLiteral(embedding []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
