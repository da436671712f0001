package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loomworks/aide/core"
)

// PostgresStore persists turns in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS turns (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns (conversation_id, seq);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}

	return &PostgresStore{pool: pool}, nil
}

// AppendTurn stores one turn.
func (s *PostgresStore) AppendTurn(ctx context.Context, conversationID string, role core.Role, content string) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO turns (id, conversation_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, conversationID, string(role), content, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("append turn: %w", err)
	}
	return id, nil
}

// RecentTurns returns the last limit turns, oldest first.
func (s *PostgresStore) RecentTurns(ctx context.Context, conversationID string, limit int) ([]core.Turn, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, role, content, created_at FROM turns
		 WHERE conversation_id = $1 ORDER BY seq DESC LIMIT $2`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent turns: %w", err)
	}
	defer rows.Close()

	var turns []core.Turn
	for rows.Next() {
		turn := core.Turn{ConversationID: conversationID}
		var role string
		if err := rows.Scan(&turn.ID, &role, &turn.Content, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		turn.Role = core.Role(role)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows: %w", err)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
