package chat

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/loomworks/aide/core"
)

// SQLiteStore persists turns in a local SQLite file. The default durable
// backend for a single-user deployment.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path, ensuring the
// parent directory exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db at %s: %w", path, err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS turns (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, seq);
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// AppendTurn stores one turn.
func (s *SQLiteStore) AppendTurn(ctx context.Context, conversationID string, role core.Role, content string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, conversationID, string(role), content, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("append turn: %w", err)
	}
	return id, nil
}

// RecentTurns returns the last limit turns, oldest first.
func (s *SQLiteStore) RecentTurns(ctx context.Context, conversationID string, limit int) ([]core.Turn, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, created_at FROM turns
		 WHERE conversation_id = ? ORDER BY seq DESC LIMIT ?`,
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

	// Reverse into chronological order for prompt coherence.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
