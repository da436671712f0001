package chat

import (
	"context"
	"strings"
)

// NewStore picks a backend from the DSN: a postgres URL yields the
// Postgres store, an empty DSN yields the in-memory store, anything else
// is treated as a SQLite file path.
func NewStore(ctx context.Context, dsn string) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return NewInMemoryStore(), nil
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgresStore(ctx, dsn)
	default:
		return NewSQLiteStore(dsn)
	}
}
