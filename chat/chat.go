// Package chat holds the boundary contract to durable chat storage and
// the short-term history implementations behind it. The orchestrator only
// ever appends turns and reads the most recent ones; existing turns are
// never mutated.
package chat

import (
	"context"

	"github.com/loomworks/aide/core"
)

// Store persists and retrieves conversational turns. Assumed strongly
// consistent for single-conversation reads-after-writes.
type Store interface {
	// RecentTurns returns up to limit turns of the conversation in
	// chronological order, oldest first.
	RecentTurns(ctx context.Context, conversationID string, limit int) ([]core.Turn, error)

	// AppendTurn stores one turn and returns its identifier.
	AppendTurn(ctx context.Context, conversationID string, role core.Role, content string) (string, error)

	// Close releases resources.
	Close() error
}
