package core

import "time"

// Role tags a conversational turn or prompt segment.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one persisted message of a conversation. Turns are append-only:
// the orchestrator creates them but never mutates existing ones.
type Turn struct {
	ID             string
	ConversationID string
	Role           Role
	Content        string
	CreatedAt      time.Time
}

// Segment is one role-tagged piece of an assembled prompt. A slice of
// segments is request-scoped and rebuilt on every turn; it is never
// persisted.
type Segment struct {
	Role    Role
	Content string
}
