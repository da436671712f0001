package core

import "errors"

// Sentinel errors for the failure modes callers must distinguish.
// Wrap with fmt.Errorf("...: %w", ...) and test with errors.Is.
var (
	// ErrStoreUnavailable means the long-term memory index could not be
	// reached. Fatal for writes; recall callers may degrade to an empty
	// context instead.
	ErrStoreUnavailable = errors.New("memory store unavailable")

	// ErrModelUnavailable means the language model produced no reply.
	// The turn fails; it is never rendered as assistant content.
	ErrModelUnavailable = errors.New("language model unavailable")
)
