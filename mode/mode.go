// Package mode holds the mode-configuration collaborator: named system
// instruction presets ("modes") the user can pick per turn. The real
// backing table lives outside this core; Static is enough for a single
// process.
package mode

import "context"

// DefaultInstructions is used whenever a mode is absent or unknown.
const DefaultInstructions = "You are a helpful AI assistant."

// Source resolves a mode identifier to its system instructions.
type Source interface {
	// Instructions returns the mode's instruction text, or the default
	// text when the mode is absent. Never an error for unknown modes.
	Instructions(ctx context.Context, modeID string) (string, error)
}

// Static serves modes from a fixed map.
type Static struct {
	modes map[string]string
}

// NewStatic creates a source over the given presets. A nil map is valid
// and serves only the default.
func NewStatic(modes map[string]string) *Static {
	return &Static{modes: modes}
}

// Instructions resolves modeID, falling back to DefaultInstructions.
func (s *Static) Instructions(_ context.Context, modeID string) (string, error) {
	if text, ok := s.modes[modeID]; ok && text != "" {
		return text, nil
	}
	return DefaultInstructions, nil
}
