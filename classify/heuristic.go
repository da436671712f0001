package classify

import (
	"context"
	"strings"

	"github.com/loomworks/aide/core"
)

// Heuristic is a keyword classifier for offline use. It mirrors the
// model-backed contract: greetings and acknowledgements are ignorable,
// first-person statements about the user are global, everything else is
// conversational.
type Heuristic struct{}

// NewHeuristic creates a keyword classifier.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

var ignorableUtterances = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "yo": {},
	"ok": {}, "okay": {}, "k": {},
	"thanks": {}, "thank you": {}, "thx": {},
	"bye": {}, "goodbye": {}, "see you": {},
	"yes": {}, "no": {}, "sure": {}, "cool": {}, "nice": {},
}

var globalMarkers = []string{
	"my name is",
	"call me",
	"i live in",
	"i am from",
	"i'm from",
	"i prefer",
	"i like",
	"i don't like",
	"i dislike",
	"i work as",
	"my birthday",
	"address me",
}

// Classify labels text by keyword rules.
func (h *Heuristic) Classify(ctx context.Context, text string) core.Scope {
	folded := strings.ToLower(strings.TrimSpace(text))
	if folded == "" {
		return core.ScopeIgnorable
	}
	if _, ok := ignorableUtterances[strings.Trim(folded, ".,!?")]; ok {
		return core.ScopeIgnorable
	}
	for _, marker := range globalMarkers {
		if strings.Contains(folded, marker) {
			return core.ScopeGlobal
		}
	}
	return core.ScopeConversational
}
