package core

import "strings"

// Scope classifies what a memorized fact is worth across conversations.
type Scope string

const (
	// ScopeGlobal marks a durable personal fact, retrievable from every
	// conversation owned by the same user.
	ScopeGlobal Scope = "global"

	// ScopeConversational marks a fact relevant only within the
	// conversation it was said in.
	ScopeConversational Scope = "conversational"

	// ScopeIgnorable marks noise (greetings, acknowledgements) that is
	// never persisted.
	ScopeIgnorable Scope = "ignorable"
)

// Persistable reports whether records with this scope may be stored.
func (s Scope) Persistable() bool {
	return s == ScopeGlobal || s == ScopeConversational
}

// ParseScope maps a model's free-text answer onto one of the three
// canonical labels by case-folded substring match. Stems are matched so
// both "conversation" and "conversational" resolve. The match order
// matters: "global" is checked first so a rambling answer mentioning
// several labels resolves to the most durable one. Returns false when
// nothing matches.
func ParseScope(answer string) (Scope, bool) {
	folded := strings.ToLower(answer)
	for _, c := range []struct {
		stem  string
		scope Scope
	}{
		{"global", ScopeGlobal},
		{"conversation", ScopeConversational},
		{"ignor", ScopeIgnorable},
	} {
		if strings.Contains(folded, c.stem) {
			return c.scope, true
		}
	}
	return "", false
}
