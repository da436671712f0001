// Package classify labels user utterances with a memory scope. The
// contract is deliberately narrow: callers always get exactly one of the
// three scope labels, never free text and never an error. Classification
// is side-effect free and must not block turn persistence, so every
// failure mode folds into the safe default.
package classify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/loomworks/aide/core"
)

// Classifier decides how an utterance should be remembered. Strategies
// are swappable: the model-backed classifier for live use, the keyword
// heuristic for offline use or as a cheap first pass.
type Classifier interface {
	Classify(ctx context.Context, text string) core.Scope
}

// LanguageModel is the slice of the model client the classifier needs.
type LanguageModel interface {
	Chat(ctx context.Context, segments []core.Segment) (string, error)
}

const instruction = `Analyze the following user message and classify it into one of three categories:
1. 'global' - the message states personal information about the user, their preferences, or how they want to be addressed.
2. 'conversational' - the message is a regular question, a factual inquiry, or specific to the current topic.
3. 'ignorable' - the message is a greeting (hi, hello), a short acknowledgement (ok, thanks), or nonsensical.

Message: %q

Respond with only one word: global, conversational, or ignorable.`

// ModelClassifier asks a language model for a one-word label.
type ModelClassifier struct {
	model LanguageModel
}

// NewModelClassifier creates a classifier backed by the given model.
func NewModelClassifier(model LanguageModel) *ModelClassifier {
	return &ModelClassifier{model: model}
}

// Classify labels text. Empty or whitespace input is ignorable without a
// model call. A transport failure or an unparseable answer fails open to
// conversational: informative content must never be dropped silently, and
// noise must never be promoted to a durable global fact by accident.
func (c *ModelClassifier) Classify(ctx context.Context, text string) core.Scope {
	if strings.TrimSpace(text) == "" {
		return core.ScopeIgnorable
	}

	answer, err := c.model.Chat(ctx, []core.Segment{
		{Role: core.RoleUser, Content: fmt.Sprintf(instruction, text)},
	})
	if err != nil {
		log.Printf("[CLASSIFY] Model call failed, defaulting to conversational: %v", err)
		return core.ScopeConversational
	}

	scope, ok := core.ParseScope(answer)
	if !ok {
		log.Printf("[CLASSIFY] Unparseable answer %q, defaulting to conversational", answer)
		return core.ScopeConversational
	}
	return scope
}
