package classify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/loomworks/aide/classify"
	"github.com/loomworks/aide/core"
)

// scriptedModel returns a fixed answer or error for every call.
type scriptedModel struct {
	answer string
	err    error
	calls  int
}

func (m *scriptedModel) Chat(ctx context.Context, segments []core.Segment) (string, error) {
	m.calls++
	return m.answer, m.err
}

func TestModelClassifierParsesAnswers(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		err    error
		want   core.Scope
	}{
		{"exact global", "global", nil, core.ScopeGlobal},
		{"exact conversational", "conversational", nil, core.ScopeConversational},
		{"exact ignorable", "ignorable", nil, core.ScopeIgnorable},
		{"uppercase", "GLOBAL", nil, core.ScopeGlobal},
		{"stem form", "This is about the conversation.", nil, core.ScopeConversational},
		{"ignore stem", "ignore", nil, core.ScopeIgnorable},
		{"rambling prefers durable label", "could be global or conversational", nil, core.ScopeGlobal},
		{"unparseable fails open", "I cannot decide", nil, core.ScopeConversational},
		{"model error fails open", "", errors.New("connection refused"), core.ScopeConversational},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := classify.NewModelClassifier(&scriptedModel{answer: tt.answer, err: tt.err})
			if got := c.Classify(context.Background(), "My name is Ana"); got != tt.want {
				t.Errorf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModelClassifierSkipsModelForEmptyInput(t *testing.T) {
	model := &scriptedModel{answer: "global"}
	c := classify.NewModelClassifier(model)

	for _, input := range []string{"", "   ", "\n\t"} {
		if got := c.Classify(context.Background(), input); got != core.ScopeIgnorable {
			t.Errorf("Classify(%q) = %q, want ignorable", input, got)
		}
	}
	if model.calls != 0 {
		t.Errorf("model called %d times for empty input, want 0", model.calls)
	}
}

func TestHeuristicClassifier(t *testing.T) {
	tests := []struct {
		input string
		want  core.Scope
	}{
		{"hi", core.ScopeIgnorable},
		{"Thanks!", core.ScopeIgnorable},
		{"", core.ScopeIgnorable},
		{"My name is Ana", core.ScopeGlobal},
		{"I prefer short answers", core.ScopeGlobal},
		{"What is the capital of France?", core.ScopeConversational},
		{"explain goroutines", core.ScopeConversational},
	}

	h := classify.NewHeuristic()
	for _, tt := range tests {
		if got := h.Classify(context.Background(), tt.input); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
