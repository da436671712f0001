package prompt_test

import (
	"strings"
	"testing"

	"github.com/loomworks/aide/core"
	"github.com/loomworks/aide/prompt"
)

func TestBuildSegmentOrderIsFixed(t *testing.T) {
	a := prompt.NewAssembler()

	segments := a.Build(
		"M",
		[]string{"R1", "R2"},
		"D",
		[]core.Turn{
			{Role: core.RoleUser, Content: "a"},
			{Role: core.RoleAssistant, Content: "b"},
		},
		"c",
	)

	if len(segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(segments))
	}

	system := segments[0]
	if system.Role != core.RoleSystem {
		t.Errorf("segment[0].Role = %q, want system", system.Role)
	}
	// The system segment carries instructions, then memory, then document,
	// in that order.
	for _, part := range []string{"M", "R1", "R2", "D"} {
		if !strings.Contains(system.Content, part) {
			t.Errorf("system segment misses %q: %q", part, system.Content)
		}
	}
	if strings.Index(system.Content, "M") > strings.Index(system.Content, "R1") ||
		strings.Index(system.Content, "R1") > strings.Index(system.Content, "R2") ||
		strings.Index(system.Content, "R2") > strings.Index(system.Content, "D") {
		t.Errorf("system segment parts out of order: %q", system.Content)
	}

	want := []core.Segment{
		{Role: core.RoleUser, Content: "a"},
		{Role: core.RoleAssistant, Content: "b"},
		{Role: core.RoleUser, Content: "c"},
	}
	for i, w := range want {
		if segments[i+1] != w {
			t.Errorf("segment[%d] = %+v, want %+v", i+1, segments[i+1], w)
		}
	}
}

func TestBuildMarksEmptyMemoryAndDocument(t *testing.T) {
	a := prompt.NewAssembler()

	segments := a.Build("M", nil, "", nil, "c")
	system := segments[0].Content

	if !strings.Contains(system, "(none)") {
		t.Errorf("system segment misses empty-memory marker: %q", system)
	}
	if !strings.Contains(system, "(no document)") {
		t.Errorf("system segment misses no-document marker: %q", system)
	}
}

// wordCounter counts whitespace-separated words, standing in for the
// tiktoken counter so tests stay offline.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func TestBuildTrimsOldestTurnsToBudget(t *testing.T) {
	a := prompt.NewAssembler(prompt.WithHistoryBudget(wordCounter{}, 4))

	turns := []core.Turn{
		{Role: core.RoleUser, Content: "one two three"},
		{Role: core.RoleAssistant, Content: "four five"},
		{Role: core.RoleUser, Content: "six"},
	}

	segments := a.Build("M", nil, "", turns, "c")

	// 3+2+1 words exceeds the budget of 4; dropping the oldest turn fits.
	if len(segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(segments))
	}
	if segments[1].Content != "four five" || segments[2].Content != "six" {
		t.Errorf("trimmed history = %q, %q; want oldest turn dropped", segments[1].Content, segments[2].Content)
	}
}

func TestBuildKeepsHistoryWithoutBudget(t *testing.T) {
	a := prompt.NewAssembler()

	turns := make([]core.Turn, 50)
	for i := range turns {
		turns[i] = core.Turn{Role: core.RoleUser, Content: strings.Repeat("x ", 100)}
	}

	segments := a.Build("M", nil, "", turns, "c")
	if len(segments) != 52 {
		t.Errorf("got %d segments, want 52 (no trimming without a budget)", len(segments))
	}
}
