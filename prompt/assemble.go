// Package prompt assembles the per-turn model context. The segment order
// is fixed and load-bearing: system instructions with the long-term
// memory and document blocks, then short-term turns oldest first, then
// the current user input. Reordering changes what the model treats as
// durable instruction versus transient conversation, so nothing here may
// shuffle segments.
package prompt

import (
	"strings"

	"github.com/loomworks/aide/core"
)

const (
	memoryHeader     = "Long-term memory:"
	noMemoryMarker   = "(none)"
	documentHeader   = "Document context:"
	noDocumentMarker = "(no document)"
)

// TokenCounter counts prompt tokens for history budgeting.
type TokenCounter interface {
	Count(text string) int
}

// Assembler builds the ordered prompt for one turn.
type Assembler struct {
	counter       TokenCounter
	historyBudget int
}

// Option configures the assembler.
type Option func(*Assembler)

// WithHistoryBudget caps short-term history at maxTokens, counted by
// counter. Oldest whole turns are dropped first; trimming never reorders
// and never splits a turn.
func WithHistoryBudget(counter TokenCounter, maxTokens int) Option {
	return func(a *Assembler) {
		a.counter = counter
		a.historyBudget = maxTokens
	}
}

// NewAssembler creates an assembler. Without options, history is passed
// through untrimmed.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build produces the segment sequence for a model call:
//
//	system(instructions, memory block, document block),
//	short-term turns oldest first,
//	current input as the final user segment.
func (a *Assembler) Build(instructions string, recalled []string, documentText string, shortTerm []core.Turn, input string) []core.Segment {
	shortTerm = a.trim(shortTerm)

	segments := make([]core.Segment, 0, len(shortTerm)+2)
	segments = append(segments, core.Segment{
		Role:    core.RoleSystem,
		Content: systemContent(instructions, recalled, documentText),
	})
	for _, turn := range shortTerm {
		segments = append(segments, core.Segment{Role: turn.Role, Content: turn.Content})
	}
	segments = append(segments, core.Segment{Role: core.RoleUser, Content: input})
	return segments
}

func systemContent(instructions string, recalled []string, documentText string) string {
	var b strings.Builder
	b.WriteString(instructions)

	b.WriteString("\n\n")
	b.WriteString(memoryHeader)
	b.WriteString("\n")
	if len(recalled) == 0 {
		b.WriteString(noMemoryMarker)
	} else {
		b.WriteString(strings.Join(recalled, "\n"))
	}

	b.WriteString("\n\n")
	b.WriteString(documentHeader)
	b.WriteString("\n")
	if strings.TrimSpace(documentText) == "" {
		b.WriteString(noDocumentMarker)
	} else {
		b.WriteString(documentText)
	}

	return b.String()
}

// trim drops oldest turns until the remainder fits the token budget.
func (a *Assembler) trim(shortTerm []core.Turn) []core.Turn {
	if a.counter == nil || a.historyBudget <= 0 {
		return shortTerm
	}

	total := 0
	counts := make([]int, len(shortTerm))
	for i, turn := range shortTerm {
		counts[i] = a.counter.Count(turn.Content)
		total += counts[i]
	}

	start := 0
	for start < len(shortTerm) && total > a.historyBudget {
		total -= counts[start]
		start++
	}
	return shortTerm[start:]
}
