// Package orchestrate drives one conversational turn end to end:
// classify the utterance, recall long-term memory, extract document
// context, assemble the prompt, invoke the model, and persist the
// exchange. Each turn is an independent, stateless unit of work; the only
// shared state is the durable stores. Turns within one conversation are
// not serialized — an accepted limitation for a single-user tool, not a
// multi-writer guarantee.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/loomworks/aide/chat"
	"github.com/loomworks/aide/classify"
	"github.com/loomworks/aide/core"
	"github.com/loomworks/aide/document"
	"github.com/loomworks/aide/mode"
	"github.com/loomworks/aide/observe"
	"github.com/loomworks/aide/prompt"
)

// LanguageModel is the slice of the model client the orchestrator needs.
type LanguageModel interface {
	Chat(ctx context.Context, segments []core.Segment) (string, error)
}

// MemoryStore is the slice of the long-term store the orchestrator needs.
type MemoryStore interface {
	Add(ctx context.Context, ownerID, conversationID string, scope core.Scope, text string) error
	Recall(ctx context.Context, ownerID, conversationID, query string, limit int) ([]string, error)
}

// Request is one incoming turn. Content may be accompanied by an optional
// binary document.
type Request struct {
	OwnerID        string
	ConversationID string
	ModeID         string
	Content        string
	Document       []byte
	ContentType    string
}

// Result is the completed turn. Replaying the same request is not
// idempotent by design: every invocation models a live conversational
// turn and produces a new stored exchange.
type Result struct {
	Reply    string
	Scope    core.Scope
	Recalled []string
}

// Orchestrator wires the turn pipeline. All collaborators are explicitly
// constructed and passed down; there is no process-wide state.
type Orchestrator struct {
	classifier   classify.Classifier
	memory       MemoryStore
	chats        chat.Store
	modes        mode.Source
	assembler    *prompt.Assembler
	model        LanguageModel
	extractor    document.Extractor
	metrics      *observe.Metrics
	historyLimit int
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithExtractor enables document ingestion.
func WithExtractor(e document.Extractor) Option {
	return func(o *Orchestrator) { o.extractor = e }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithHistoryLimit overrides how many short-term turns are read per turn.
// Default: 10.
func WithHistoryLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.historyLimit = n
		}
	}
}

// New creates an orchestrator over the given collaborators.
func New(
	classifier classify.Classifier,
	memoryStore MemoryStore,
	chats chat.Store,
	modes mode.Source,
	assembler *prompt.Assembler,
	model LanguageModel,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		classifier:   classifier,
		memory:       memoryStore,
		chats:        chats,
		modes:        modes,
		assembler:    assembler,
		model:        model,
		historyLimit: 10,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// HandleTurn runs the turn state machine:
//
//	Received → Classified → Recalled → (DocumentExtracted?) → Assembled →
//	ModelInvoked → {Persisted, Failed}
//
// Classification, recall, and extraction failures degrade; a model
// failure fails the turn with core.ErrModelUnavailable and persists
// nothing, so a caller aborting before the model responds never leaves a
// partial record behind. After a successful reply the user turn, the
// assistant turn, and (scope permitting) one memory record are persisted
// in that order; a memory write failure is surfaced alongside the result
// rather than swallowed.
func (o *Orchestrator) HandleTurn(ctx context.Context, req Request) (*Result, error) {
	// Received.
	if strings.TrimSpace(req.ConversationID) == "" {
		return nil, errors.New("conversation id is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, errors.New("content is required")
	}

	// Classified. The classifier absorbs its own failures.
	scope := o.classifier.Classify(ctx, req.Content)
	if o.metrics != nil {
		o.metrics.Classifications.WithLabelValues(string(scope)).Inc()
	}

	// Recalled. Store outage degrades to an empty context.
	recalled, err := o.memory.Recall(ctx, req.OwnerID, req.ConversationID, req.Content, 0)
	if err != nil {
		log.Printf("[TURN] Recall degraded to empty context: %v", err)
		recalled = nil
		if o.metrics != nil {
			o.metrics.RecallDegraded.Inc()
		}
	}
	if o.metrics != nil {
		o.metrics.RecallSize.Observe(float64(len(recalled)))
	}

	// DocumentExtracted (optional).
	var documentText string
	if len(req.Document) > 0 && o.extractor != nil {
		text, err := o.extractor.ExtractText(ctx, req.Document, req.ContentType)
		if err != nil {
			log.Printf("[TURN] Document extraction degraded to no context: %v", err)
		} else {
			documentText = text
		}
	}

	// Assembled.
	instructions, err := o.modes.Instructions(ctx, req.ModeID)
	if err != nil {
		log.Printf("[TURN] Mode lookup failed, using default instructions: %v", err)
		instructions = mode.DefaultInstructions
	}
	shortTerm, err := o.chats.RecentTurns(ctx, req.ConversationID, o.historyLimit)
	if err != nil {
		log.Printf("[TURN] History read degraded to empty history: %v", err)
		shortTerm = nil
	}
	segments := o.assembler.Build(instructions, recalled, documentText, shortTerm, req.Content)

	// ModelInvoked. The single unbounded-latency point; the caller owns
	// the deadline via ctx.
	start := time.Now()
	reply, err := o.model.Chat(ctx, segments)
	if err != nil {
		if o.metrics != nil {
			o.metrics.Turns.WithLabelValues("failed").Inc()
		}
		return nil, fmt.Errorf("%w: %v", core.ErrModelUnavailable, err)
	}
	if o.metrics != nil {
		o.metrics.ObserveModelLatency(time.Since(start))
	}

	// Persisted: user turn first, assistant turn second, then the memory
	// record with the step-2 scope and the user's original content.
	if _, err := o.chats.AppendTurn(ctx, req.ConversationID, core.RoleUser, req.Content); err != nil {
		if o.metrics != nil {
			o.metrics.Turns.WithLabelValues("persist_failed").Inc()
		}
		return nil, fmt.Errorf("persist user turn: %w", err)
	}
	if _, err := o.chats.AppendTurn(ctx, req.ConversationID, core.RoleAssistant, reply); err != nil {
		if o.metrics != nil {
			o.metrics.Turns.WithLabelValues("persist_failed").Inc()
		}
		return nil, fmt.Errorf("persist assistant turn: %w", err)
	}

	result := &Result{Reply: reply, Scope: scope, Recalled: recalled}

	if err := o.memory.Add(ctx, req.OwnerID, req.ConversationID, scope, req.Content); err != nil {
		// The exchange is durable and the reply is real; return both the
		// result and the surfaced write failure.
		if o.metrics != nil {
			o.metrics.Turns.WithLabelValues("memory_write_failed").Inc()
		}
		return result, fmt.Errorf("memorize turn: %w", err)
	}

	if o.metrics != nil {
		o.metrics.Turns.WithLabelValues("persisted").Inc()
	}
	return result, nil
}
