package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/loomworks/aide/core"
	"github.com/loomworks/aide/memory"
	"github.com/loomworks/aide/memory/embedder/mock"
	"github.com/loomworks/aide/memory/store/chromem"
)

func newLongTerm(t *testing.T) *memory.LongTerm {
	t.Helper()
	return memory.New(chromem.New(), mock.New(), nil)
}

func TestAddIgnorableIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := newLongTerm(t)

	if err := store.Add(ctx, "ana", "c1", core.ScopeIgnorable, "hi"); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	n, err := store.Count(ctx, "ana")
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if n != 0 {
		t.Errorf("store size = %d after ignorable add, want 0", n)
	}
}

func TestAddDuplicateCallsAreNotConflated(t *testing.T) {
	ctx := context.Background()
	store := newLongTerm(t)

	for i := 0; i < 2; i++ {
		if err := store.Add(ctx, "ana", "c1", core.ScopeGlobal, "My name is Ana"); err != nil {
			t.Fatalf("Add #%d returned error: %v", i+1, err)
		}
	}

	n, err := store.Count(ctx, "ana")
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if n != 2 {
		t.Errorf("store size = %d after two adds, want 2", n)
	}
}

func TestRecallNeverCrossesOwners(t *testing.T) {
	ctx := context.Background()
	store := newLongTerm(t)

	if err := store.Add(ctx, "bob", "c1", core.ScopeGlobal, "Bob lives in London"); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	got, err := store.Recall(ctx, "ana", "c2", "Bob lives in London", 5)
	if err != nil {
		t.Fatalf("Recall returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("recall for other owner returned %v, want nothing", got)
	}
}

func TestRecallScopesConversationalRecords(t *testing.T) {
	ctx := context.Background()
	store := newLongTerm(t)

	if err := store.Add(ctx, "ana", "c1", core.ScopeConversational, "the project deadline is Friday"); err != nil {
		t.Fatalf("Add conversational: %v", err)
	}
	if err := store.Add(ctx, "ana", "c1", core.ScopeGlobal, "Ana prefers dark roast coffee"); err != nil {
		t.Fatalf("Add global: %v", err)
	}

	// Same conversation sees both.
	got, err := store.Recall(ctx, "ana", "c1", "project deadline coffee", 5)
	if err != nil {
		t.Fatalf("Recall c1: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("recall in c1 returned %d texts, want 2: %v", len(got), got)
	}

	// A different conversation of the same owner sees only the global record.
	got, err = store.Recall(ctx, "ana", "c2", "project deadline coffee", 5)
	if err != nil {
		t.Fatalf("Recall c2: %v", err)
	}
	if len(got) != 1 || got[0] != "Ana prefers dark roast coffee" {
		t.Errorf("recall in c2 = %v, want only the global record", got)
	}
}

func TestRecallEmptyStoreReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	store := newLongTerm(t)

	got, err := store.Recall(ctx, "ana", "c1", "anything", 5)
	if err != nil {
		t.Fatalf("Recall on empty store returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recall on empty store = %v, want empty", got)
	}
}

func TestRecallHonorsLimitAndSimilarityOrder(t *testing.T) {
	ctx := context.Background()
	store := newLongTerm(t)

	texts := []string{
		"alpha beta gamma",
		"completely unrelated words here",
		"alpha beta",
	}
	for _, text := range texts {
		if err := store.Add(ctx, "ana", "c1", core.ScopeConversational, text); err != nil {
			t.Fatalf("Add %q: %v", text, err)
		}
	}

	got, err := store.Recall(ctx, "ana", "c1", "alpha beta", 2)
	if err != nil {
		t.Fatalf("Recall returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recall returned %d texts, want 2", len(got))
	}
	// Exact text match embeds identically, so it must rank first.
	if got[0] != "alpha beta" {
		t.Errorf("top recall = %q, want %q", got[0], "alpha beta")
	}
}

// stubBackend scripts Search results and failures for ordering and error
// propagation tests.
type stubBackend struct {
	matches []memory.Match
	err     error
}

func (s *stubBackend) Put(ctx context.Context, rec memory.Record) error { return s.err }
func (s *stubBackend) Search(ctx context.Context, ownerID, conversationID string, embedding []float32, limit int) ([]memory.Match, error) {
	return s.matches, s.err
}
func (s *stubBackend) Count(ctx context.Context, ownerID string) (int, error) {
	return len(s.matches), s.err
}
func (s *stubBackend) Close() error { return nil }

func TestRecallBreaksTiesMostRecentFirst(t *testing.T) {
	now := time.Now()
	backend := &stubBackend{matches: []memory.Match{
		{Record: memory.Record{Text: "older", CreatedAt: now.Add(-time.Hour)}, Similarity: 0.8},
		{Record: memory.Record{Text: "newer", CreatedAt: now}, Similarity: 0.8},
	}}
	store := memory.New(backend, mock.New(), nil)

	got, err := store.Recall(context.Background(), "ana", "c1", "q", 2)
	if err != nil {
		t.Fatalf("Recall returned error: %v", err)
	}
	if len(got) != 2 || got[0] != "newer" || got[1] != "older" {
		t.Errorf("tie-broken order = %v, want [newer older]", got)
	}
}

func TestRecallSurfacesStoreUnavailable(t *testing.T) {
	backend := &stubBackend{err: errors.New("index down")}
	store := memory.New(backend, mock.New(), nil)

	_, err := store.Recall(context.Background(), "ana", "c1", "q", 2)
	if !errors.Is(err, core.ErrStoreUnavailable) {
		t.Errorf("Recall error = %v, want ErrStoreUnavailable", err)
	}

	err = store.Add(context.Background(), "ana", "c1", core.ScopeGlobal, "text")
	if !errors.Is(err, core.ErrStoreUnavailable) {
		t.Errorf("Add error = %v, want ErrStoreUnavailable", err)
	}
}
