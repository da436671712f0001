package chromem

import (
	"context"
	"fmt"
	"testing"
	"time"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/loomworks/aide/core"
	"github.com/loomworks/aide/memory"
	"github.com/loomworks/aide/memory/embedder/mock"
)

func TestSearchFindsGlobalBehindManyForeignConversationalRecords(t *testing.T) {
	ctx := context.Background()
	s := New()
	embedder := mock.New()

	globalVec, err := embedder.Embed(ctx, "My name is Ana")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if err := s.Put(ctx, memory.Record{
		ID:             "global-1",
		OwnerID:        "ana",
		ConversationID: "c1",
		Scope:          core.ScopeGlobal,
		Text:           "My name is Ana",
		Embedding:      globalVec,
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Ineligible records from another conversation that match the query
	// exactly, so every one of them ranks above the global record.
	query := "what is my name"
	queryVec, err := embedder.Embed(ctx, query)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for i := 0; i < 40; i++ {
		if err := s.Put(ctx, memory.Record{
			ID:             fmt.Sprintf("noise-%d", i),
			OwnerID:        "ana",
			ConversationID: "c2",
			Scope:          core.ScopeConversational,
			Text:           query,
			Embedding:      queryVec,
			CreatedAt:      time.Now().UTC(),
		}); err != nil {
			t.Fatalf("Put noise %d: %v", i, err)
		}
	}

	matches, err := s.Search(ctx, "ana", "c3", queryVec, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want just the global record", len(matches))
	}
	if matches[0].ID != "global-1" || matches[0].Scope != core.ScopeGlobal {
		t.Fatalf("match = %+v, want the global record", matches[0].Record)
	}
}

func TestSearchDeduplicatesGlobalRecordInOwnConversation(t *testing.T) {
	ctx := context.Background()
	s := New()
	embedder := mock.New()

	vec, err := embedder.Embed(ctx, "I am allergic to peanuts")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if err := s.Put(ctx, memory.Record{
		ID:             "global-1",
		OwnerID:        "ana",
		ConversationID: "c1",
		Scope:          core.ScopeGlobal,
		Text:           "I am allergic to peanuts",
		Embedding:      vec,
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Queried from its home conversation the record matches both the
	// global and the conversation filter; it must come back once.
	matches, err := s.Search(ctx, "ana", "c1", vec, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
}

func TestSearchToleratesMalformedTimestamp(t *testing.T) {
	ctx := context.Background()
	s := New()
	embedder := mock.New()

	vec, err := embedder.Embed(ctx, "I prefer espresso")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	col, err := s.collection("ana")
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	if err := col.AddDocument(ctx, chromemgo.Document{
		ID:        "bad-ts",
		Content:   "I prefer espresso",
		Embedding: vec,
		Metadata: map[string]string{
			metaScope:        string(core.ScopeGlobal),
			metaConversation: "c1",
			metaCreatedAt:    "not-a-timestamp",
		},
	}); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	matches, err := s.Search(ctx, "ana", "c1", vec, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want the record despite its timestamp", len(matches))
	}
	if !matches[0].CreatedAt.IsZero() {
		t.Fatalf("CreatedAt = %v, want zero for a malformed timestamp", matches[0].CreatedAt)
	}
}
