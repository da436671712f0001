package chat_test

import (
	"context"
	"testing"

	"github.com/loomworks/aide/chat"
	"github.com/loomworks/aide/core"
)

func TestInMemoryStoreAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	store := chat.NewInMemoryStore()

	contents := []string{"a", "b", "c", "d"}
	for i, content := range contents {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		id, err := store.AppendTurn(ctx, "c1", role, content)
		if err != nil {
			t.Fatalf("AppendTurn %q: %v", content, err)
		}
		if id == "" {
			t.Fatal("AppendTurn returned empty id")
		}
	}

	turns, err := store.RecentTurns(ctx, "c1", 3)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("RecentTurns returned %d turns, want 3", len(turns))
	}
	// Chronological, oldest first, keeping only the most recent three.
	for i, want := range []string{"b", "c", "d"} {
		if turns[i].Content != want {
			t.Errorf("turn[%d] = %q, want %q", i, turns[i].Content, want)
		}
	}
}

func TestInMemoryStoreIsolatesConversations(t *testing.T) {
	ctx := context.Background()
	store := chat.NewInMemoryStore()

	if _, err := store.AppendTurn(ctx, "c1", core.RoleUser, "only in c1"); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}

	turns, err := store.RecentTurns(ctx, "c2", 10)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("RecentTurns for other conversation = %v, want empty", turns)
	}
}

func TestNewStoreDefaultsToInMemory(t *testing.T) {
	store, err := chat.NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*chat.InMemoryStore); !ok {
		t.Errorf("NewStore(\"\") = %T, want *chat.InMemoryStore", store)
	}
}
