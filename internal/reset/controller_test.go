package reset

import (
	"context"
	"testing"

	"github.com/1jammer1/OS-discord-bot/internal/session"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.NewStore(session.NewMemoryKV(), session.StoreConfig{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestReset_NonAdminDeniedStoreUntouched(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Append(ctx, "chan-1", "precious history", session.RoleUser)

	controller := NewController(store, "42", nil)
	outcome, err := controller.Reset(ctx, "chan-1", "7", "My Guild")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if outcome != OutcomeDenied {
		t.Fatalf("outcome = %v, want denied", outcome)
	}

	turns := store.Load(ctx, "chan-1")
	if len(turns) != 1 || turns[0].Content != "precious history" {
		t.Errorf("store must be untouched on denial, got %+v", turns)
	}
}

func TestReset_AdminFlushesAndSeeds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Append(ctx, "chan-1", "old user turn", session.RoleUser)
	store.Append(ctx, "chan-1", "old assistant turn", session.RoleAssistant)

	controller := NewController(store, "42", nil)
	outcome, err := controller.Reset(ctx, "chan-1", "42", "My Guild")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if outcome != OutcomeReset {
		t.Fatalf("outcome = %v, want reset", outcome)
	}

	turns := store.Load(ctx, "chan-1")
	if len(turns) != 1 {
		t.Fatalf("expected exactly the seed turn, got %d turns", len(turns))
	}
	if turns[0].Role != session.RoleAssistant {
		t.Errorf("seed role = %q", turns[0].Role)
	}
	if turns[0].Content != "*You joined the chat! - You joined My Guild.*" {
		t.Errorf("seed content = %q", turns[0].Content)
	}
}

func TestReset_NoAdminConfiguredAllowsAnyone(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	controller := NewController(store, "", nil)
	outcome, err := controller.Reset(ctx, "chan-1", "anyone", "")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if outcome != OutcomeReset {
		t.Fatalf("outcome = %v, want reset", outcome)
	}

	turns := store.Load(ctx, "chan-1")
	if len(turns) != 1 || turns[0].Content != "*You joined the chat! - You joined this chat.*" {
		t.Errorf("seed = %+v", turns)
	}
}
