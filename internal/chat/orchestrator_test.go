package chat

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/1jammer1/OS-discord-bot/internal/llm"
	"github.com/1jammer1/OS-discord-bot/internal/observability"
	"github.com/1jammer1/OS-discord-bot/internal/session"
)

// scriptedBackend returns a fixed result and records what it was sent.
type scriptedBackend struct {
	text     string
	err      error
	gotTurns []session.Turn
	calls    int
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) Complete(_ context.Context, turns []session.Turn, _ llm.Options) (string, error) {
	b.calls++
	b.gotTurns = turns
	return b.text, b.err
}

func newTestOrchestrator(t *testing.T, backend llm.Backend) (*Orchestrator, *session.Store) {
	t.Helper()
	store, err := session.NewStore(session.NewMemoryKV(), session.StoreConfig{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	orch, err := New(Config{Store: store, Backend: backend, Options: llm.Options{Model: "m", ContextTokens: 4096}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return orch, store
}

func TestOrchestrator_SuccessAppendsOneAssistantTurn(t *testing.T) {
	backend := &scriptedBackend{text: "a fine answer"}
	orch, store := newTestOrchestrator(t, backend)
	ctx := context.Background()

	store.Append(ctx, "chan-1", "a fine question", session.RoleUser)

	reply := orch.Respond(ctx, "chan-1")
	if reply != "a fine answer" {
		t.Fatalf("reply = %q", reply)
	}

	turns := store.Load(ctx, "chan-1")
	if len(turns) != 2 {
		t.Fatalf("expected 2 stored turns, got %d", len(turns))
	}
	if turns[1].Role != session.RoleAssistant || turns[1].Content != "a fine answer" {
		t.Errorf("assistant turn = %+v", turns[1])
	}
}

func TestOrchestrator_BackendFailureReturnsFallbackAppendsNothing(t *testing.T) {
	backend := &scriptedBackend{err: errors.New("connection refused")}
	orch, store := newTestOrchestrator(t, backend)
	ctx := context.Background()

	store.Append(ctx, "chan-1", "hello?", session.RoleUser)

	reply := orch.Respond(ctx, "chan-1")
	if reply != FallbackReply {
		t.Fatalf("reply = %q, want fallback", reply)
	}

	if turns := store.Load(ctx, "chan-1"); len(turns) != 1 {
		t.Errorf("no assistant turn may be appended on failure, got %d turns", len(turns))
	}
}

func TestOrchestrator_EmptyCompletionReturnsFallback(t *testing.T) {
	backend := &scriptedBackend{text: "   "}
	orch, store := newTestOrchestrator(t, backend)
	ctx := context.Background()

	store.Append(ctx, "chan-1", "hello?", session.RoleUser)

	if reply := orch.Respond(ctx, "chan-1"); reply != FallbackReply {
		t.Fatalf("reply = %q, want fallback", reply)
	}
	if turns := store.Load(ctx, "chan-1"); len(turns) != 1 {
		t.Errorf("empty completion must not be persisted, got %d turns", len(turns))
	}
}

func TestOrchestrator_TrimsHistoryToContextBudget(t *testing.T) {
	backend := &scriptedBackend{text: "ok"}
	store, err := session.NewStore(session.NewMemoryKV(), session.StoreConfig{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	// Tiny context: 32 tokens ~= 128 serialized bytes.
	orch, err := New(Config{Store: store, Backend: backend, Options: llm.Options{Model: "m", ContextTokens: 32}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		store.Append(ctx, "chan-1", strings.Repeat("x", 50), session.RoleUser)
	}

	orch.Respond(ctx, "chan-1")

	if len(backend.gotTurns) >= 20 {
		t.Fatalf("history was not trimmed: backend saw %d turns", len(backend.gotTurns))
	}
	// The trimmed history must be the most recent suffix.
	all := store.Load(ctx, "chan-1")
	// Respond appended one assistant turn; ignore it.
	all = all[:len(all)-1]
	offset := len(all) - len(backend.gotTurns)
	for i, turn := range backend.gotTurns {
		if turn != all[offset+i] {
			t.Fatalf("backend input is not a suffix of stored history")
		}
	}
}

func TestOrchestrator_RecordsBackendMetrics(t *testing.T) {
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())
	store, err := session.NewStore(session.NewMemoryKV(), session.StoreConfig{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx := context.Background()
	store.Append(ctx, "chan-1", "hello?", session.RoleUser)

	backend := &scriptedBackend{text: "ok"}
	orch, err := New(Config{Store: store, Backend: backend, Options: llm.Options{Model: "m", ContextTokens: 4096}, Metrics: metrics})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	orch.Respond(ctx, "chan-1")

	if got := testutil.ToFloat64(metrics.BackendRequests.WithLabelValues("scripted", "success")); got != 1 {
		t.Errorf("success requests = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(metrics.BackendDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}

	failing := &scriptedBackend{err: errors.New("connection refused")}
	orch, err = New(Config{Store: store, Backend: failing, Options: llm.Options{Model: "m", ContextTokens: 4096}, Metrics: metrics})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	orch.Respond(ctx, "chan-1")

	if got := testutil.ToFloat64(metrics.BackendRequests.WithLabelValues("scripted", "error")); got != 1 {
		t.Errorf("error requests = %v, want 1", got)
	}
}

func TestLifecycle_GatesUntilReady(t *testing.T) {
	var lc Lifecycle

	if lc.Ready() {
		t.Fatal("lifecycle must start in Initializing")
	}
	lc.MarkReady()
	if !lc.Ready() {
		t.Fatal("lifecycle must be Ready after MarkReady")
	}
	lc.MarkReady() // idempotent
	if !lc.Ready() {
		t.Fatal("repeated MarkReady must not reset readiness")
	}
}

func TestSampler_DeterministicWithSeededSource(t *testing.T) {
	a := NewSampler(0.5, rand.NewSource(42))
	b := NewSampler(0.5, rand.NewSource(42))

	for i := 0; i < 100; i++ {
		if a.Hit() != b.Hit() {
			t.Fatalf("samplers with identical seeds diverged at draw %d", i)
		}
	}
}

func TestSampler_RateExtremes(t *testing.T) {
	never := NewSampler(0, rand.NewSource(1))
	always := NewSampler(1, rand.NewSource(1))

	for i := 0; i < 50; i++ {
		if never.Hit() {
			t.Fatal("rate 0 must never hit")
		}
		if !always.Hit() {
			t.Fatal("rate 1 must always hit")
		}
	}
}
