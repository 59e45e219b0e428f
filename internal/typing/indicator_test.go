package typing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestIndicator_TriggersImmediately(t *testing.T) {
	var calls atomic.Int64
	ind := NewIndicator(func() error {
		calls.Add(1)
		return nil
	}, time.Hour, nil)

	ind.Start(context.Background())
	defer ind.Stop()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one immediate trigger, got %d", got)
	}
}

func TestIndicator_RefreshesOnInterval(t *testing.T) {
	var calls atomic.Int64
	ind := NewIndicator(func() error {
		calls.Add(1)
		return nil
	}, 5*time.Millisecond, nil)

	ind.Start(context.Background())
	time.Sleep(40 * time.Millisecond)
	ind.Stop()

	if got := calls.Load(); got < 3 {
		t.Fatalf("expected several refreshes, got %d", got)
	}
}

func TestIndicator_StopEndsRefreshing(t *testing.T) {
	var calls atomic.Int64
	ind := NewIndicator(func() error {
		calls.Add(1)
		return nil
	}, 5*time.Millisecond, nil)

	ind.Start(context.Background())
	ind.Stop()
	at := calls.Load()

	time.Sleep(30 * time.Millisecond)
	if calls.Load() != at {
		t.Fatal("indicator kept triggering after Stop")
	}
}

func TestIndicator_StopIsIdempotent(t *testing.T) {
	ind := NewIndicator(func() error { return nil }, time.Hour, nil)
	ind.Start(context.Background())
	ind.Stop()
	ind.Stop()
}

func TestIndicator_ContextCancelStopsLoop(t *testing.T) {
	var calls atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	ind := NewIndicator(func() error {
		calls.Add(1)
		return nil
	}, 5*time.Millisecond, nil)

	ind.Start(ctx)
	cancel()
	time.Sleep(15 * time.Millisecond)
	at := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if calls.Load() != at {
		t.Fatal("indicator kept triggering after context cancellation")
	}
	ind.Stop()
}

func TestIndicator_TriggerErrorDoesNotStopLoop(t *testing.T) {
	var calls atomic.Int64
	ind := NewIndicator(func() error {
		calls.Add(1)
		return errors.New("gateway hiccup")
	}, 5*time.Millisecond, nil)

	ind.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	ind.Stop()

	if got := calls.Load(); got < 3 {
		t.Fatalf("errors must not stop the loop, got %d calls", got)
	}
}
