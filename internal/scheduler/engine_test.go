package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestEngineEmitsInDueOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	if err := engine.Schedule(PollEvent{Kind: KindChat, ThreadID: 2, DueAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(PollEvent{Kind: KindTicket, ThreadID: 1, DueAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.ThreadID != 1 || second.ThreadID != 2 {
		t.Fatalf("unexpected order: first=%d second=%d", first.ThreadID, second.ThreadID)
	}
	if first.Kind != KindTicket {
		t.Fatalf("unexpected kind %q", first.Kind)
	}
}

func TestEngineSameDueTimeKeepsScheduleOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	due := time.Now().UTC().Add(20 * time.Millisecond)
	for id := int64(1); id <= 3; id++ {
		if err := engine.Schedule(PollEvent{Kind: KindChat, ThreadID: id, DueAt: due}); err != nil {
			t.Fatalf("schedule %d: %v", id, err)
		}
	}
	for want := int64(1); want <= 3; want++ {
		if got := waitEvent(t, engine.C(), time.Second); got.ThreadID != want {
			t.Fatalf("expected thread %d, got %d", want, got.ThreadID)
		}
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	due := time.Now().UTC().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(PollEvent{Kind: KindChat, ThreadID: int64(i), DueAt: due}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}
}

func TestCancelRemovesQueuedThreadEvents(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	if err := engine.After(30*time.Millisecond, PollEvent{Kind: KindChat, ThreadID: 5}); err != nil {
		t.Fatalf("schedule chat: %v", err)
	}
	if err := engine.After(40*time.Millisecond, PollEvent{Kind: KindTicket, ThreadID: 5}); err != nil {
		t.Fatalf("schedule ticket: %v", err)
	}
	if removed := engine.Cancel(KindChat, 5); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if engine.Pending() != 1 {
		t.Fatalf("expected 1 pending, got %d", engine.Pending())
	}
	if ev := waitEvent(t, engine.C(), time.Second); ev.Kind != KindTicket {
		t.Fatalf("expected ticket event, got %q", ev.Kind)
	}
}

func TestScheduleValidatesDueTime(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(PollEvent{ThreadID: 1}); !errors.Is(err, ErrInvalidDueTime) {
		t.Fatalf("expected ErrInvalidDueTime, got %v", err)
	}
	engine.Stop()
	if err := engine.After(time.Second, PollEvent{ThreadID: 1}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func waitEvent(t *testing.T, ch <-chan PollEvent, timeout time.Duration) PollEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return PollEvent{}
	}
}
