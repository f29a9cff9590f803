package event

import "testing"

func TestEmitRegistrationOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	bus.On(TopicKeystroke, func(any) { order = append(order, 1) })
	bus.On(TopicKeystroke, func(any) { order = append(order, 2) })
	bus.On(TopicKeystroke, func(any) { order = append(order, 3) })

	bus.Emit(TopicKeystroke, nil)
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("expected handlers in registration order, got %v", order)
	}
}

func TestPanickingHandlerIsIsolated(t *testing.T) {
	logged := false
	bus := NewBus(WithLogger(func(string, ...any) { logged = true }))
	ran := false
	bus.On(TopicKeystroke, func(any) { panic("boom") })
	bus.On(TopicKeystroke, func(any) { ran = true })

	bus.Emit(TopicKeystroke, nil)
	if !ran {
		t.Fatalf("expected sibling handler to run after panic")
	}
	if !logged {
		t.Fatalf("expected panic to be logged")
	}
}

func TestOnceFiresExactlyOnce(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Once(TopicLookingDown, func(any) { calls++ })

	bus.Emit(TopicLookingDown, nil)
	bus.Emit(TopicLookingDown, nil)
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if n := bus.ListenerCount(TopicLookingDown); n != 0 {
		t.Fatalf("expected once subscriber removed, have %d", n)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	off := bus.On(TopicStatsUpdated, func(any) { calls++ })

	bus.Emit(TopicStatsUpdated, nil)
	off()
	off()
	bus.Emit(TopicStatsUpdated, nil)
	if calls != 1 {
		t.Fatalf("expected 1 call after unsubscribe, got %d", calls)
	}
}

func TestPayloadSnapshotSharedAcrossHandlers(t *testing.T) {
	bus := NewBus()
	var seen []any
	bus.On(TopicKeystroke, func(p any) { seen = append(seen, p) })
	bus.On(TopicKeystroke, func(p any) { seen = append(seen, p) })

	payload := KeystrokePayload{Correct: true, Char: 'a', Expected: 'a'}
	bus.Emit(TopicKeystroke, payload)
	if len(seen) != 2 || seen[0] != seen[1] {
		t.Fatalf("expected both handlers to observe the same payload")
	}
}

func TestOffRemovesAllForTopic(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.On(TopicPenaltyApplied, func(any) { calls++ })
	bus.On(TopicPenaltyApplied, func(any) { calls++ })
	bus.On(TopicPenaltyFlash, func(any) { calls++ })

	bus.Off(TopicPenaltyApplied)
	bus.Emit(TopicPenaltyApplied, nil)
	bus.Emit(TopicPenaltyFlash, nil)
	if calls != 1 {
		t.Fatalf("expected only the flash handler to run, got %d calls", calls)
	}
}

func TestRemoveAllListeners(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.On(TopicXPGained, func(any) { calls++ })
	bus.On(TopicLevelUp, func(any) { calls++ })

	bus.RemoveAllListeners()
	bus.Emit(TopicXPGained, nil)
	bus.Emit(TopicLevelUp, nil)
	if calls != 0 {
		t.Fatalf("expected no calls after RemoveAllListeners, got %d", calls)
	}
}

func TestSubscriberAddedDuringEmitNotInvoked(t *testing.T) {
	bus := NewBus()
	lateCalls := 0
	bus.On(TopicTextSet, func(any) {
		bus.On(TopicTextSet, func(any) { lateCalls++ })
	})

	bus.Emit(TopicTextSet, nil)
	if lateCalls != 0 {
		t.Fatalf("expected late subscriber to miss the in-flight emit")
	}
	bus.Emit(TopicTextSet, nil)
	if lateCalls != 1 {
		t.Fatalf("expected late subscriber to receive the next emit, got %d", lateCalls)
	}
}
