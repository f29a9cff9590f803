package penalty

import (
	"testing"
	"time"

	"github.com/avolkv/headsup/internal/event"
)

type fakeClock struct {
	at time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{at: time.Unix(1000, 0)}
}

func (c *fakeClock) now() time.Time {
	return c.at
}

func (c *fakeClock) advance(d time.Duration) {
	c.at = c.at.Add(d)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Cooldown = 2 * time.Second
	return cfg
}

func TestCooldownDropsSecondTrigger(t *testing.T) {
	clock := newFakeClock()
	m := New(event.NewBus(), testConfig(), WithClock(clock.now))

	if !m.Trigger() {
		t.Fatalf("expected first trigger accepted")
	}
	clock.advance(500 * time.Millisecond)
	if m.Trigger() {
		t.Fatalf("expected trigger dropped during cooldown")
	}
	if m.Count() != 1 {
		t.Fatalf("expected exactly 1 penalty, got %d", m.Count())
	}

	clock.advance(2 * time.Second)
	if !m.Trigger() {
		t.Fatalf("expected trigger accepted after cooldown")
	}
	if m.Count() != 2 {
		t.Fatalf("expected 2 penalties, got %d", m.Count())
	}
}

func TestDisabledDropsTriggers(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	m := New(event.NewBus(), cfg)

	if m.Trigger() {
		t.Fatalf("expected trigger dropped while disabled")
	}
	if !m.IsPerfect() {
		t.Fatalf("expected perfect session")
	}
}

func TestLookDownEventTriggersPenalty(t *testing.T) {
	bus := event.NewBus()
	var applied []event.PenaltyPayload
	bus.On(event.TopicPenaltyApplied, func(p any) {
		applied = append(applied, p.(event.PenaltyPayload))
	})

	m := New(bus, testConfig())
	bus.Emit(event.TopicLookingDown, event.LookPayload{})
	if len(applied) != 1 || applied[0].Count != 1 {
		t.Fatalf("expected one applied penalty, got %+v", applied)
	}
	if m.IsPerfect() {
		t.Fatalf("expected imperfect session after penalty")
	}
}

func TestSideEffectGates(t *testing.T) {
	bus := event.NewBus()
	flashes, sounds := 0, 0
	bus.On(event.TopicPenaltyFlash, func(any) { flashes++ })
	bus.On(event.TopicPenaltySound, func(any) { sounds++ })

	cfg := testConfig()
	cfg.PlaySound = false
	m := New(bus, cfg)
	m.Trigger()
	if flashes != 1 {
		t.Fatalf("expected flash event, got %d", flashes)
	}
	if sounds != 0 {
		t.Fatalf("expected sound gated off, got %d", sounds)
	}
}

func TestResetClearsCountAndCooldown(t *testing.T) {
	clock := newFakeClock()
	m := New(event.NewBus(), testConfig(), WithClock(clock.now))
	m.Trigger()
	if !m.OnCooldown() {
		t.Fatalf("expected cooldown active after trigger")
	}

	m.Reset()
	if m.Count() != 0 {
		t.Fatalf("expected count zeroed, got %d", m.Count())
	}
	if m.OnCooldown() {
		t.Fatalf("expected cooldown cleared")
	}
	if !m.Trigger() {
		t.Fatalf("expected trigger accepted immediately after reset")
	}
}

func TestNewTextResetsSession(t *testing.T) {
	bus := event.NewBus()
	m := New(bus, testConfig())
	m.Trigger()

	bus.Emit(event.TopicTextSet, event.TextSetPayload{Text: "next"})
	if m.Count() != 0 {
		t.Fatalf("expected penalties reset on new text, got %d", m.Count())
	}
	if !m.IsPerfect() {
		t.Fatalf("expected perfect state after reset")
	}
}
