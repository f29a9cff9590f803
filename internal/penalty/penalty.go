// Package penalty turns look-down transitions into gated, cooled-down
// penalties.
package penalty

import (
	"sync"
	"time"

	"github.com/avolkv/headsup/internal/event"
)

// DefaultCooldown is the window during which repeat triggers are dropped.
const DefaultCooldown = 2 * time.Second

// Config tunes the penalty manager.
type Config struct {
	Enabled   bool
	Cooldown  time.Duration
	ShowFlash bool
	PlaySound bool

	// XPPenalty is parsed for compatibility with older configs and not
	// applied anywhere.
	XPPenalty int
}

// DefaultConfig returns the stock penalty settings.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Cooldown:  DefaultCooldown,
		ShowFlash: true,
		PlaySound: true,
	}
}

// Manager counts penalties for the current typing session. Triggers during
// cooldown are lost, not deferred.
type Manager struct {
	bus *event.Bus
	cfg Config
	now func() time.Time

	mu            sync.Mutex
	count         int
	cooldownUntil time.Time
	cooldownTimer *time.Timer
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// New returns a manager wired to the bus: look-down transitions trigger
// penalties, new exercise text and session resets zero the session.
func New(bus *event.Bus, cfg Config, opts ...Option) *Manager {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	m := &Manager{bus: bus, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	bus.On(event.TopicLookingDown, func(any) { m.Trigger() })
	bus.On(event.TopicTextSet, func(any) { m.Reset() })
	bus.On(event.TopicSessionReset, func(any) { m.Reset() })
	return m
}

// Trigger attempts to apply one penalty. Returns false, with no side
// effects, when penalties are disabled or a cooldown is active.
func (m *Manager) Trigger() bool {
	m.mu.Lock()
	if !m.cfg.Enabled {
		m.mu.Unlock()
		return false
	}
	now := m.now()
	if now.Before(m.cooldownUntil) {
		m.mu.Unlock()
		return false
	}
	m.count++
	count := m.count
	m.cooldownUntil = now.Add(m.cfg.Cooldown)
	if m.cooldownTimer != nil {
		m.cooldownTimer.Stop()
	}
	m.cooldownTimer = time.AfterFunc(m.cfg.Cooldown, func() {
		m.bus.Emit(event.TopicCooldownEnded, nil)
	})
	flash := m.cfg.ShowFlash
	sound := m.cfg.PlaySound
	m.mu.Unlock()

	m.bus.Emit(event.TopicPenaltyApplied, event.PenaltyPayload{Count: count, At: now})
	if flash {
		m.bus.Emit(event.TopicPenaltyFlash, nil)
	}
	if sound {
		m.bus.Emit(event.TopicPenaltySound, nil)
	}
	return true
}

// Reset zeroes the penalty counter and cancels any cooldown. Called at the
// start of each typing session.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count = 0
	m.cooldownUntil = time.Time{}
	if m.cooldownTimer != nil {
		m.cooldownTimer.Stop()
		m.cooldownTimer = nil
	}
}

// Count returns the penalties applied this session.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// OnCooldown reports whether a cooldown window is active.
func (m *Manager) OnCooldown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now().Before(m.cooldownUntil)
}

// IsPerfect reports whether the session has zero penalties so far.
func (m *Manager) IsPerfect() bool {
	return m.Count() == 0
}

// SetEnabled toggles the global penalty gate.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Enabled = enabled
}
