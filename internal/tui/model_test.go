package tui

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/avolkv/headsup/internal/engine"
	"github.com/avolkv/headsup/internal/event"
	"github.com/avolkv/headsup/internal/gaze"
	"github.com/avolkv/headsup/internal/generator"
	"github.com/avolkv/headsup/internal/model"
	"github.com/avolkv/headsup/internal/penalty"
	"github.com/avolkv/headsup/internal/progress"
	"github.com/avolkv/headsup/internal/state"
	"github.com/avolkv/headsup/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	bus := event.NewBus()
	db, err := store.Open(filepath.Join(t.TempDir(), "headsup.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	states := state.New(nil)
	deps := Deps{
		Bus:        bus,
		States:     states,
		DB:         db,
		Engine:     engine.New(bus),
		Detector:   gaze.NewDetector(bus, nil, gaze.DefaultConfig()),
		Penalties:  penalty.New(bus, penalty.DefaultConfig()),
		Reconciler: progress.New(bus, states, db),
		Gen:        generator.NewSeeded(1),
		Words:      []string{"alpha", "beta", "gamma"},
		Practice:   model.PracticeConfig{Words: 3, PunctSet: "."},
		Settings:   model.DefaultSettings(),
	}
	return NewModel(deps)
}

func TestFooterShowsCooldownUntilEnded(t *testing.T) {
	m := newTestModel(t)
	m.cameraOn = true

	m.Update(busMsg{topic: event.TopicPenaltyApplied})
	if !strings.Contains(m.renderFooter(), "cooldown") {
		t.Fatalf("expected cooldown indicator after penalty, got %q", m.renderFooter())
	}

	m.Update(busMsg{topic: event.TopicCooldownEnded})
	if strings.Contains(m.renderFooter(), "cooldown") {
		t.Fatalf("expected cooldown indicator cleared, got %q", m.renderFooter())
	}
}

func TestFooterLookStateFollowsTransitions(t *testing.T) {
	m := newTestModel(t)
	m.cameraOn = true

	m.Update(busMsg{topic: event.TopicLookingDown})
	if !strings.Contains(m.renderFooter(), "LOOKING DOWN") {
		t.Fatalf("expected looking-down state in footer")
	}
	m.Update(busMsg{topic: event.TopicLookingUp})
	if !strings.Contains(m.renderFooter(), "eyes up") {
		t.Fatalf("expected eyes-up state in footer")
	}
}
