// Package engine implements the typing statistics engine.
//
// The engine owns the ephemeral typing session: reference text, typed text,
// correctness counters, and timing. It publishes keystroke results and stats
// snapshots on the bus and never writes progress state itself.
package engine

import (
	"math"
	"time"

	"github.com/avolkv/headsup/internal/event"
	"github.com/avolkv/headsup/internal/model"
)

// CharState classifies one reference character against the typed text.
type CharState int

const (
	// StatePending marks characters not yet reached.
	StatePending CharState = iota

	// StateCurrent marks the character at the cursor.
	StateCurrent

	// StateCorrect marks a correctly typed character.
	StateCorrect

	// StateIncorrect marks a mistyped character.
	StateIncorrect
)

// CharacterState pairs a reference character with its display state.
type CharacterState struct {
	Char  rune
	State CharState
}

// Stats is a snapshot of the session's derived metrics.
type Stats struct {
	WPM             int
	Accuracy        int
	Errors          int
	CorrectChars    int
	TotalChars      int
	ProgressPercent int
	ElapsedSeconds  float64
	Complete        bool
}

// Result reports the outcome of one ProcessInput call.
type Result struct {
	Appended bool
	Correct  bool
	Char     rune
	Expected rune
	Stats    Stats
}

type charStat struct {
	correct      int
	incorrect    int
	latencySumMs int64
	latencyCount int64
}

// Engine tracks a single typing session. Input is assumed to grow by one
// character per call; shrinking input only moves the typed pointer back.
type Engine struct {
	bus *event.Bus
	now func() time.Time

	reference []rune
	typed     []rune

	started   bool
	complete  bool
	startTime time.Time
	endTime   time.Time

	totalChars   int
	correctChars int
	errorCount   int

	prevCorrectAt time.Time
	charStats     map[rune]*charStat
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns an engine publishing on bus.
func New(bus *event.Bus, opts ...Option) *Engine {
	e := &Engine{
		bus:       bus,
		now:       time.Now,
		charStats: map[rune]*charStat{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetText resets the session with a new reference text. Empty text is a
// valid zero-length exercise.
func (e *Engine) SetText(text string) {
	e.reference = []rune(text)
	e.typed = nil
	e.started = false
	e.complete = false
	e.startTime = time.Time{}
	e.endTime = time.Time{}
	e.totalChars = 0
	e.correctChars = 0
	e.errorCount = 0
	e.prevCorrectAt = time.Time{}
	e.charStats = map[rune]*charStat{}
	e.bus.Emit(event.TopicTextSet, event.TextSetPayload{Text: text})
}

// Reset restarts the session with the current reference text.
func (e *Engine) Reset() {
	text := e.reference
	e.SetText(string(text))
	e.bus.Emit(event.TopicSessionReset, nil)
}

// ProcessInput consumes the full typed string after one input change. Only
// the newly appended character is compared; counters are never corrected
// retroactively when input shrinks.
func (e *Engine) ProcessInput(input string) Result {
	if e.complete {
		return Result{Stats: e.Stats()}
	}
	runes := []rune(input)
	if len(runes) > len(e.reference) {
		runes = runes[:len(e.reference)]
	}

	res := Result{}
	switch {
	case len(runes) > len(e.typed):
		if !e.started && len(runes) > 0 {
			e.started = true
			e.startTime = e.now()
			e.bus.Emit(event.TopicSessionStarted, nil)
		}
		pos := len(runes) - 1
		typed := runes[pos]
		expected := e.reference[pos]
		e.typed = runes
		e.record(expected, typed)
		res = Result{
			Appended: true,
			Correct:  typed == expected,
			Char:     typed,
			Expected: expected,
		}
		e.bus.Emit(event.TopicKeystroke, event.KeystrokePayload{
			Correct:  res.Correct,
			Char:     typed,
			Expected: expected,
			Position: pos,
		})
	case len(runes) < len(e.typed):
		// Backspace: pointer moves back, stats stand.
		e.typed = runes
	default:
		e.typed = runes
	}

	if len(e.typed) >= len(e.reference) && (e.started || len(e.reference) == 0) {
		e.Complete()
	}
	res.Stats = e.Stats()
	e.bus.Emit(event.TopicStatsUpdated, statsPayload(res.Stats))
	return res
}

func (e *Engine) record(expected, typed rune) {
	e.totalChars++
	entry := e.charEntry(expected)
	if typed == expected {
		e.correctChars++
		entry.correct++
		now := e.now()
		if !e.prevCorrectAt.IsZero() {
			entry.latencySumMs += now.Sub(e.prevCorrectAt).Milliseconds()
			entry.latencyCount++
		}
		e.prevCorrectAt = now
		return
	}
	e.errorCount++
	entry.incorrect++
}

func (e *Engine) charEntry(expected rune) *charStat {
	entry, ok := e.charStats[expected]
	if !ok {
		entry = &charStat{}
		e.charStats[expected] = entry
	}
	return entry
}

// Complete finishes the session. Repeat calls are no-ops; the end time is
// stamped exactly once.
func (e *Engine) Complete() {
	if e.complete {
		return
	}
	e.complete = true
	e.endTime = e.now()
	var durationMs int64
	if e.started {
		durationMs = e.endTime.Sub(e.startTime).Milliseconds()
	}
	stats := e.Stats()
	e.bus.Emit(event.TopicSessionCompleted, event.SessionCompletedPayload{
		Stats:      statsPayload(stats),
		StartedAt:  e.startTime,
		EndedAt:    e.endTime,
		CharStats:  e.charStatPayloads(),
		DurationMs: durationMs,
	})
}

func (e *Engine) charStatPayloads() []event.CharStatPayload {
	out := make([]event.CharStatPayload, 0, len(e.charStats))
	for ch, entry := range e.charStats {
		out = append(out, event.CharStatPayload{
			Char:         string(ch),
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}
	return out
}

// Stats derives the current metrics snapshot.
func (e *Engine) Stats() Stats {
	stats := Stats{
		Errors:       e.errorCount,
		CorrectChars: e.correctChars,
		TotalChars:   e.totalChars,
		Accuracy:     100,
		Complete:     e.complete,
	}
	if e.totalChars > 0 {
		stats.Accuracy = int(math.Round(float64(e.correctChars) / float64(e.totalChars) * 100))
	}
	if len(e.reference) > 0 {
		stats.ProgressPercent = int(math.Round(float64(len(e.typed)) / float64(len(e.reference)) * 100))
	} else if e.complete {
		stats.ProgressPercent = 100
	}
	if e.started {
		end := e.now()
		if e.complete {
			end = e.endTime
		}
		elapsed := end.Sub(e.startTime)
		stats.ElapsedSeconds = elapsed.Seconds()
		minutes := elapsed.Minutes()
		if minutes > 0 {
			stats.WPM = int(math.Round((float64(e.correctChars) / 5.0) / minutes))
		}
	}
	return stats
}

// CharacterStates projects display states purely from the reference and the
// typed text. The projection is idempotent and always agrees with the
// incremental counters.
func (e *Engine) CharacterStates() []CharacterState {
	out := make([]CharacterState, len(e.reference))
	for i, ch := range e.reference {
		st := StatePending
		switch {
		case i < len(e.typed):
			if e.typed[i] == ch {
				st = StateCorrect
			} else {
				st = StateIncorrect
			}
		case i == len(e.typed):
			st = StateCurrent
		}
		out[i] = CharacterState{Char: ch, State: st}
	}
	return out
}

// CharStats copies the per-character aggregates for the session.
func (e *Engine) CharStats() []model.CharStats {
	out := make([]model.CharStats, 0, len(e.charStats))
	for ch, entry := range e.charStats {
		out = append(out, model.CharStats{
			Char:         string(ch),
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}
	return out
}

// IsComplete reports whether the session has finished.
func (e *Engine) IsComplete() bool {
	return e.complete
}

// Reference returns the current exercise text.
func (e *Engine) Reference() string {
	return string(e.reference)
}

// Typed returns the typed text so far.
func (e *Engine) Typed() string {
	return string(e.typed)
}

func statsPayload(s Stats) event.StatsPayload {
	return event.StatsPayload{
		WPM:             s.WPM,
		Accuracy:        s.Accuracy,
		Errors:          s.Errors,
		CorrectChars:    s.CorrectChars,
		TotalChars:      s.TotalChars,
		ProgressPercent: s.ProgressPercent,
		ElapsedSeconds:  s.ElapsedSeconds,
		Complete:        s.Complete,
	}
}
