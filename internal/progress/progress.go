// Package progress reconciles completed sessions into XP, levels, streaks,
// and achievements.
//
// The reconciler is the sole writer of the "progress.*" paths in the state
// store. It listens to bus events only, never holding references to the
// engine or the penalty manager, and persists the progress record plus a
// history entry after every completed session. Bus handlers may fire from
// sensor playback or tea.Cmd goroutines, so all reconciler state sits behind
// a mutex; events are emitted after the lock is released.
package progress

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/avolkv/headsup/internal/event"
	"github.com/avolkv/headsup/internal/model"
	"github.com/avolkv/headsup/internal/state"
	"github.com/avolkv/headsup/internal/store"
)

// perfectMultiplier applies when camera tracking is on and the session had
// zero penalties.
const perfectMultiplier = 1.5

const dayFormat = "2006-01-02"

// Reconciler owns the persistent Progress record.
type Reconciler struct {
	bus          *event.Bus
	states       *state.Store
	db           *store.Store
	achievements []Achievement
	logf         func(format string, args ...any)

	mu       sync.Mutex
	progress model.Progress

	// Per-session inputs gathered from bus events.
	sessionPenalties int
	cameraEnabled    bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithAchievements replaces the built-in achievement set.
func WithAchievements(list []Achievement) Option {
	return func(r *Reconciler) {
		r.achievements = list
	}
}

// New loads the persisted progress, publishes it into the state store, and
// subscribes to the session lifecycle.
func New(bus *event.Bus, states *state.Store, db *store.Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		bus:          bus,
		states:       states,
		db:           db,
		achievements: DefaultAchievements(),
		logf: func(format string, args ...any) {
			if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
				// Best-effort logging to stderr.
				_ = err
			}
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.progress = db.LoadProgress(context.Background())
	r.publish(r.progress)

	bus.On(event.TopicPenaltyApplied, func(any) {
		r.mu.Lock()
		r.sessionPenalties++
		r.mu.Unlock()
	})
	bus.On(event.TopicTextSet, func(any) { r.resetSession() })
	bus.On(event.TopicSessionReset, func(any) { r.resetSession() })
	bus.On(event.TopicCameraState, func(p any) {
		if cs, ok := p.(event.CameraStatePayload); ok {
			r.mu.Lock()
			r.cameraEnabled = cs.Enabled
			r.mu.Unlock()
		}
	})
	bus.On(event.TopicSessionCompleted, func(p any) {
		if done, ok := p.(event.SessionCompletedPayload); ok {
			r.Apply(done)
		}
	})
	return r
}

func (r *Reconciler) resetSession() {
	r.mu.Lock()
	r.sessionPenalties = 0
	r.mu.Unlock()
}

// Progress returns a copy of the current record.
func (r *Reconciler) Progress() model.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.progress
	p.Unlocked = append([]string(nil), r.progress.Unlocked...)
	return p
}

// SessionXP computes the XP award for a session.
func SessionXP(wpm, accuracy int, perfect bool) int {
	xp := float64(wpm) * (float64(accuracy) / 100) * 2
	if perfect {
		xp *= perfectMultiplier
	}
	return int(math.Round(xp))
}

// Apply folds one completed session into progress. Empty sessions (nothing
// typed) are ignored. State mutation happens under the lock; the resulting
// events fire after it is released so handlers can call back into the
// reconciler.
func (r *Reconciler) Apply(done event.SessionCompletedPayload) {
	if done.Stats.TotalChars == 0 {
		return
	}

	r.mu.Lock()
	perfect := r.cameraEnabled && r.sessionPenalties == 0
	xp := SessionXP(done.Stats.WPM, done.Stats.Accuracy, perfect)

	r.progress.SessionsCompleted++
	r.progress.TotalCorrectChars += done.Stats.CorrectChars
	r.progress.TotalXP += xp
	r.progress.XP += xp
	if perfect {
		r.progress.PerfectSessions++
	}
	r.updateStreak(done.EndedAt)

	leveled := false
	for r.progress.XP >= r.progress.Level*100 {
		// Carry the remainder forward, never reset to zero.
		r.progress.XP -= r.progress.Level * 100
		r.progress.Level++
		leveled = true
	}

	newBest := false
	if done.Stats.WPM > r.progress.BestWPM {
		r.progress.BestWPM = done.Stats.WPM
		newBest = true
	}

	unlocked := r.evaluateAchievements()
	snapshot := r.progress
	snapshot.Unlocked = append([]string(nil), r.progress.Unlocked...)
	penalties := r.sessionPenalties
	r.mu.Unlock()

	if newBest {
		r.bus.Emit(event.TopicBestWPM, done.Stats.WPM)
	}
	r.bus.Emit(event.TopicXPGained, event.XPPayload{
		Amount:  xp,
		Perfect: perfect,
		Total:   snapshot.TotalXP,
	})
	if leveled {
		r.bus.Emit(event.TopicLevelUp, event.LevelUpPayload{
			Level: snapshot.Level,
			XP:    snapshot.XP,
		})
	}
	for _, a := range unlocked {
		r.bus.Emit(event.TopicAchievementUnlocked, event.AchievementPayload{
			ID:   a.ID,
			Name: a.Name,
		})
	}

	r.publish(snapshot)
	r.persist(done, snapshot, xp, penalties)
}

// updateStreak is called with the lock held.
func (r *Reconciler) updateStreak(endedAt time.Time) {
	day := endedAt.Format(dayFormat)
	switch r.progress.LastPracticeDay {
	case day:
		// Same day, streak unchanged.
	case endedAt.AddDate(0, 0, -1).Format(dayFormat):
		r.progress.Streak++
	default:
		r.progress.Streak = 1
	}
	r.progress.LastPracticeDay = day
}

// evaluateAchievements unlocks every achievement whose predicate newly
// holds and returns them. Re-checking an unlocked achievement is a no-op.
// Called with the lock held.
func (r *Reconciler) evaluateAchievements() []Achievement {
	var out []Achievement
	for _, a := range r.achievements {
		if r.progress.HasUnlocked(a.ID) {
			continue
		}
		if !a.Predicate(r.progress) {
			continue
		}
		r.progress.Unlocked = append(r.progress.Unlocked, a.ID)
		out = append(out, a)
	}
	return out
}

// publish mirrors the record into the state store. Equal values stay
// silent, so this never causes notification storms.
func (r *Reconciler) publish(p model.Progress) {
	r.states.Update(map[string]any{
		"progress.totalXP":           p.TotalXP,
		"progress.xp":                p.XP,
		"progress.level":             p.Level,
		"progress.bestWPM":           p.BestWPM,
		"progress.streak":            p.Streak,
		"progress.sessionsCompleted": p.SessionsCompleted,
		"progress.unlocked":          p.Unlocked,
	})
}

func (r *Reconciler) persist(done event.SessionCompletedPayload, p model.Progress, xp, penalties int) {
	ctx := context.Background()
	if err := r.db.SaveProgress(ctx, p); err != nil {
		r.logf("progress: save failed: %v\n", err)
	}
	entry := model.HistoryEntry{
		EndedAt:    done.EndedAt,
		WPM:        done.Stats.WPM,
		Accuracy:   done.Stats.Accuracy,
		Errors:     done.Stats.Errors,
		Penalties:  penalties,
		DurationMs: done.DurationMs,
		XP:         xp,
	}
	chars := make([]model.CharStats, 0, len(done.CharStats))
	for _, cs := range done.CharStats {
		chars = append(chars, model.CharStats{
			Char:         cs.Char,
			Correct:      cs.Correct,
			Incorrect:    cs.Incorrect,
			LatencySumMs: cs.LatencySumMs,
			LatencyCount: cs.LatencyCount,
		})
	}
	if _, err := r.db.AppendHistory(ctx, entry, chars); err != nil {
		r.logf("progress: history append failed: %v\n", err)
	}
}
