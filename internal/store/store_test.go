package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/avolkv/headsup/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "headsup.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestProgressRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	p := model.DefaultProgress()
	p.TotalXP = 250
	p.XP = 50
	p.Level = 3
	p.BestWPM = 72
	p.Unlocked = []string{"speed-60"}
	if err := st.SaveProgress(ctx, p); err != nil {
		t.Fatalf("save progress: %v", err)
	}

	got := st.LoadProgress(ctx)
	if got.TotalXP != 250 || got.Level != 3 || got.BestWPM != 72 {
		t.Fatalf("unexpected progress: %+v", got)
	}
	if !got.HasUnlocked("speed-60") {
		t.Fatalf("expected achievement retained")
	}
}

func TestLoadProgressDefaultsWhenEmpty(t *testing.T) {
	st := openTestStore(t)
	got := st.LoadProgress(context.Background())
	if got.Level != 1 || got.XP != 0 {
		t.Fatalf("expected default progress, got %+v", got)
	}
}

func TestMalformedBlobFallsBackToDefaults(t *testing.T) {
	st := openTestStore(t)
	st.logf = func(string, ...any) {}
	ctx := context.Background()

	if _, err := st.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)`, keyProgress, `{"level": "not a number`); err != nil {
		t.Fatalf("seed malformed blob: %v", err)
	}
	got := st.LoadProgress(ctx)
	if got.Level != 1 {
		t.Fatalf("expected defaults on malformed blob, got %+v", got)
	}
}

func TestPartialRecordKeepsDefaults(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	// Only one field present; the rest must keep defaults.
	if _, err := st.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)`, keySettings, `{"soundEnabled": false}`); err != nil {
		t.Fatalf("seed partial blob: %v", err)
	}
	got := st.LoadSettings(ctx)
	if got.SoundEnabled {
		t.Fatalf("expected stored soundEnabled=false")
	}
	if !got.FlashEnabled || !got.KeyboardVisible {
		t.Fatalf("expected remaining fields defaulted, got %+v", got)
	}
	if got.CurrentMode != "words" {
		t.Fatalf("expected default mode, got %q", got.CurrentMode)
	}
}

func TestHistoryCapAndOrder(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Unix(0, 0)
	for i := 0; i < historyCap+10; i++ {
		entry := model.HistoryEntry{
			EndedAt:    base.Add(time.Duration(i) * time.Minute),
			WPM:        i,
			Accuracy:   95,
			DurationMs: 30000,
		}
		chars := []model.CharStats{{Char: "a", Correct: 5}}
		if _, err := st.AppendHistory(ctx, entry, chars); err != nil {
			t.Fatalf("append history %d: %v", i, err)
		}
	}

	entries, err := st.ListHistory(ctx, 0)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != historyCap {
		t.Fatalf("expected history capped at %d, got %d", historyCap, len(entries))
	}
	if entries[0].WPM != historyCap+9 {
		t.Fatalf("expected most-recent-first, got WPM %d first", entries[0].WPM)
	}
	if entries[len(entries)-1].WPM != 10 {
		t.Fatalf("expected oldest retained entry WPM 10, got %d", entries[len(entries)-1].WPM)
	}

	aggs, err := st.CharAggregates(ctx)
	if err != nil {
		t.Fatalf("char aggregates: %v", err)
	}
	if len(aggs) != 1 || aggs[0].Correct != historyCap*5 {
		t.Fatalf("expected pruned char stats to follow history, got %+v", aggs)
	}
}

func TestListHistoryLimit(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		entry := model.HistoryEntry{EndedAt: time.Unix(int64(i), 0), WPM: 40}
		if _, err := st.AppendHistory(ctx, entry, nil); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	entries, err := st.ListHistory(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}
