package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/avolkv/headsup/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	wpm, cpm, acc := SessionMetrics(25, 0, 60000)
	if wpm != 5 {
		t.Fatalf("expected 5 WPM, got %v", wpm)
	}
	if cpm != 25 {
		t.Fatalf("expected 25 CPM, got %v", cpm)
	}
	if acc != 1 {
		t.Fatalf("expected accuracy 1, got %v", acc)
	}
}

func TestSessionMetricsZeroDuration(t *testing.T) {
	wpm, cpm, acc := SessionMetrics(10, 2, 0)
	if wpm != 0 || cpm != 0 || acc != 0 {
		t.Fatalf("expected zero metrics on zero duration, got %v %v %v", wpm, cpm, acc)
	}
}

func TestMovingAverageWindow(t *testing.T) {
	out := MovingAverage([]float64{1, 2, 3, 4}, 2)
	if len(out) != 4 {
		t.Fatalf("expected 4 values, got %d", len(out))
	}
	if out[3] != 3.5 {
		t.Fatalf("expected trailing mean 3.5, got %v", out[3])
	}
}

func TestAggregate(t *testing.T) {
	life := Aggregate([]model.HistoryEntry{
		{WPM: 40, Accuracy: 90, Penalties: 1},
		{WPM: 60, Accuracy: 100, Penalties: 0},
	})
	if life.Sessions != 2 {
		t.Fatalf("expected 2 sessions, got %d", life.Sessions)
	}
	if life.BestWPM != 60 {
		t.Fatalf("expected best 60, got %d", life.BestWPM)
	}
	if life.AvgWPM != 50 {
		t.Fatalf("expected avg 50, got %v", life.AvgWPM)
	}
	if life.Penalties != 1 {
		t.Fatalf("expected 1 penalty, got %d", life.Penalties)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	progress := model.Progress{Level: 2, XP: 30, TotalXP: 130, BestWPM: 55, Streak: 3, SessionsCompleted: 4}
	entries := []model.HistoryEntry{
		{WPM: 55, Accuracy: 98},
		{WPM: 50, Accuracy: 95},
	}
	if err := RenderSummary(&buf, progress, entries, 2); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Level 2") {
		t.Fatalf("expected level line, got %q", out)
	}
	if !strings.Contains(out, "Best WPM: 55") {
		t.Fatalf("expected best WPM line, got %q", out)
	}
	if !strings.Contains(out, "WPM trend") {
		t.Fatalf("expected trend line, got %q", out)
	}
}

func TestRenderSummaryWidthKeepsNewestPoints(t *testing.T) {
	progress := model.Progress{Level: 1, BestWPM: 60, SessionsCompleted: 40}
	entries := make([]model.HistoryEntry, 40)
	for i := range entries {
		entries[i] = model.HistoryEntry{WPM: 30 + i, Accuracy: 95}
	}

	var buf bytes.Buffer
	if err := RenderSummaryWithWidth(&buf, progress, entries, 1, 33); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	trend := lines[len(lines)-1]
	open := strings.Index(trend, "[")
	closing := strings.Index(trend, "]")
	if open < 0 || closing < open {
		t.Fatalf("expected bracketed sparkline, got %q", trend)
	}
	// Width 33 leaves 20 columns inside the brackets.
	if got := closing - open - 1; got != 20 {
		t.Fatalf("expected 20 sparkline columns, got %d in %q", got, trend)
	}
	if len(trend) > 33 {
		t.Fatalf("expected trend line within width, got %d columns", len(trend))
	}
}

func TestRenderSummaryNoColorForPlainWriter(t *testing.T) {
	var buf bytes.Buffer
	entries := []model.HistoryEntry{{WPM: 50, Accuracy: 95}}
	if err := RenderSummaryWithWidth(&buf, model.Progress{Level: 1}, entries, 1, 80); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected no ANSI escapes for non-terminal writer, got %q", buf.String())
	}
}
