// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/avolkv/headsup/internal/model"
)

const (
	sparkChars = " .:-=+*#%@"

	colorCyan  = "\x1b[36m"
	colorReset = "\x1b[0m"

	terminalWidthBackup = 80
)

// SessionMetrics computes WPM, CPM, and accuracy for a session.
func SessionMetrics(correct, incorrect int, durationMs int64) (wpm, cpm, accuracy float64) {
	if durationMs <= 0 {
		return 0, 0, 0
	}
	minutes := float64(durationMs) / 60000.0
	if minutes <= 0 {
		return 0, 0, 0
	}
	wpm = (float64(correct) / 5.0) / minutes
	cpm = float64(correct) / minutes
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	return wpm, cpm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Lifetime aggregates history entries into all-time numbers.
type Lifetime struct {
	Sessions  int
	AvgWPM    float64
	BestWPM   int
	AvgAcc    float64
	Penalties int
}

// Aggregate summarizes history entries (any order).
func Aggregate(entries []model.HistoryEntry) Lifetime {
	var life Lifetime
	if len(entries) == 0 {
		return life
	}
	var wpmSum, accSum float64
	for _, e := range entries {
		wpmSum += float64(e.WPM)
		accSum += float64(e.Accuracy)
		if e.WPM > life.BestWPM {
			life.BestWPM = e.WPM
		}
		life.Penalties += e.Penalties
	}
	life.Sessions = len(entries)
	life.AvgWPM = wpmSum / float64(len(entries))
	life.AvgAcc = accSum / float64(len(entries))
	return life
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// RenderSummary prints a report for progress and recent history, sized to
// the terminal. Entries are expected most-recent-first, as the store returns
// them.
func RenderSummary(w io.Writer, progress model.Progress, entries []model.HistoryEntry, curveWindow int) error {
	return RenderSummaryWithWidth(w, progress, entries, curveWindow, terminalWidth())
}

// RenderSummaryWithWidth renders the report with an explicit display width.
// The WPM trend keeps the newest points that fit.
func RenderSummaryWithWidth(w io.Writer, progress model.Progress, entries []model.HistoryEntry, curveWindow, width int) error {
	life := Aggregate(entries)
	if _, err := fmt.Fprintf(w, "Level %d  ·  %d/%d XP  ·  %d total XP\n",
		progress.Level, progress.XP, progress.Level*100, progress.TotalXP); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best WPM: %d  ·  Streak: %d day(s)  ·  Sessions: %d (%d perfect)\n",
		progress.BestWPM, progress.Streak, progress.SessionsCompleted, progress.PerfectSessions); err != nil {
		return err
	}
	if life.Sessions == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded yet.")
		return err
	}
	if _, err := fmt.Fprintf(w, "Recent: avg %.1f WPM · %.1f%% accuracy · %d penalties\n",
		life.AvgWPM, life.AvgAcc, life.Penalties); err != nil {
		return err
	}
	wpms := make([]float64, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		wpms = append(wpms, float64(entries[i].WPM))
	}
	curve := MovingAverage(wpms, curveWindow)
	available := width - len("WPM trend: []")
	if available < 1 {
		available = 1
	}
	if len(curve) > available {
		curve = curve[len(curve)-available:]
	}
	spark := Sparkline(curve)
	if shouldUseColor(w) {
		spark = colorCyan + spark + colorReset
	}
	_, err := fmt.Fprintf(w, "WPM trend: [%s]\n", spark)
	return err
}
