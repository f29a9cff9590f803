// Package model defines shared data structures.
package model

import "time"

// Settings holds the user-facing toggles. Persisted on every change.
type Settings struct {
	SoundEnabled    bool   `json:"soundEnabled"`
	FlashEnabled    bool   `json:"flashEnabled"`
	KeyboardVisible bool   `json:"keyboardVisible"`
	CameraEnabled   bool   `json:"cameraEnabled"`
	CurrentMode     string `json:"currentMode"`
}

// DefaultSettings returns the settings used before anything is persisted.
func DefaultSettings() Settings {
	return Settings{
		SoundEnabled:    true,
		FlashEnabled:    true,
		KeyboardVisible: true,
		CurrentMode:     "words",
	}
}

// Progress is the persistent lifetime progress record.
type Progress struct {
	TotalXP           int      `json:"totalXP"`
	XP                int      `json:"xp"`
	Level             int      `json:"level"`
	BestWPM           int      `json:"bestWPM"`
	Streak            int      `json:"streak"`
	LastPracticeDay   string   `json:"lastPracticeDay"`
	SessionsCompleted int      `json:"sessionsCompleted"`
	PerfectSessions   int      `json:"perfectSessions"`
	TotalCorrectChars int      `json:"totalCorrectChars"`
	Unlocked          []string `json:"unlockedAchievements"`
}

// DefaultProgress returns a fresh level-one progress record.
func DefaultProgress() Progress {
	return Progress{Level: 1}
}

// HasUnlocked reports whether the achievement id is already unlocked.
func (p Progress) HasUnlocked(id string) bool {
	for _, u := range p.Unlocked {
		if u == id {
			return true
		}
	}
	return false
}

// HistoryEntry summarizes one completed session for the capped history.
type HistoryEntry struct {
	EndedAt    time.Time `json:"endedAt"`
	WPM        int       `json:"wpm"`
	Accuracy   int       `json:"accuracy"`
	Errors     int       `json:"errors"`
	Penalties  int       `json:"penalties"`
	DurationMs int64     `json:"durationMs"`
	XP         int       `json:"xp"`
}

// CharStats stores per-character stats for a session.
type CharStats struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// PracticeConfig defines practice text settings.
type PracticeConfig struct {
	Lang     string
	Words    int
	CapsPct  float64
	PunctPct float64
	PunctSet string
}
