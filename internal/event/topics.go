package event

import "time"

// Topic names an event stream on the bus.
type Topic string

// Typing engine events.
const (
	TopicTextSet          Topic = "typing.text.set"
	TopicSessionStarted   Topic = "typing.session.started"
	TopicKeystroke        Topic = "typing.keystroke"
	TopicStatsUpdated     Topic = "typing.stats.updated"
	TopicSessionCompleted Topic = "typing.session.completed"
	TopicSessionReset     Topic = "typing.session.reset"
)

// Gaze and penalty events.
const (
	TopicGazeSample     Topic = "gaze.sample"
	TopicLookingDown    Topic = "gaze.down"
	TopicLookingUp      Topic = "gaze.up"
	TopicCameraState    Topic = "gaze.camera.state"
	TopicPenaltyApplied Topic = "penalty.applied"
	TopicPenaltyFlash   Topic = "penalty.flash"
	TopicPenaltySound   Topic = "penalty.sound"
	TopicCooldownEnded  Topic = "penalty.cooldown.ended"
)

// Progress events.
const (
	TopicXPGained            Topic = "progress.xp.gained"
	TopicLevelUp             Topic = "progress.level.up"
	TopicAchievementUnlocked Topic = "progress.achievement.unlocked"
	TopicBestWPM             Topic = "progress.wpm.best"
)

// TextSetPayload announces a new exercise text.
type TextSetPayload struct {
	Text string
}

// KeystrokePayload carries the result of a single processed keystroke.
type KeystrokePayload struct {
	Correct  bool
	Char     rune
	Expected rune
	Position int
}

// StatsPayload carries a stats snapshot; emitted on every processed input.
type StatsPayload struct {
	WPM             int
	Accuracy        int
	Errors          int
	CorrectChars    int
	TotalChars      int
	ProgressPercent int
	ElapsedSeconds  float64
	Complete        bool
}

// SessionCompletedPayload is emitted once when an exercise finishes.
type SessionCompletedPayload struct {
	Stats      StatsPayload
	StartedAt  time.Time
	EndedAt    time.Time
	CharStats  []CharStatPayload
	DurationMs int64
}

// CharStatPayload aggregates per-character results for one session.
type CharStatPayload struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// GazeSamplePayload fires on every sensor sample, edge or not.
type GazeSamplePayload struct {
	Backend  string
	Raw      float64
	Smoothed float64
	Down     bool
}

// LookPayload fires on look-state transitions only.
type LookPayload struct {
	Backend  string
	Smoothed float64
	At       time.Time
}

// CameraStatePayload announces sensor enable/disable and failures.
type CameraStatePayload struct {
	Enabled bool
	Err     string
}

// PenaltyPayload is emitted when a look-down trigger is accepted.
type PenaltyPayload struct {
	Count int
	At    time.Time
}

// XPPayload carries an XP award.
type XPPayload struct {
	Amount  int
	Perfect bool
	Total   int
}

// LevelUpPayload announces a level increase.
type LevelUpPayload struct {
	Level int
	XP    int
}

// AchievementPayload announces a newly unlocked achievement.
type AchievementPayload struct {
	ID   string
	Name string
}
