package progress

import "github.com/avolkv/headsup/internal/model"

// Achievement pairs an id with a pure predicate over lifetime progress.
// Predicates are re-evaluated after every session; unlocking is append-only.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Predicate   func(p model.Progress) bool
}

// EyesUpID is the dedicated achievement for a camera-tracked session with
// zero penalties.
const EyesUpID = "eyes-up"

// DefaultAchievements returns the built-in achievement set.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{
			ID:          "first-session",
			Name:        "First Steps",
			Description: "Complete your first practice session",
			Predicate:   func(p model.Progress) bool { return p.SessionsCompleted >= 1 },
		},
		{
			ID:          "speed-40",
			Name:        "Getting Quick",
			Description: "Reach 40 WPM in a session",
			Predicate:   func(p model.Progress) bool { return p.BestWPM >= 40 },
		},
		{
			ID:          "speed-60",
			Name:        "Speed Demon",
			Description: "Reach 60 WPM in a session",
			Predicate:   func(p model.Progress) bool { return p.BestWPM >= 60 },
		},
		{
			ID:          "speed-80",
			Name:        "Lightning Fingers",
			Description: "Reach 80 WPM in a session",
			Predicate:   func(p model.Progress) bool { return p.BestWPM >= 80 },
		},
		{
			ID:          EyesUpID,
			Name:        "Eyes Up",
			Description: "Finish a camera-tracked session without looking down",
			Predicate:   func(p model.Progress) bool { return p.PerfectSessions >= 1 },
		},
		{
			ID:          "streak-7",
			Name:        "Committed",
			Description: "Practice seven days in a row",
			Predicate:   func(p model.Progress) bool { return p.Streak >= 7 },
		},
		{
			ID:          "level-5",
			Name:        "Climbing",
			Description: "Reach level 5",
			Predicate:   func(p model.Progress) bool { return p.Level >= 5 },
		},
		{
			ID:          "level-10",
			Name:        "Veteran",
			Description: "Reach level 10",
			Predicate:   func(p model.Progress) bool { return p.Level >= 10 },
		},
		{
			ID:          "marathon",
			Name:        "Marathon",
			Description: "Type 10,000 correct characters in total",
			Predicate:   func(p model.Progress) bool { return p.TotalCorrectChars >= 10000 },
		},
		{
			ID:          "dedicated",
			Name:        "Dedicated",
			Description: "Complete 50 practice sessions",
			Predicate:   func(p model.Progress) bool { return p.SessionsCompleted >= 50 },
		},
	}
}
