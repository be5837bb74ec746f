// Package streak tracks consecutive active days for students. ComputeUpdate is
// a pure function of the previous streak state and "today"; Tracker owns the
// persistence so check-then-write is serialized per user.
package streak

import (
	"time"

	"chemsnap/backend/policy"
)

// Update is the pair to persist when a day's activity changes the streak.
type Update struct {
	Streak       int
	ActivityDate time.Time
}

// Normalize strips the time-of-day component so every comparison works on UTC
// midnights. Calls made at any hour of the same calendar day compare equal.
func Normalize(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ComputeUpdate decides the new streak state. The second return is false when
// nothing should be written: non-student roles never accrue streaks, and a
// second call on an already-recorded day is a no-op.
func ComputeUpdate(role policy.Role, currentStreak int, lastActivity *time.Time, today time.Time) (Update, bool) {
	if role != policy.RoleStudent {
		return Update{}, false
	}

	day := Normalize(today)
	if lastActivity == nil {
		// First-ever activity.
		return Update{Streak: 1, ActivityDate: day}, true
	}

	last := Normalize(*lastActivity)
	diffDays := int(day.Sub(last).Hours() / 24)
	if diffDays < 0 {
		diffDays = -diffDays
	}

	switch diffDays {
	case 0:
		return Update{}, false
	case 1:
		streak := currentStreak + 1
		if streak < 1 {
			streak = 1
		}
		return Update{Streak: streak, ActivityDate: day}, true
	default:
		return Update{Streak: 1, ActivityDate: day}, true
	}
}
