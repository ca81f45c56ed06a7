package timeutil

import (
	"time"

	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

// DefaultDurationMinutes is applied when a challenge carries no estimated
// duration. The catalog does not enforce a default; the engine does.
const DefaultDurationMinutes = 30

// UnitDuration maps a duration unit to its time.Duration equivalent.
func UnitDuration(unit types.DurationUnit) time.Duration {
	switch unit {
	case types.UnitHours:
		return time.Hour
	case types.UnitDays:
		return 24 * time.Hour
	case types.UnitWeeks:
		return 7 * 24 * time.Hour
	default:
		return time.Minute
	}
}

// ComputeDeadline returns now + value*unit. A zero or negative value falls
// back to 30 minutes regardless of unit.
func ComputeDeadline(value int, unit types.DurationUnit, now time.Time) time.Time {
	if value <= 0 {
		return now.Add(DefaultDurationMinutes * time.Minute)
	}
	return now.Add(time.Duration(value) * UnitDuration(unit))
}

// Remaining is the floor-decomposition of the span between now and a deadline.
type Remaining struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Expired bool `json:"expired"`
}

// TimeRemaining decomposes deadline-now into days/hours/minutes/seconds.
// A nil deadline or one already passed reports all zeros with Expired set.
func TimeRemaining(deadline *time.Time, now time.Time) Remaining {
	if deadline == nil || !now.Before(*deadline) {
		return Remaining{Expired: true}
	}
	left := deadline.Sub(now)
	return Remaining{
		Days:    int(left / (24 * time.Hour)),
		Hours:   int(left/time.Hour) % 24,
		Minutes: int(left/time.Minute) % 60,
		Seconds: int(left/time.Second) % 60,
	}
}

// PercentRemaining linearly interpolates how much of the window between
// startedAt and deadline is still ahead of now, clamped to [0,100].
func PercentRemaining(startedAt, deadline *time.Time, now time.Time) float64 {
	if startedAt == nil || deadline == nil {
		return 0
	}
	if !now.After(*startedAt) {
		return 100
	}
	if !now.Before(*deadline) {
		return 0
	}
	total := deadline.Sub(*startedAt)
	if total <= 0 {
		return 0
	}
	pct := float64(deadline.Sub(now)) / float64(total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
