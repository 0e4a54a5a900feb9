// Package expiry holds the date math and status rules every other component relies on.
// Nothing outside this package computes day differences or maps them to item states.
package expiry

import "time"

const day = 24 * time.Hour

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysUntil returns the number of midnight boundaries between now and target, both read as
// calendar days in now's location: 0 for today, 1 for tomorrow, -1 for yesterday.
func DaysUntil(target, now time.Time) int {
	ty, tm, td := target.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	// Calendar dates are compared in UTC so a 23 or 25 hour local day still counts as one.
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(n) / day)
}

// SameDay reports whether a and b fall on the same calendar day in b's location.
func SameDay(a, b time.Time) bool {
	return DaysUntil(a, b) == 0
}

// IsPreviousDay reports whether prev falls exactly one calendar day before now.
func IsPreviousDay(prev, now time.Time) bool {
	return DaysUntil(prev, now) == -1
}

// ClockIn returns a clock reading the current time in loc, so that every day boundary
// derived from it falls on loc's midnight. A nil loc means the process time zone.
func ClockIn(loc *time.Location) func() time.Time {
	if loc == nil {
		return time.Now
	}
	return func() time.Time { return time.Now().In(loc) }
}
