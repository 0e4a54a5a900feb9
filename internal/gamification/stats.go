// Package gamification turns consumption events into points, streaks, levels and achievements.
package gamification

import (
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/errs"
	"github.com/Dias221467/food-expiry-tracker/internal/expiry"
	"github.com/Dias221467/food-expiry-tracker/internal/models"
)

const (
	// SavePoints is awarded for every item consumed on or before its expiry day.
	SavePoints     = 5
	PointsPerLevel = 100
)

// LevelFor derives the level from a point total.
func LevelFor(points int) int {
	if points < 0 {
		points = 0
	}
	return points/PointsPerLevel + 1
}

// Delta is the change that turns before into after, as applied by a store.
func Delta(before, after models.Stats) models.StatsDelta {
	d := models.StatsDelta{
		ItemsSaved:  after.ItemsSaved - before.ItemsSaved,
		ItemsWasted: after.ItemsWasted - before.ItemsWasted,
		MoneySaved:  after.MoneySaved - before.MoneySaved,
		Points:      after.Points - before.Points,
	}
	if after.LastActiveDate != nil {
		d.Streak = &models.StreakUpdate{Current: after.CurrentStreak, LastActive: *after.LastActiveDate}
	}
	return d
}

// ConsumeOutcome describes what a single consumption contributed.
type ConsumeOutcome struct {
	Saved           bool    `json:"saved"`
	DaysUntilExpiry int     `json:"daysUntilExpiry"`
	MoneySaved      float64 `json:"moneySaved"`
	PointsAwarded   int     `json:"pointsAwarded"`
}

// OnConsume applies the consumption of item at now to stats. The item must still be in a
// non-consumed state; otherwise errs.ErrAlreadyConsumed is returned and stats are untouched.
func OnConsume(stats models.Stats, item models.Item, now time.Time) (models.Stats, ConsumeOutcome, error) {
	if item.IsConsumed() {
		return stats, ConsumeOutcome{}, errs.ErrAlreadyConsumed
	}

	days := expiry.DaysUntil(item.ExpiryDate, now)
	out := ConsumeOutcome{DaysUntilExpiry: days, Saved: days >= 0}

	if out.Saved {
		out.MoneySaved = item.Price()
		out.PointsAwarded = SavePoints
		stats.ItemsSaved++
		stats.MoneySaved += out.MoneySaved
		stats.Points += out.PointsAwarded
	} else {
		stats.ItemsWasted++
	}

	stats.CurrentStreak = nextStreak(stats, now)
	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	active := now
	stats.LastActiveDate = &active
	stats.Level = LevelFor(stats.Points)

	return stats, out, nil
}

func nextStreak(stats models.Stats, now time.Time) int {
	if stats.LastActiveDate == nil {
		return 1
	}
	last := *stats.LastActiveDate
	switch {
	case expiry.SameDay(last, now):
		return stats.CurrentStreak
	case expiry.IsPreviousDay(last, now):
		return stats.CurrentStreak + 1
	default:
		return 1
	}
}
