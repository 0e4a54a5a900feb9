package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dias221467/food-expiry-tracker/internal/errs"
	"github.com/Dias221467/food-expiry-tracker/internal/models"
)

var now = time.Date(2026, 10, 15, 18, 30, 0, 0, time.UTC)

func price(v float64) *float64 { return &v }

func TestLevelFor(t *testing.T) {
	assert.Equal(t, 1, LevelFor(0))
	assert.Equal(t, 1, LevelFor(99))
	assert.Equal(t, 2, LevelFor(100))
	assert.Equal(t, 6, LevelFor(555))
	assert.Equal(t, 1, LevelFor(-10))
}

func TestOnConsume_SavedItem(t *testing.T) {
	item := models.Item{
		Status:         models.StatusExpiringSoon,
		ExpiryDate:     now.AddDate(0, 0, 2),
		EstimatedPrice: price(50),
	}
	before := models.Stats{ItemsSaved: 3, MoneySaved: 10, Points: 98, Level: 1}

	after, out, err := OnConsume(before, item, now)
	require.NoError(t, err)

	assert.True(t, out.Saved)
	assert.Equal(t, 4, after.ItemsSaved)
	assert.Equal(t, 0, after.ItemsWasted)
	assert.InDelta(t, 60, after.MoneySaved, 1e-9)
	assert.Equal(t, 103, after.Points)
	assert.Equal(t, 2, after.Level)
	assert.Equal(t, SavePoints, out.PointsAwarded)
}

func TestOnConsume_OnExpiryDayCountsAsSaved(t *testing.T) {
	item := models.Item{Status: models.StatusExpiringSoon, ExpiryDate: now}
	after, out, err := OnConsume(models.Stats{}, item, now)
	require.NoError(t, err)
	assert.True(t, out.Saved)
	assert.Equal(t, 1, after.ItemsSaved)
	assert.Zero(t, after.MoneySaved)
}

func TestOnConsume_WastedItem(t *testing.T) {
	item := models.Item{
		Status:         models.StatusExpired,
		ExpiryDate:     now.AddDate(0, 0, -1),
		EstimatedPrice: price(80),
	}
	before := models.Stats{ItemsWasted: 1, MoneySaved: 20, Points: 40, Level: 1}

	after, out, err := OnConsume(before, item, now)
	require.NoError(t, err)

	assert.False(t, out.Saved)
	assert.Equal(t, 2, after.ItemsWasted)
	assert.InDelta(t, 20, after.MoneySaved, 1e-9)
	assert.Equal(t, 40, after.Points)
	assert.Zero(t, out.PointsAwarded)
}

func TestOnConsume_RejectsConsumedItem(t *testing.T) {
	item := models.Item{Status: models.StatusConsumed, ExpiryDate: now.AddDate(0, 0, 5)}
	before := models.Stats{ItemsSaved: 2, Points: 10}

	after, _, err := OnConsume(before, item, now)
	require.ErrorIs(t, err, errs.ErrAlreadyConsumed)
	assert.Equal(t, before, after)
}

func TestOnConsume_Streak(t *testing.T) {
	at := func(t time.Time) *time.Time { return &t }
	fresh := models.Item{Status: models.StatusFresh, ExpiryDate: now.AddDate(0, 0, 10)}

	tests := []struct {
		name        string
		stats       models.Stats
		wantCurrent int
		wantLongest int
	}{
		{"first activity", models.Stats{}, 1, 1},
		{"same day keeps streak", models.Stats{CurrentStreak: 4, LongestStreak: 6, LastActiveDate: at(now.Add(-5 * time.Hour))}, 4, 6},
		{"previous day extends streak", models.Stats{CurrentStreak: 6, LongestStreak: 6, LastActiveDate: at(now.AddDate(0, 0, -1))}, 7, 7},
		{"late yesterday still extends", models.Stats{CurrentStreak: 2, LongestStreak: 9, LastActiveDate: at(now.Add(-19 * time.Hour))}, 3, 9},
		{"gap resets streak", models.Stats{CurrentStreak: 9, LongestStreak: 9, LastActiveDate: at(now.AddDate(0, 0, -2))}, 1, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after, _, err := OnConsume(tt.stats, fresh, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCurrent, after.CurrentStreak)
			assert.Equal(t, tt.wantLongest, after.LongestStreak)
			require.NotNil(t, after.LastActiveDate)
			assert.True(t, after.LastActiveDate.Equal(now))
		})
	}
}

func TestOnConsume_LongestStreakNeverDecreases(t *testing.T) {
	stats := models.Stats{}
	day := now
	prevLongest := 0
	// consecutive days, a gap, then more consecutive days
	offsets := []int{0, 1, 1, 1, 3, 1, 0, 1, 5, 1}
	for i, off := range offsets {
		day = day.AddDate(0, 0, off)
		item := models.Item{Status: models.StatusFresh, ExpiryDate: day.AddDate(0, 0, 1)}
		var err error
		stats, _, err = OnConsume(stats, item, day)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, stats.LongestStreak, prevLongest, "step %d", i)
		assert.GreaterOrEqual(t, stats.LongestStreak, stats.CurrentStreak, "step %d", i)
		prevLongest = stats.LongestStreak
	}
	assert.Equal(t, 4, stats.LongestStreak)
}

func TestDelta(t *testing.T) {
	before := models.Stats{ItemsSaved: 4, MoneySaved: 10, Points: 95, Level: 1, CurrentStreak: 2, LongestStreak: 6}
	after, _, err := OnConsume(before, models.Item{Name: "Milk", ExpiryDate: now, EstimatedPrice: price(2.5)}, now)
	require.NoError(t, err)

	d := Delta(before, after)
	assert.Equal(t, 1, d.ItemsSaved)
	assert.Zero(t, d.ItemsWasted)
	assert.InDelta(t, 2.5, d.MoneySaved, 1e-9)
	assert.Equal(t, SavePoints, d.Points)
	require.NotNil(t, d.Streak)
	assert.Equal(t, 1, d.Streak.Current)
	assert.Equal(t, now, d.Streak.LastActive)
}

func TestImpactOf(t *testing.T) {
	imp := ImpactOf(3)
	assert.InDelta(t, 7.5, imp.CO2SavedKg, 1e-9)
	assert.Equal(t, 5400, imp.WaterSavedLitres)
	assert.Equal(t, 2, imp.MealsEquivalent)

	assert.InDelta(t, 75.0, WasteReductionRate(3, 1), 1e-9)
	assert.Zero(t, WasteReductionRate(0, 0))
}
