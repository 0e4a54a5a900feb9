package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dias221467/food-expiry-tracker/internal/models"
)

func byID(progress []ChallengeProgress) map[string]ChallengeProgress {
	out := make(map[string]ChallengeProgress, len(progress))
	for _, p := range progress {
		out[p.ID] = p
	}
	return out
}

func TestDefaultChallenges_HasFiveUniqueIDs(t *testing.T) {
	catalog := DefaultChallenges()
	require.Len(t, catalog, 5)
	seen := map[string]bool{}
	for _, c := range catalog {
		assert.False(t, seen[c.ID], c.ID)
		seen[c.ID] = true
		assert.NotNil(t, c.Measure, c.ID)
		assert.Positive(t, c.Target, c.ID)
	}
}

func TestChallengeCatalog_Evaluate(t *testing.T) {
	stats := models.Stats{CurrentStreak: 10, ItemsSaved: 25, MoneySaved: 750}

	got := byID(DefaultChallenges().Evaluate(stats))

	assert.True(t, got["zero_waste_week"].Completed)
	assert.Equal(t, 100.0, got["zero_waste_week"].Progress)
	assert.Equal(t, 10.0, got["zero_waste_week"].CurrentValue)

	assert.False(t, got["streak_master"].Completed)
	assert.InDelta(t, 100.0/3, got["streak_master"].Progress, 1e-9)

	assert.Equal(t, 25.0, got["eco_champion"].Progress)

	assert.True(t, got["money_saver"].Completed)
	assert.Equal(t, 100.0, got["money_saver"].Progress, "progress is clamped")

	assert.Zero(t, got["recipe_explorer"].Progress)
	assert.False(t, got["recipe_explorer"].Completed)
}

func TestActive_KeepsStartedIncompleteChallenges(t *testing.T) {
	progress := DefaultChallenges().Evaluate(models.Stats{CurrentStreak: 10, ItemsSaved: 25, MoneySaved: 750})

	var ids []string
	for _, p := range Active(progress) {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"streak_master", "eco_champion"}, ids)

	assert.Empty(t, Active(DefaultChallenges().Evaluate(models.Stats{})))
}
