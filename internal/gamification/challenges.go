package gamification

import "github.com/Dias221467/food-expiry-tracker/internal/models"

// Measure reads the value a challenge tracks from a user's stats.
type Measure func(models.Stats) float64

// Challenge is a long-running goal. Unlike achievements nothing is stored; progress is
// always recomputed from the current stats.
type Challenge struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Target      float64 `json:"target"`
	Unit        string  `json:"unit"`
	Reward      int     `json:"reward"`
	Measure     Measure `json:"-"`
}

// ChallengeProgress is a challenge as seen by one user.
type ChallengeProgress struct {
	Challenge
	CurrentValue float64 `json:"currentValue"`
	Progress     float64 `json:"progress"`
	Completed    bool    `json:"completed"`
}

// ChallengeCatalog is an ordered table of challenges.
type ChallengeCatalog []Challenge

// DefaultChallenges returns the five built-in challenges.
func DefaultChallenges() ChallengeCatalog {
	streak := func(s models.Stats) float64 { return float64(s.CurrentStreak) }
	return ChallengeCatalog{
		{
			ID: "zero_waste_week", Name: "Zero Waste Week", Description: "No items wasted for 7 consecutive days",
			Icon: "♻️", Target: 7, Unit: "days", Reward: 500, Measure: streak,
		},
		{
			ID: "streak_master", Name: "Streak Master", Description: "Maintain a 30-day tracking streak",
			Icon: "🔥", Target: 30, Unit: "days", Reward: 1000, Measure: streak,
		},
		{
			ID: "eco_champion", Name: "Eco Champion", Description: "Save 100 items from waste",
			Icon: "🌍", Target: 100, Unit: "items", Reward: 2000,
			Measure: func(s models.Stats) float64 { return float64(s.ItemsSaved) },
		},
		{
			ID: "money_saver", Name: "Money Saver", Description: "Save ₹500 in food waste",
			Icon: "💰", Target: 500, Unit: "money", Reward: 1500,
			Measure: func(s models.Stats) float64 { return s.MoneySaved },
		},
		{
			ID: "recipe_explorer", Name: "Recipe Explorer", Description: "Use 20 AI-generated recipes",
			Icon: "👨‍🍳", Target: 20, Unit: "recipes", Reward: 800,
			Measure: func(s models.Stats) float64 { return float64(s.RecipesUsed) },
		},
	}
}

// Evaluate computes every challenge's progress for stats. Progress is a percentage
// clamped to [0, 100].
func (c ChallengeCatalog) Evaluate(stats models.Stats) []ChallengeProgress {
	out := make([]ChallengeProgress, 0, len(c))
	for _, ch := range c {
		cur := ch.Measure(stats)
		p := ChallengeProgress{Challenge: ch, CurrentValue: cur, Completed: cur >= ch.Target}
		switch {
		case p.Completed:
			p.Progress = 100
		case ch.Target > 0 && cur > 0:
			p.Progress = cur / ch.Target * 100
		}
		out = append(out, p)
	}
	return out
}

// Active keeps the challenges that are started but not completed.
func Active(progress []ChallengeProgress) []ChallengeProgress {
	out := make([]ChallengeProgress, 0, len(progress))
	for _, p := range progress {
		if !p.Completed && p.Progress > 0 {
			out = append(out, p)
		}
	}
	return out
}
