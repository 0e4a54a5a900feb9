package gamification

import (
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/expiry"
	"github.com/Dias221467/food-expiry-tracker/internal/models"
)

// Snapshot is everything an achievement predicate may look at. Items are expected to carry
// freshly derived statuses.
type Snapshot struct {
	Stats models.Stats
	Items []models.Item
	Now   time.Time
}

type Predicate func(Snapshot) bool

// Definition is one entry of the achievement catalog.
type Definition struct {
	Type        models.AchievementType `json:"type"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Icon        string                 `json:"icon"`
	Points      int                    `json:"points"`
	Qualifies   Predicate              `json:"-"`
}

// Catalog is an ordered table of achievement definitions.
type Catalog []Definition

// Lookup finds the definition of t.
func (c Catalog) Lookup(t models.AchievementType) (Definition, bool) {
	for _, def := range c {
		if def.Type == t {
			return def, true
		}
	}
	return Definition{}, false
}

const zeroWasteWindowDays = 7

// DefaultCatalog returns the twelve built-in achievements.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			Type: models.AchievementFirstItem, Name: "First Step", Description: "Added your first item",
			Icon: "🎯", Points: 10,
			Qualifies: func(s Snapshot) bool { return len(s.Items) >= 1 },
		},
		{
			Type: models.AchievementItemsSaved10, Name: "Saver", Description: "Saved 10 items from waste",
			Icon: "💚", Points: 50,
			Qualifies: func(s Snapshot) bool { return s.Stats.ItemsSaved >= 10 },
		},
		{
			Type: models.AchievementItemsSaved50, Name: "Eco Hero", Description: "Saved 50 items from waste",
			Icon: "🌱", Points: 200,
			Qualifies: func(s Snapshot) bool { return s.Stats.ItemsSaved >= 50 },
		},
		{
			Type: models.AchievementItemsSaved100, Name: "Waste Warrior", Description: "Saved 100 items from waste",
			Icon: "🛡️", Points: 500,
			Qualifies: func(s Snapshot) bool { return s.Stats.ItemsSaved >= 100 },
		},
		{
			Type: models.AchievementStreak7, Name: "Week Warrior", Description: "7-day tracking streak",
			Icon: "🔥", Points: 100,
			Qualifies: func(s Snapshot) bool { return s.Stats.CurrentStreak >= 7 },
		},
		{
			Type: models.AchievementStreak30, Name: "Monthly Master", Description: "30-day tracking streak",
			Icon: "⭐", Points: 500,
			Qualifies: func(s Snapshot) bool { return s.Stats.CurrentStreak >= 30 },
		},
		{
			Type: models.AchievementZeroWasteWeek, Name: "Zero Waste Week", Description: "No waste for 7 days",
			Icon: "♻️", Points: 300,
			Qualifies: func(s Snapshot) bool {
				if len(s.Items) < 7 {
					return false
				}
				for i := range s.Items {
					if expiredWithin(&s.Items[i], s.Now, zeroWasteWindowDays) {
						return false
					}
				}
				return true
			},
		},
		{
			Type: models.AchievementEcoWarrior, Name: "Eco Warrior", Description: "Saved 1 ton of CO2",
			Icon: "🌍", Points: 1000,
			Qualifies: func(s Snapshot) bool { return float64(s.Stats.ItemsSaved)*CO2PerItemKg >= 1000 },
		},
		{
			Type: models.AchievementMoneySaver, Name: "Money Saver", Description: "Saved ₹100",
			Icon: "💰", Points: 250,
			Qualifies: func(s Snapshot) bool { return s.Stats.MoneySaved >= 100 },
		},
		{
			Type: models.AchievementRecipeMaster, Name: "Recipe Master", Description: "Used 10 AI recipes",
			Icon: "👨‍🍳", Points: 150,
			Qualifies: func(s Snapshot) bool { return s.Stats.RecipesUsed >= 10 },
		},
		{
			Type: models.AchievementEarlyBird, Name: "Early Bird", Description: "Consumed 5 items before expiry",
			Icon: "🐦", Points: 100,
			Qualifies: func(s Snapshot) bool {
				early := 0
				for i := range s.Items {
					if consumedEarly(&s.Items[i]) {
						early++
					}
				}
				return early >= 5
			},
		},
		{
			Type: models.AchievementPerfectTracker, Name: "Perfect Tracker", Description: "100% consumption rate (10+ items)",
			Icon: "✨", Points: 400,
			Qualifies: func(s Snapshot) bool {
				if len(s.Items) < 10 {
					return false
				}
				for i := range s.Items {
					if !s.Items[i].IsConsumed() {
						return false
					}
				}
				return true
			},
		},
	}
}

// Evaluate returns the definitions that qualify now and are not yet unlocked, in catalog order.
// Types already present in existing are skipped without evaluating their predicate.
func Evaluate(catalog Catalog, snap Snapshot, existing []models.Achievement) []Definition {
	unlocked := make(map[models.AchievementType]struct{}, len(existing))
	for _, a := range existing {
		unlocked[a.Type] = struct{}{}
	}

	var qualified []Definition
	for _, def := range catalog {
		if _, ok := unlocked[def.Type]; ok {
			continue
		}
		if def.Qualifies != nil && def.Qualifies(snap) {
			qualified = append(qualified, def)
		}
	}
	return qualified
}

// expiredWithin reports whether item became expired during the last window days, meaning its
// expiry day passed in that window and it was not consumed on or before that day.
func expiredWithin(item *models.Item, now time.Time, window int) bool {
	d := expiry.DaysUntil(item.ExpiryDate, now)
	if d >= 0 || d < -window {
		return false
	}
	if !item.IsConsumed() {
		return true
	}
	return expiry.DaysUntil(item.ExpiryDate, consumedOn(item).In(now.Location())) < 0
}

func consumedEarly(item *models.Item) bool {
	if !item.IsConsumed() {
		return false
	}
	return expiry.DaysUntil(item.ExpiryDate, consumedOn(item)) > 0
}

func consumedOn(item *models.Item) time.Time {
	if item.ConsumedAt != nil {
		return *item.ConsumedAt
	}
	return item.UpdatedAt
}
