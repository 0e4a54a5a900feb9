package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AchievementType string

const (
	AchievementFirstItem      AchievementType = "first_item"
	AchievementItemsSaved10   AchievementType = "items_saved_10"
	AchievementItemsSaved50   AchievementType = "items_saved_50"
	AchievementItemsSaved100  AchievementType = "items_saved_100"
	AchievementStreak7        AchievementType = "streak_7"
	AchievementStreak30       AchievementType = "streak_30"
	AchievementZeroWasteWeek  AchievementType = "zero_waste_week"
	AchievementEcoWarrior     AchievementType = "eco_warrior"
	AchievementMoneySaver     AchievementType = "money_saver"
	AchievementRecipeMaster   AchievementType = "recipe_master"
	AchievementEarlyBird      AchievementType = "early_bird"
	AchievementPerfectTracker AchievementType = "perfect_tracker"
)

// Achievement is an unlock record, unique per (user, type).
type Achievement struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"userId"`
	Type       AchievementType    `bson:"type" json:"type"`
	UnlockedAt time.Time          `bson:"unlocked_at" json:"unlockedAt"`
	Points     int                `bson:"points" json:"points"`
}
