package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ActivityItemAdded           = "item_added"
	ActivityItemConsumed        = "item_consumed"
	ActivityItemDeleted         = "item_deleted"
	ActivityAchievementUnlocked = "achievement_unlocked"
)

type Activity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Type      string             `bson:"type" json:"type"`           // e.g. "item_added", "item_consumed"
	TargetID  primitive.ObjectID `bson:"target_id" json:"targetId"` // the item or achievement it refers to
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Message   string             `bson:"message" json:"message"`
}
