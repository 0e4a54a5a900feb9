package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AlertType string

const (
	AlertExpiringSoon AlertType = "expiring_soon"
	AlertExpired      AlertType = "expired"
	AlertReminder     AlertType = "reminder"
)

type AlertPriority string

const (
	PriorityLow    AlertPriority = "low"
	PriorityMedium AlertPriority = "medium"
	PriorityHigh   AlertPriority = "high"
)

// Alert records one item crossing one of its owner's reminder thresholds on one day.
type Alert struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID              primitive.ObjectID `bson:"user_id" json:"userId"`
	ItemID              primitive.ObjectID `bson:"item_id" json:"itemId"`
	Type                AlertType          `bson:"type" json:"type"`
	Message             string             `bson:"message" json:"message"`
	DaysUntilExpiry     int                `bson:"days_until_expiry" json:"daysUntilExpiry"`
	TriggerDate         time.Time          `bson:"trigger_date" json:"triggerDate"`
	Priority            AlertPriority      `bson:"priority" json:"priority"`
	Sent                bool               `bson:"sent" json:"sent"`
	EmailSent           bool               `bson:"email_sent" json:"emailSent"`
	WhatsappSent        bool               `bson:"whatsapp_sent" json:"whatsappSent"`
	Read                bool               `bson:"read" json:"read"`
	Undeliverable       bool               `bson:"undeliverable,omitempty" json:"undeliverable,omitempty"`
	UndeliverableReason string             `bson:"undeliverable_reason,omitempty" json:"-"`
	Attempts            int                `bson:"attempts" json:"attempts"`
	LastAttemptAt       *time.Time         `bson:"last_attempt_at,omitempty" json:"lastAttemptAt,omitempty"`
	DedupKey            string             `bson:"dedup_key" json:"-"`
	CreatedAt           time.Time          `bson:"created_at" json:"createdAt"`
}
