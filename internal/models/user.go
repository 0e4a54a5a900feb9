package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultReminderDays are the thresholds used when a user has not configured any.
var DefaultReminderDays = []int{7, 3, 1}

// Preferences controls which alerts a user gets and through which channels.
type Preferences struct {
	NotificationsEnabled  bool  `bson:"notifications_enabled" json:"notificationsEnabled"`
	EmailNotifications    bool  `bson:"email_notifications" json:"emailNotifications"`
	WhatsappNotifications bool  `bson:"whatsapp_notifications" json:"whatsappNotifications"`
	ReminderDays          []int `bson:"reminder_days" json:"reminderDays"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		NotificationsEnabled:  true,
		EmailNotifications:    true,
		WhatsappNotifications: false,
		ReminderDays:          append([]int(nil), DefaultReminderDays...),
	}
}

// Thresholds returns the configured reminder days. Only a missing setting (nil) falls back
// to the defaults; an empty list means no reminders.
func (p Preferences) Thresholds() []int {
	if p.ReminderDays == nil {
		return DefaultReminderDays
	}
	return p.ReminderDays
}

// RemindsAt reports whether days is exactly one of the configured thresholds.
func (p Preferences) RemindsAt(days int) bool {
	for _, d := range p.Thresholds() {
		if d == days {
			return true
		}
	}
	return false
}

// Stats holds the cumulative waste-reduction counters of a user.
type Stats struct {
	ItemsSaved     int        `bson:"items_saved" json:"itemsSaved"`
	ItemsWasted    int        `bson:"items_wasted" json:"itemsWasted"`
	MoneySaved     float64    `bson:"money_saved" json:"moneySaved"`
	Points         int        `bson:"points" json:"points"`
	Level          int        `bson:"level" json:"level"`
	CurrentStreak  int        `bson:"current_streak" json:"currentStreak"`
	LongestStreak  int        `bson:"longest_streak" json:"longestStreak"`
	LastActiveDate *time.Time `bson:"last_active_date,omitempty" json:"lastActiveDate,omitempty"`
	RecipesUsed    int        `bson:"recipes_used" json:"recipesUsed"`
}

// StatsDelta is a change to Stats applied atomically on top of whatever is stored.
// Counters are added; a non-nil Streak replaces the current streak and raises the longest.
type StatsDelta struct {
	ItemsSaved  int
	ItemsWasted int
	MoneySaved  float64
	Points      int
	Streak      *StreakUpdate
}

type StreakUpdate struct {
	Current    int
	LastActive time.Time
}

// User represents an account in the Food Expiry Tracker.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	PhoneNumber    string             `bson:"phone_number,omitempty" json:"phoneNumber,omitempty"`
	Preferences    Preferences        `bson:"preferences" json:"preferences"`
	Stats          Stats              `bson:"stats" json:"stats"`
	LastSeenAt     *time.Time         `bson:"last_seen_at,omitempty" json:"lastSeenAt,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

type PublicUser struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}
