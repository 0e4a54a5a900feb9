package services

import (
	"context"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"github.com/Dias221467/food-expiry-tracker/internal/repository"
	"github.com/Dias221467/food-expiry-tracker/pkg/email"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The interfaces below are what the services need from storage; the Mongo repositories
// in internal/repository satisfy them.

type ItemStore interface {
	Create(ctx context.Context, item *models.Item) error
	GetByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Item, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Item, error)
	List(ctx context.Context, f repository.ItemFilter) ([]models.Item, error)
	ListActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Item, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Item, error)
	UpdateDetails(ctx context.Context, item *models.Item) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ItemStatus) error
	MarkConsumed(ctx context.Context, id, userID primitive.ObjectID, at time.Time) (*models.Item, error)
	RevertConsumed(ctx context.Context, id, userID primitive.ObjectID, status models.ItemStatus) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	CountAll(ctx context.Context) (int64, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ListNotifiable(ctx context.Context) ([]models.User, error)
	ApplyStats(ctx context.Context, id primitive.ObjectID, delta models.StatsDelta) (models.Stats, error)
	SetLevel(ctx context.Context, id primitive.ObjectID, level int) error
	UpdatePreferences(ctx context.Context, id primitive.ObjectID, prefs models.Preferences, phone string) error
	UpdateLastSeen(ctx context.Context, id primitive.ObjectID, at time.Time) error
	TopUsers(ctx context.Context, field string, limit int64) ([]models.User, error)
	CountAbove(ctx context.Context, field string, value float64) (int64, error)
	CommunityTotals(ctx context.Context) (repository.CommunityTotals, error)
}

type AlertStore interface {
	ExistsForDay(ctx context.Context, userID, itemID primitive.ObjectID, days int, since time.Time) (bool, error)
	Create(ctx context.Context, alert *models.Alert) error
	ListUnsent(ctx context.Context, limit int64) ([]models.Alert, error)
	MarkDelivery(ctx context.Context, id primitive.ObjectID, emailSent, whatsappSent bool, at time.Time) error
	MarkUndeliverable(ctx context.Context, id primitive.ObjectID, reason string) error
	DeleteByItem(ctx context.Context, itemID primitive.ObjectID) error
	ListForUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) ([]models.Alert, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteForUser(ctx context.Context, id, userID primitive.ObjectID) error
}

type AchievementStore interface {
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Achievement, error)
	Create(ctx context.Context, a *models.Achievement) error
}

type ActivityStore interface {
	CreateActivity(ctx context.Context, activity *models.Activity) error
	GetUserActivities(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Activity, error)
}

// EmailSender is satisfied by *email.Sender.
type EmailSender interface {
	Send(ctx context.Context, msg email.Message) error
}

// WhatsAppSender is satisfied by *whatsapp.Client.
type WhatsAppSender interface {
	Send(ctx context.Context, phone, body string) error
}

// AlertPublisher pushes freshly created alerts to connected clients.
type AlertPublisher interface {
	Publish(userID primitive.ObjectID, alert models.Alert)
}

var (
	_ ItemStore        = (*repository.ItemRepository)(nil)
	_ UserStore        = (*repository.UserRepository)(nil)
	_ AlertStore       = (*repository.AlertRepository)(nil)
	_ AchievementStore = (*repository.AchievementRepository)(nil)
	_ ActivityStore    = (*repository.ActivityRepository)(nil)
)
