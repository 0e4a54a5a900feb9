package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/errs"
	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AlertRepository struct {
	collection *mongo.Collection
}

func NewAlertRepository(db *mongo.Database) *AlertRepository {
	return &AlertRepository{
		collection: db.Collection("alerts"),
	}
}

// ExistsForDay reports whether an alert for (user, item, days) was triggered at or after since.
func (r *AlertRepository) ExistsForDay(ctx context.Context, userID, itemID primitive.ObjectID, days int, since time.Time) (bool, error) {
	filter := bson.M{
		"user_id":           userID,
		"item_id":           itemID,
		"days_until_expiry": days,
		"trigger_date":      bson.M{"$gte": since},
	}
	err := r.collection.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up alert: %w", err)
	}
	return true, nil
}

// Create inserts an alert. A dedup_key collision maps to errs.ErrAlreadyExists.
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	if alert.TriggerDate.IsZero() {
		alert.TriggerDate = alert.CreatedAt
	}

	result, err := r.collection.InsertOne(ctx, alert)
	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to insert alert")
		return fmt.Errorf("failed to create alert: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		alert.ID = id
	}
	return nil
}

// ListUnsent returns alerts awaiting delivery. Never attempted alerts come first (a missing
// last_attempt_at sorts lowest), then the least recently attempted, so a failing alert moves
// to the back of the queue.
func (r *AlertRepository) ListUnsent(ctx context.Context, limit int64) ([]models.Alert, error) {
	filter := bson.M{"sent": false, "undeliverable": bson.M{"$ne": true}}
	opts := options.Find().SetSort(bson.D{{Key: "last_attempt_at", Value: 1}, {Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, filter, opts)
}

// MarkDelivery stores the channel flags of an attempt made at; sent follows from either
// channel succeeding.
func (r *AlertRepository) MarkDelivery(ctx context.Context, id primitive.ObjectID, emailSent, whatsappSent bool, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"email_sent":      emailSent,
			"whatsapp_sent":   whatsappSent,
			"sent":            emailSent || whatsappSent,
			"last_attempt_at": at,
		},
		"$inc": bson.M{"attempts": 1},
	}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("failed to update alert delivery: %w", err)
	}
	return nil
}

// MarkUndeliverable parks an alert that can never be delivered; it leaves the unsent queue.
func (r *AlertRepository) MarkUndeliverable(ctx context.Context, id primitive.ObjectID, reason string) error {
	set := bson.M{"undeliverable": true, "undeliverable_reason": reason}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("failed to mark alert undeliverable: %w", err)
	}
	return nil
}

// DeleteByItem removes every alert that refers to itemID.
func (r *AlertRepository) DeleteByItem(ctx context.Context, itemID primitive.ObjectID) error {
	res, err := r.collection.DeleteMany(ctx, bson.M{"item_id": itemID})
	if err != nil {
		return fmt.Errorf("failed to delete alerts of item: %w", err)
	}
	logrus.WithField("itemID", itemID.Hex()).Debugf("Deleted %d alerts", res.DeletedCount)
	return nil
}

// ListForUser returns a user's alerts, newest first.
func (r *AlertRepository) ListForUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) ([]models.Alert, error) {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["read"] = false
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(100))
}

// MarkRead sets read on an alert owned by userID.
func (r *AlertRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteForUser deletes an alert owned by userID.
func (r *AlertRepository) DeleteForUser(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *AlertRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Alert, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}
	defer cursor.Close(ctx)

	alerts := []models.Alert{}
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}
	return alerts, nil
}
