package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/food-expiry-tracker/internal/errs"
	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AchievementRepository struct {
	collection *mongo.Collection
}

func NewAchievementRepository(db *mongo.Database) *AchievementRepository {
	return &AchievementRepository{
		collection: db.Collection("achievements"),
	}
}

// ListByUser returns the unlocked achievements of userID in unlock order.
func (r *AchievementRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Achievement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "unlocked_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	defer cursor.Close(ctx)

	achievements := []models.Achievement{}
	if err := cursor.All(ctx, &achievements); err != nil {
		return nil, fmt.Errorf("failed to decode achievements: %w", err)
	}
	return achievements, nil
}

// Create records an unlock. The (user_id, type) unique index turns a second unlock
// into errs.ErrAlreadyExists.
func (r *AchievementRepository) Create(ctx context.Context, a *models.Achievement) error {
	result, err := r.collection.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert achievement: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		a.ID = id
	}
	return nil
}
