package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/errs"
	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LeaderboardField maps a leaderboard type to the stats field it ranks by.
var LeaderboardField = map[string]string{
	"points":     "stats.points",
	"itemsSaved": "stats.items_saved",
	"streak":     "stats.current_streak",
	"co2":        "stats.items_saved",
}

// CommunityTotals are sums over every user's stats.
type CommunityTotals struct {
	Users       int64   `bson:"users"`
	ItemsSaved  int64   `bson:"items_saved"`
	ItemsWasted int64   `bson:"items_wasted"`
	MoneySaved  float64 `bson:"money_saved"`
}

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// CreateUser inserts a new user. A taken email maps to errs.ErrAlreadyExists.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	result, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return nil, errs.ErrAlreadyExists
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		logrus.WithError(err).Warn("Failed to find user")
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// ListNotifiable returns every user with notifications enabled.
func (r *UserRepository) ListNotifiable(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{"preferences.notifications_enabled": true}, options.Find())
}

// ApplyStats adds delta to the stored stats in a single update and returns the stats as
// stored afterwards. Concurrent deltas never overwrite each other.
func (r *UserRepository) ApplyStats(ctx context.Context, id primitive.ObjectID, delta models.StatsDelta) (models.Stats, error) {
	set := bson.M{"updated_at": time.Now()}
	update := bson.M{
		"$inc": bson.M{
			"stats.items_saved":  delta.ItemsSaved,
			"stats.items_wasted": delta.ItemsWasted,
			"stats.money_saved":  delta.MoneySaved,
			"stats.points":       delta.Points,
		},
		"$set": set,
	}
	if s := delta.Streak; s != nil {
		set["stats.current_streak"] = s.Current
		set["stats.last_active_date"] = s.LastActive
		update["$max"] = bson.M{"stats.longest_streak": s.Current}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(bson.M{"stats": 1})

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Stats{}, errs.ErrNotFound
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{"userID": id.Hex(), "error": err}).Error("Failed to update user stats")
		return models.Stats{}, fmt.Errorf("failed to update stats: %w", err)
	}
	return user.Stats, nil
}

// SetLevel stores level unless a higher one is already stored.
func (r *UserRepository) SetLevel(ctx context.Context, id primitive.ObjectID, level int) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$max": bson.M{"stats.level": level}},
	)
	if err != nil {
		return fmt.Errorf("failed to update level: %w", err)
	}
	return nil
}

// UpdatePreferences stores notification preferences and the WhatsApp phone number.
func (r *UserRepository) UpdatePreferences(ctx context.Context, id primitive.ObjectID, prefs models.Preferences, phone string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"preferences": prefs, "phone_number": phone, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// UpdateLastSeen records when the user last made an authenticated request.
func (r *UserRepository) UpdateLastSeen(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_seen_at": at}})
	if err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}
	return nil
}

// TopUsers returns up to limit users ordered by field descending.
func (r *UserRepository) TopUsers(ctx context.Context, field string, limit int64) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: -1}, {Key: "created_at", Value: 1}}).
		SetLimit(limit).
		SetProjection(bson.M{"hashed_password": 0, "preferences": 0, "phone_number": 0})
	return r.find(ctx, bson.M{}, opts)
}

// CountAbove counts users whose field is strictly greater than value.
func (r *UserRepository) CountAbove(ctx context.Context, field string, value float64) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{field: bson.M{"$gt": value}})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// CommunityTotals sums the stats of every user in one aggregation.
func (r *UserRepository) CommunityTotals(ctx context.Context) (CommunityTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "users", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "items_saved", Value: bson.D{{Key: "$sum", Value: "$stats.items_saved"}}},
			{Key: "items_wasted", Value: bson.D{{Key: "$sum", Value: "$stats.items_wasted"}}},
			{Key: "money_saved", Value: bson.D{{Key: "$sum", Value: "$stats.money_saved"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return CommunityTotals{}, fmt.Errorf("failed to aggregate community stats: %w", err)
	}
	defer cursor.Close(ctx)

	var totals CommunityTotals
	if cursor.Next(ctx) {
		if err := cursor.Decode(&totals); err != nil {
			return CommunityTotals{}, fmt.Errorf("failed to decode community stats: %w", err)
		}
	}
	return totals, cursor.Err()
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, user)
	}
	return users, cursor.Err()
}
