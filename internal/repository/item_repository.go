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

// ItemFilter narrows a user's item listing. Status filtering happens after
// statuses are re-derived, so it is not part of the query.
type ItemFilter struct {
	UserID   primitive.ObjectID
	Category string
	Sort     string
}

// ItemRepository handles database operations related to inventory items.
type ItemRepository struct {
	collection *mongo.Collection
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{
		collection: db.Collection("items"),
	}
}

// Create inserts a new item and assigns its ID.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert item")
		return fmt.Errorf("failed to insert item: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = id
	}
	return nil
}

// GetByIDForUser returns the item only when it belongs to userID.
func (r *ItemRepository) GetByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Item, error) {
	return r.findOne(ctx, bson.M{"_id": id, "user_id": userID})
}

// GetByID returns an item regardless of owner. Used by the background dispatcher.
func (r *ItemRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ItemRepository) findOne(ctx context.Context, filter bson.M) (*models.Item, error) {
	var item models.Item
	err := r.collection.FindOne(ctx, filter).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return &item, nil
}

// List returns a user's items, optionally limited to one category.
func (r *ItemRepository) List(ctx context.Context, f ItemFilter) ([]models.Item, error) {
	filter := bson.M{"user_id": f.UserID}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	return r.find(ctx, filter, options.Find().SetSort(sortFor(f.Sort)))
}

// ListActiveByUser returns every item of userID that has not been consumed.
func (r *ItemRepository) ListActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Item, error) {
	filter := bson.M{"user_id": userID, "status": bson.M{"$ne": models.StatusConsumed}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "expiry_date", Value: 1}}))
}

// ListByUser returns every item of userID, consumed ones included.
func (r *ItemRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Item, error) {
	return r.find(ctx, bson.M{"user_id": userID}, options.Find())
}

func (r *ItemRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Item, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

// UpdateDetails writes the editable fields and the derived status of a non-consumed item.
func (r *ItemRepository) UpdateDetails(ctx context.Context, item *models.Item) error {
	item.UpdatedAt = time.Now()
	set := bson.M{
		"name":            item.Name,
		"category":        item.Category,
		"quantity":        item.Quantity,
		"unit":            item.Unit,
		"expiry_date":     item.ExpiryDate,
		"notes":           item.Notes,
		"estimated_price": item.EstimatedPrice,
		"status":          item.Status,
		"updated_at":      item.UpdatedAt,
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": item.ID, "user_id": item.UserID, "status": bson.M{"$ne": models.StatusConsumed}},
		bson.M{"$set": set},
	)
	if err != nil {
		logrus.WithFields(logrus.Fields{"itemID": item.ID.Hex(), "error": err}).Error("Failed to update item")
		return fmt.Errorf("failed to update item: %w", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// UpdateStatus persists a re-derived status. Consumed items are never touched.
func (r *ItemRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ItemStatus) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": models.StatusConsumed}},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update item status: %w", err)
	}
	return nil
}

// MarkConsumed flips the item to consumed only if it is not consumed yet, so two racing
// requests cannot both succeed. It returns the item as it was before the update.
func (r *ItemRepository) MarkConsumed(ctx context.Context, id, userID primitive.ObjectID, at time.Time) (*models.Item, error) {
	filter := bson.M{"_id": id, "user_id": userID, "status": bson.M{"$ne": models.StatusConsumed}}
	update := bson.M{"$set": bson.M{
		"status":      models.StatusConsumed,
		"consumed_at": at,
		"updated_at":  at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before models.Item
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrAlreadyConsumed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume item: %w", err)
	}
	return &before, nil
}

// RevertConsumed puts a consumed item back into status, undoing MarkConsumed.
func (r *ItemRepository) RevertConsumed(ctx context.Context, id, userID primitive.ObjectID, status models.ItemStatus) error {
	filter := bson.M{"_id": id, "user_id": userID, "status": models.StatusConsumed}
	update := bson.M{
		"$set":   bson.M{"status": status, "updated_at": time.Now()},
		"$unset": bson.M{"consumed_at": ""},
	}
	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to revert consume: %w", err)
	}
	return nil
}

// Delete removes an item owned by userID.
func (r *ItemRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		logrus.WithFields(logrus.Fields{"itemID": id.Hex(), "error": err}).Error("Failed to delete item")
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// CountAll returns the number of tracked items across all users.
func (r *ItemRepository) CountAll(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

func sortFor(key string) bson.D {
	switch key {
	case "name":
		return bson.D{{Key: "name", Value: 1}}
	case "newest":
		return bson.D{{Key: "created_at", Value: -1}}
	case "category":
		return bson.D{{Key: "category", Value: 1}, {Key: "expiry_date", Value: 1}}
	default:
		return bson.D{{Key: "expiry_date", Value: 1}}
	}
}
