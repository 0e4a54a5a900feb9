package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/errs"
	"github.com/Dias221467/food-expiry-tracker/internal/expiry"
	"github.com/Dias221467/food-expiry-tracker/internal/gamification"
	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"github.com/Dias221467/food-expiry-tracker/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultExpiringWindowDays = 7

// ItemInput carries the fields of a new item. Nil pointers take their defaults.
type ItemInput struct {
	Name           string
	Category       string
	Quantity       *float64
	Unit           string
	ExpiryDate     time.Time
	PurchaseDate   *time.Time
	EstimatedPrice *float64
	Notes          string
	Barcode        string
}

// ItemUpdate carries an edit; only non-nil fields change.
type ItemUpdate struct {
	Name           *string
	Category       *string
	Quantity       *float64
	Unit           *string
	ExpiryDate     *time.Time
	EstimatedPrice *float64
	Notes          *string
}

type ItemQuery struct {
	Status   models.ItemStatus
	Category string
	Sort     string
}

type ItemCounts struct {
	Total        int          `json:"total"`
	Fresh        int          `json:"fresh"`
	ExpiringSoon int          `json:"expiringSoon"`
	Expired      int          `json:"expired"`
	Consumed     int          `json:"consumed"`
	Stats        models.Stats `json:"userStats"`
}

type ConsumeResult struct {
	Item            *models.Item                `json:"item"`
	Outcome         gamification.ConsumeOutcome `json:"outcome"`
	Stats           models.Stats                `json:"stats"`
	NewAchievements []UnlockedAchievement       `json:"newAchievements"`
}

type ItemService struct {
	items        ItemStore
	users        UserStore
	alerts       AlertStore
	achievements *AchievementService
	activity     *ActivityService
	now          func() time.Time
}

func NewItemService(items ItemStore, users UserStore, alerts AlertStore, achievements *AchievementService, activity *ActivityService) *ItemService {
	return &ItemService{
		items:        items,
		users:        users,
		alerts:       alerts,
		achievements: achievements,
		activity:     activity,
		now:          time.Now,
	}
}

// SetClock replaces the service clock. Day boundaries follow the clock's location.
func (s *ItemService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateItem validates in, applies defaults, derives the status and stores the item.
func (s *ItemService) CreateItem(ctx context.Context, userID primitive.ObjectID, in ItemInput) (*models.Item, error) {
	now := s.now()
	item := &models.Item{
		UserID:         userID,
		Name:           strings.TrimSpace(in.Name),
		Category:       in.Category,
		Quantity:       1,
		Unit:           in.Unit,
		ExpiryDate:     in.ExpiryDate,
		PurchaseDate:   now,
		EstimatedPrice: in.EstimatedPrice,
		Notes:          in.Notes,
		Barcode:        in.Barcode,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if item.Category == "" {
		item.Category = models.DefaultCategory
	}
	if item.Unit == "" {
		item.Unit = models.DefaultUnit
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.PurchaseDate != nil {
		item.PurchaseDate = *in.PurchaseDate
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	expiry.Refresh(item, now)
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	logrus.WithFields(logrus.Fields{"userID": userID.Hex(), "itemID": item.ID.Hex()}).Info("Item created")
	s.afterChange(ctx, userID, models.ActivityItemAdded, item.ID, fmt.Sprintf("Added %s", item.Name))
	return item, nil
}

// GetItem returns one item of userID with a fresh status.
func (s *ItemService) GetItem(ctx context.Context, userID, id primitive.ObjectID) (*models.Item, error) {
	item, err := s.items.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, item, s.now())
	return item, nil
}

// ListItems returns the user's items. The status filter applies to freshly derived statuses.
func (s *ItemService) ListItems(ctx context.Context, userID primitive.ObjectID, q ItemQuery) ([]models.Item, error) {
	items, err := s.items.List(ctx, repository.ItemFilter{UserID: userID, Category: q.Category, Sort: q.Sort})
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := items[:0]
	for i := range items {
		s.refresh(ctx, &items[i], now)
		if q.Status == "" || items[i].Status == q.Status {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// ExpiringItems returns non-consumed items expiring within the next days days, today included.
func (s *ItemService) ExpiringItems(ctx context.Context, userID primitive.ObjectID, days int) ([]models.Item, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: days must not be negative", errs.ErrValidation)
	}
	items, err := s.items.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := []models.Item{}
	for i := range items {
		s.refresh(ctx, &items[i], now)
		if d := items[i].DaysUntilExpiry; d >= 0 && d <= days {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// UpdateItem applies upd to a non-consumed item and re-derives its status.
func (s *ItemService) UpdateItem(ctx context.Context, userID, id primitive.ObjectID, upd ItemUpdate) (*models.Item, error) {
	item, err := s.items.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if item.IsConsumed() {
		return nil, errs.ErrAlreadyConsumed
	}

	if upd.Name != nil {
		item.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Category != nil {
		item.Category = *upd.Category
	}
	if upd.Quantity != nil {
		item.Quantity = *upd.Quantity
	}
	if upd.Unit != nil {
		item.Unit = *upd.Unit
	}
	if upd.ExpiryDate != nil {
		item.ExpiryDate = *upd.ExpiryDate
	}
	if upd.EstimatedPrice != nil {
		item.EstimatedPrice = upd.EstimatedPrice
	}
	if upd.Notes != nil {
		item.Notes = *upd.Notes
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	expiry.Refresh(item, s.now())
	if err := s.items.UpdateDetails(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ConsumeItem marks an item consumed, credits the user's stats and checks achievements.
// A second consume of the same item fails with errs.ErrAlreadyConsumed and changes nothing.
func (s *ItemService) ConsumeItem(ctx context.Context, userID, id primitive.ObjectID) (*ConsumeResult, error) {
	now := s.now()

	item, err := s.items.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	stats, outcome, err := gamification.OnConsume(user.Stats, *item, now)
	if err != nil {
		return nil, err
	}

	before, err := s.items.MarkConsumed(ctx, id, userID, now)
	if err != nil {
		return nil, err
	}
	stats, err = applyStats(ctx, s.users, userID, gamification.Delta(user.Stats, stats))
	if err != nil {
		if rerr := s.items.RevertConsumed(ctx, id, userID, before.Status); rerr != nil {
			logrus.WithError(rerr).WithField("itemID", id.Hex()).Error("Failed to revert consume after stats error")
		}
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}

	item.Status = models.StatusConsumed
	item.ConsumedAt = &now
	item.UpdatedAt = now
	item.DaysUntilExpiry = outcome.DaysUntilExpiry

	verb := "Saved"
	if !outcome.Saved {
		verb = "Finished expired"
	}
	logrus.WithFields(logrus.Fields{
		"userID": userID.Hex(),
		"itemID": id.Hex(),
		"saved":  outcome.Saved,
	}).Info("Item consumed")

	res := &ConsumeResult{Item: item, Outcome: outcome, Stats: stats, NewAchievements: []UnlockedAchievement{}}
	if s.activity != nil {
		_ = s.activity.LogActivity(ctx, userID, models.ActivityItemConsumed, id, fmt.Sprintf("%s %s", verb, item.Name))
	}
	if s.achievements != nil {
		check, err := s.achievements.Check(ctx, userID)
		if err != nil {
			logrus.WithError(err).WithField("userID", userID.Hex()).Warn("Achievement check after consume failed")
		} else {
			res.NewAchievements = check.NewlyUnlocked
		}
	}
	return res, nil
}

// DeleteItem removes the item and every alert that refers to it.
func (s *ItemService) DeleteItem(ctx context.Context, userID, id primitive.ObjectID) error {
	if err := s.items.Delete(ctx, id, userID); err != nil {
		return err
	}
	if err := s.alerts.DeleteByItem(ctx, id); err != nil {
		logrus.WithError(err).WithField("itemID", id.Hex()).Error("Failed to delete alerts of removed item")
	}
	if s.activity != nil {
		_ = s.activity.LogActivity(ctx, userID, models.ActivityItemDeleted, id, "Removed an item")
	}
	return nil
}

// Counts returns per-status counts of the user's items and a snapshot of their stats.
func (s *ItemService) Counts(ctx context.Context, userID primitive.ObjectID) (*ItemCounts, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c := &ItemCounts{Total: len(items), Stats: user.Stats}
	for i := range items {
		switch expiry.DeriveStatus(items[i].Status, items[i].ExpiryDate, now) {
		case models.StatusFresh:
			c.Fresh++
		case models.StatusExpiringSoon:
			c.ExpiringSoon++
		case models.StatusExpired:
			c.Expired++
		case models.StatusConsumed:
			c.Consumed++
		}
	}
	return c, nil
}

// refresh re-derives the item's status and persists a change. Persisting is best effort;
// the caller still gets the fresh status.
func (s *ItemService) refresh(ctx context.Context, item *models.Item, now time.Time) {
	if !expiry.Refresh(item, now) {
		return
	}
	if err := s.items.UpdateStatus(ctx, item.ID, item.Status); err != nil {
		logrus.WithError(err).WithField("itemID", item.ID.Hex()).Warn("Failed to persist derived status")
	}
}

func (s *ItemService) afterChange(ctx context.Context, userID primitive.ObjectID, kind string, target primitive.ObjectID, msg string) {
	if s.activity != nil {
		_ = s.activity.LogActivity(ctx, userID, kind, target, msg)
	}
	if s.achievements != nil {
		if _, err := s.achievements.Check(ctx, userID); err != nil {
			logrus.WithError(err).WithField("userID", userID.Hex()).Warn("Achievement check failed")
		}
	}
}

func validateItem(item *models.Item) error {
	switch {
	case item.Name == "":
		return fmt.Errorf("%w: name is required", errs.ErrValidation)
	case item.ExpiryDate.IsZero():
		return fmt.Errorf("%w: expiryDate is required", errs.ErrValidation)
	case item.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", errs.ErrValidation)
	case item.EstimatedPrice != nil && *item.EstimatedPrice < 0:
		return fmt.Errorf("%w: estimatedPrice must not be negative", errs.ErrValidation)
	case len([]rune(item.Notes)) > models.MaxNotesLength:
		return fmt.Errorf("%w: notes must be at most %d characters", errs.ErrValidation, models.MaxNotesLength)
	}
	if _, ok := models.AllowedCategories[item.Category]; !ok {
		return fmt.Errorf("%w: unknown category %q", errs.ErrValidation, item.Category)
	}
	if _, ok := models.AllowedUnits[item.Unit]; !ok {
		return fmt.Errorf("%w: unknown unit %q", errs.ErrValidation, item.Unit)
	}
	return nil
}
