package services

import (
	"context"
	"math"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/expiry"
	"github.com/Dias221467/food-expiry-tracker/internal/gamification"
	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryBreakdown struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
	Consumed int    `json:"consumed"`
	Expired  int    `json:"expired"`
}

type Overview struct {
	TotalItems         int                       `json:"totalItems"`
	ByStatus           map[models.ItemStatus]int `json:"byStatus"`
	ByCategory         []CategoryBreakdown       `json:"byCategory"`
	ItemsSaved         int                       `json:"itemsSaved"`
	ItemsWasted        int                       `json:"itemsWasted"`
	MoneySaved         float64                   `json:"moneySaved"`
	WasteReductionRate float64                   `json:"wasteReductionRate"`
	InventoryValue     float64                   `json:"inventoryValue"`
	Impact             gamification.Impact       `json:"impact"`
}

type AnalyticsService struct {
	items ItemStore
	users UserStore
	now   func() time.Time
}

func NewAnalyticsService(items ItemStore, users UserStore) *AnalyticsService {
	return &AnalyticsService{items: items, users: users, now: time.Now}
}

// SetClock replaces the service clock. Day boundaries follow the clock's location.
func (s *AnalyticsService) SetClock(now func() time.Time) {
	s.now = now
}

// Overview summarizes the user's inventory by status and category.
func (s *AnalyticsService) Overview(ctx context.Context, userID primitive.ObjectID) (*Overview, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := &Overview{
		TotalItems: len(items),
		ByStatus: map[models.ItemStatus]int{
			models.StatusFresh:        0,
			models.StatusExpiringSoon: 0,
			models.StatusExpired:      0,
			models.StatusConsumed:     0,
		},
		ItemsSaved:         user.Stats.ItemsSaved,
		ItemsWasted:        user.Stats.ItemsWasted,
		MoneySaved:         user.Stats.MoneySaved,
		WasteReductionRate: gamification.WasteReductionRate(user.Stats.ItemsSaved, user.Stats.ItemsWasted),
		Impact:             gamification.ImpactOf(user.Stats.ItemsSaved),
	}

	byCategory := map[string]*CategoryBreakdown{}
	var order []string
	for i := range items {
		status := expiry.DeriveStatus(items[i].Status, items[i].ExpiryDate, now)
		o.ByStatus[status]++

		c, ok := byCategory[items[i].Category]
		if !ok {
			c = &CategoryBreakdown{Category: items[i].Category}
			byCategory[items[i].Category] = c
			order = append(order, items[i].Category)
		}
		c.Total++
		switch status {
		case models.StatusConsumed:
			c.Consumed++
		case models.StatusExpired:
			c.Expired++
		}
		if status != models.StatusConsumed {
			o.InventoryValue += items[i].Price()
		}
	}

	o.ByCategory = make([]CategoryBreakdown, 0, len(order))
	for _, name := range order {
		o.ByCategory = append(o.ByCategory, *byCategory[name])
	}
	o.InventoryValue = math.Round(o.InventoryValue*100) / 100
	return o, nil
}
