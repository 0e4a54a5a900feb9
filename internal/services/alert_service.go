package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/errs"
	"github.com/Dias221467/food-expiry-tracker/internal/expiry"
	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const defaultScanWorkers = 4

// ScanSummary reports what one alert generation run did.
type ScanSummary struct {
	Users         int `json:"users"`
	Items         int `json:"items"`
	StatusUpdates int `json:"statusUpdates"`
	AlertsCreated int `json:"alertsCreated"`
	Failures      int `json:"failures"`
}

func (s *ScanSummary) add(o ScanSummary) {
	s.Items += o.Items
	s.StatusUpdates += o.StatusUpdates
	s.AlertsCreated += o.AlertsCreated
	s.Failures += o.Failures
}

// AlertService scans every notifiable user's inventory, refreshes item statuses and
// creates deduplicated reminder alerts.
type AlertService struct {
	items     ItemStore
	users     UserStore
	alerts    AlertStore
	publisher AlertPublisher
	workers   int
	now       func() time.Time
}

func NewAlertService(items ItemStore, users UserStore, alerts AlertStore, workers int) *AlertService {
	if workers <= 0 {
		workers = defaultScanWorkers
	}
	return &AlertService{
		items:   items,
		users:   users,
		alerts:  alerts,
		workers: workers,
		now:     time.Now,
	}
}

// SetClock replaces the service clock. Day boundaries follow the clock's location.
func (s *AlertService) SetClock(now func() time.Time) {
	s.now = now
}

// SetPublisher attaches a live feed that receives every created alert.
func (s *AlertService) SetPublisher(p AlertPublisher) {
	s.publisher = p
}

// GenerateAlerts runs one scan. A failing user or item is logged and counted but never
// stops the run; only failing to list users aborts it.
func (s *AlertService) GenerateAlerts(ctx context.Context) (ScanSummary, error) {
	now := s.now()

	users, err := s.users.ListNotifiable(ctx)
	if err != nil {
		return ScanSummary{}, fmt.Errorf("failed to list users: %w", err)
	}

	summary := ScanSummary{Users: len(users)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range users {
		user := users[i]
		g.Go(func() error {
			res := s.scanUser(ctx, &user, now)
			mu.Lock()
			summary.add(res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	logrus.WithFields(logrus.Fields{
		"users":          summary.Users,
		"items":          summary.Items,
		"status_updates": summary.StatusUpdates,
		"alerts_created": summary.AlertsCreated,
		"failures":       summary.Failures,
	}).Info("Alert generation completed")

	return summary, ctx.Err()
}

func (s *AlertService) scanUser(ctx context.Context, user *models.User, now time.Time) ScanSummary {
	var res ScanSummary
	log := logrus.WithField("userID", user.ID.Hex())

	if ctx.Err() != nil {
		return res
	}

	items, err := s.items.ListActiveByUser(ctx, user.ID)
	if err != nil {
		log.WithError(err).Error("Failed to load items for alert scan")
		res.Failures++
		return res
	}

	today := expiry.StartOfDay(now)
	for i := range items {
		item := &items[i]
		res.Items++

		if expiry.Refresh(item, now) {
			if err := s.items.UpdateStatus(ctx, item.ID, item.Status); err != nil {
				log.WithError(err).WithField("itemID", item.ID.Hex()).Error("Failed to persist item status")
				res.Failures++
				continue
			}
			res.StatusUpdates++
		}

		d := item.DaysUntilExpiry
		if !user.Preferences.RemindsAt(d) {
			continue
		}

		exists, err := s.alerts.ExistsForDay(ctx, user.ID, item.ID, d, today)
		if err != nil {
			log.WithError(err).WithField("itemID", item.ID.Hex()).Error("Failed to check existing alert")
			res.Failures++
			continue
		}
		if exists {
			continue
		}

		alert := NewAlert(user.ID, item, d, now)
		if err := s.alerts.Create(ctx, &alert); err != nil {
			if errors.Is(err, errs.ErrAlreadyExists) {
				continue
			}
			log.WithError(err).WithField("itemID", item.ID.Hex()).Error("Failed to create alert")
			res.Failures++
			continue
		}
		res.AlertsCreated++

		if s.publisher != nil {
			s.publisher.Publish(user.ID, alert)
		}
	}
	return res
}

// NewAlert builds the alert for item crossing the days threshold at now.
func NewAlert(userID primitive.ObjectID, item *models.Item, days int, now time.Time) models.Alert {
	return models.Alert{
		UserID:          userID,
		ItemID:          item.ID,
		Type:            AlertTypeFor(days),
		Message:         AlertMessage(item.Name, days),
		DaysUntilExpiry: days,
		TriggerDate:     now,
		Priority:        PriorityFor(days),
		DedupKey:        DedupKey(userID, item.ID, days, now),
		CreatedAt:       now,
	}
}

func AlertTypeFor(days int) models.AlertType {
	if days <= 0 {
		return models.AlertExpired
	}
	return models.AlertExpiringSoon
}

func PriorityFor(days int) models.AlertPriority {
	switch {
	case days <= 1:
		return models.PriorityHigh
	case days <= 3:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func AlertMessage(name string, days int) string {
	switch {
	case days == 0:
		return fmt.Sprintf("%s expires today!", name)
	case days < 0:
		return fmt.Sprintf("%s expired %d day(s) ago", name, -days)
	case days == 1:
		return fmt.Sprintf("%s expires tomorrow", name)
	default:
		return fmt.Sprintf("%s expires in %d days", name, days)
	}
}

// DedupKey identifies the single alert allowed per user, item, threshold and calendar day.
func DedupKey(userID, itemID primitive.ObjectID, days int, now time.Time) string {
	return fmt.Sprintf("%s:%s:%d:%s", userID.Hex(), itemID.Hex(), days, now.Format("2006-01-02"))
}
