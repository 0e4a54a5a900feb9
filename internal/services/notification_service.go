package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/errs"
	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxReminderDay = 30

// PreferencesView is what a user sees and edits in notification settings.
type PreferencesView struct {
	models.Preferences
	PhoneNumber string `json:"phoneNumber"`
}

// NotificationService serves the in-app alert inbox and notification settings.
type NotificationService struct {
	alerts   AlertStore
	users    UserStore
	email    EmailSender
	whatsapp WhatsAppSender
	timeout  time.Duration
}

func NewNotificationService(alerts AlertStore, users UserStore, mail EmailSender, wa WhatsAppSender, timeout time.Duration) *NotificationService {
	if timeout <= 0 {
		timeout = defaultDeliveryTimeout
	}
	return &NotificationService{
		alerts:   alerts,
		users:    users,
		email:    mail,
		whatsapp: wa,
		timeout:  timeout,
	}
}

// GetUserAlerts returns the user's alerts, newest first
func (s *NotificationService) GetUserAlerts(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) ([]models.Alert, error) {
	return s.alerts.ListForUser(ctx, userID, unreadOnly)
}

func (s *NotificationService) MarkAlertAsRead(ctx context.Context, userID, alertID primitive.ObjectID) error {
	return s.alerts.MarkRead(ctx, alertID, userID)
}

func (s *NotificationService) DeleteAlert(ctx context.Context, userID, alertID primitive.ObjectID) error {
	return s.alerts.DeleteForUser(ctx, alertID, userID)
}

func (s *NotificationService) GetPreferences(ctx context.Context, userID primitive.ObjectID) (*PreferencesView, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs := user.Preferences
	prefs.ReminderDays = prefs.Thresholds()
	return &PreferencesView{Preferences: prefs, PhoneNumber: user.PhoneNumber}, nil
}

// UpdatePreferences replaces the user's notification settings. Reminder days are
// de-duplicated and sorted descending; WhatsApp requires a phone number.
func (s *NotificationService) UpdatePreferences(ctx context.Context, userID primitive.ObjectID, in PreferencesView) (*PreferencesView, error) {
	days, err := normalizeReminderDays(in.ReminderDays)
	if err != nil {
		return nil, err
	}
	in.ReminderDays = days
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.WhatsappNotifications && in.PhoneNumber == "" {
		return nil, fmt.Errorf("%w: phone number is required for WhatsApp notifications", errs.ErrValidation)
	}

	if err := s.users.UpdatePreferences(ctx, userID, in.Preferences, in.PhoneNumber); err != nil {
		return nil, err
	}
	logrus.WithField("userID", userID.Hex()).Info("Notification preferences updated")
	return &in, nil
}

// SendTestEmail sends a one-off email to the user and reports the outcome.
func (s *NotificationService) SendTestEmail(ctx context.Context, userID primitive.ObjectID) (DeliveryOutcome, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return DeliveryOutcome{}, err
	}
	if s.email == nil {
		return failed(errChannelNotConfigured), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.email.Send(ctx, testEmail(user)); err != nil {
		return failed(err), nil
	}
	return DeliveryOutcome{Success: true}, nil
}

// SendTestWhatsApp sends a one-off WhatsApp message to the user's phone number.
func (s *NotificationService) SendTestWhatsApp(ctx context.Context, userID primitive.ObjectID) (DeliveryOutcome, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return DeliveryOutcome{}, err
	}
	if user.PhoneNumber == "" {
		return DeliveryOutcome{}, fmt.Errorf("%w: phone number not provided", errs.ErrValidation)
	}
	if s.whatsapp == nil {
		return failed(errChannelNotConfigured), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.whatsapp.Send(ctx, user.PhoneNumber, testWhatsApp(user)); err != nil {
		return failed(err), nil
	}
	return DeliveryOutcome{Success: true}, nil
}

func normalizeReminderDays(days []int) ([]int, error) {
	if days == nil {
		return append([]int(nil), models.DefaultReminderDays...), nil
	}
	seen := make(map[int]struct{}, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > maxReminderDay {
			return nil, fmt.Errorf("%w: reminder days must be between 0 and %d", errs.ErrValidation, maxReminderDay)
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}
