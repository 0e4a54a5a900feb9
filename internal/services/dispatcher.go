package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/errs"
	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	defaultDeliveryTimeout = 15 * time.Second
	defaultDispatchBatch   = 500
	defaultMaxAttempts     = 5

	reasonNoChannel = "no channel enabled"
)

var errChannelNotConfigured = errors.New("channel not configured")

// DeliveryOutcome is the result of one delivery attempt on one channel.
type DeliveryOutcome struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func failed(err error) DeliveryOutcome {
	return DeliveryOutcome{Success: false, Error: err.Error()}
}

// Delivery collects the per-channel outcomes for one alert. A nil outcome means the
// channel was not attempted.
type Delivery struct {
	Email    *DeliveryOutcome `json:"email,omitempty"`
	WhatsApp *DeliveryOutcome `json:"whatsapp,omitempty"`
}

// DispatchSummary reports what one dispatch pass did.
type DispatchSummary struct {
	Pending       int `json:"pending"`
	Sent          int `json:"sent"`
	Unsent        int `json:"unsent"`
	Undeliverable int `json:"undeliverable"`
	Failures      int `json:"failures"`
}

type DispatcherOptions struct {
	Timeout time.Duration
	Batch   int64
	// MaxAttempts is how many failed passes an alert gets before it is parked as undeliverable.
	MaxAttempts int
	FrontendURL string
}

// NotificationDispatcher delivers unsent alerts over email and WhatsApp.
type NotificationDispatcher struct {
	alerts   AlertStore
	users    UserStore
	items    ItemStore
	email    EmailSender
	whatsapp WhatsAppSender
	opts     DispatcherOptions
	now      func() time.Time
}

// NewNotificationDispatcher wires the dispatcher. Either sender may be nil, in which case
// attempts on that channel fail with "channel not configured".
func NewNotificationDispatcher(alerts AlertStore, users UserStore, items ItemStore, mail EmailSender, wa WhatsAppSender, opts DispatcherOptions) *NotificationDispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultDeliveryTimeout
	}
	if opts.Batch <= 0 {
		opts.Batch = defaultDispatchBatch
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	return &NotificationDispatcher{
		alerts:   alerts,
		users:    users,
		items:    items,
		email:    mail,
		whatsapp: wa,
		opts:     opts,
		now:      time.Now,
	}
}

// DispatchPending attempts delivery of a batch of unsent alerts. Alerts whose user or item
// is gone, or whose user has no channel enabled, are marked undeliverable and never retried.
// Alerts failing on every channel go to the back of the queue for the next pass until
// MaxAttempts is reached.
func (d *NotificationDispatcher) DispatchPending(ctx context.Context) (DispatchSummary, error) {
	pending, err := d.alerts.ListUnsent(ctx, d.opts.Batch)
	if err != nil {
		return DispatchSummary{}, fmt.Errorf("failed to list unsent alerts: %w", err)
	}

	summary := DispatchSummary{Pending: len(pending)}
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		alert := &pending[i]
		log := logrus.WithFields(logrus.Fields{"alertID": alert.ID.Hex(), "userID": alert.UserID.Hex()})

		user, item, reason, err := d.resolve(ctx, alert)
		if err != nil {
			log.WithError(err).Error("Failed to load alert references")
			summary.Failures++
			continue
		}
		if reason == "" && !hasEligibleChannel(alert, user) {
			reason = reasonNoChannel
		}
		if reason != "" {
			log.WithField("reason", reason).Warn("Alert is undeliverable")
			if err := d.alerts.MarkUndeliverable(ctx, alert.ID, reason); err != nil {
				log.WithError(err).Error("Failed to mark alert undeliverable")
				summary.Failures++
				continue
			}
			summary.Undeliverable++
			continue
		}

		delivery := d.Dispatch(ctx, alert, user, item)
		emailSent := alert.EmailSent || (delivery.Email != nil && delivery.Email.Success)
		whatsappSent := alert.WhatsappSent || (delivery.WhatsApp != nil && delivery.WhatsApp.Success)

		if err := d.alerts.MarkDelivery(ctx, alert.ID, emailSent, whatsappSent, d.now()); err != nil {
			log.WithError(err).Error("Failed to store delivery flags")
			summary.Failures++
			continue
		}
		if emailSent || whatsappSent {
			summary.Sent++
			continue
		}

		log.WithFields(logrus.Fields{"email": delivery.Email, "whatsapp": delivery.WhatsApp}).Warn("Alert not delivered on any channel")
		if alert.Attempts+1 < d.opts.MaxAttempts {
			summary.Unsent++
			continue
		}
		reason = fmt.Sprintf("delivery failed after %d attempts", alert.Attempts+1)
		if err := d.alerts.MarkUndeliverable(ctx, alert.ID, reason); err != nil {
			log.WithError(err).Error("Failed to mark alert undeliverable")
			summary.Failures++
			continue
		}
		summary.Undeliverable++
	}

	logrus.WithFields(logrus.Fields{
		"pending":       summary.Pending,
		"sent":          summary.Sent,
		"unsent":        summary.Unsent,
		"undeliverable": summary.Undeliverable,
		"failures":      summary.Failures,
	}).Info("Alert dispatch completed")
	return summary, nil
}

// resolve loads the alert's user and item. A non-empty reason means a reference is broken.
func (d *NotificationDispatcher) resolve(ctx context.Context, alert *models.Alert) (*models.User, *models.Item, string, error) {
	user, err := d.users.GetUserByID(ctx, alert.UserID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil, "user not found", nil
	}
	if err != nil {
		return nil, nil, "", err
	}
	item, err := d.items.GetByID(ctx, alert.ItemID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil, "item not found", nil
	}
	if err != nil {
		return nil, nil, "", err
	}
	return user, item, "", nil
}

// hasEligibleChannel reports whether Dispatch would attempt at least one channel.
func hasEligibleChannel(alert *models.Alert, user *models.User) bool {
	email := user.Preferences.EmailNotifications && !alert.EmailSent
	whatsapp := user.Preferences.WhatsappNotifications && user.PhoneNumber != "" && !alert.WhatsappSent
	return email || whatsapp
}

// Dispatch attempts every eligible channel for alert concurrently. Channels already marked
// sent on the alert are not attempted again.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, alert *models.Alert, user *models.User, item *models.Item) Delivery {
	var (
		res Delivery
		wg  sync.WaitGroup
	)

	if user.Preferences.EmailNotifications && !alert.EmailSent {
		msg := alertEmail(user, item, alert.DaysUntilExpiry, d.opts.FrontendURL)
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := d.attempt(ctx, d.email != nil, func(ctx context.Context) error {
				return d.email.Send(ctx, msg)
			})
			res.Email = &out
		}()
	}

	if user.Preferences.WhatsappNotifications && user.PhoneNumber != "" && !alert.WhatsappSent {
		body := alertWhatsApp(item, alert.DaysUntilExpiry)
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := d.attempt(ctx, d.whatsapp != nil, func(ctx context.Context) error {
				return d.whatsapp.Send(ctx, user.PhoneNumber, body)
			})
			res.WhatsApp = &out
		}()
	}

	wg.Wait()
	return res
}

// attempt runs send under the delivery timeout and turns any error or panic into a
// failed outcome.
func (d *NotificationDispatcher) attempt(ctx context.Context, configured bool, send func(context.Context) error) (out DeliveryOutcome) {
	if !configured {
		return failed(errChannelNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			out = failed(fmt.Errorf("sender panicked: %v", r))
		}
	}()

	if err := send(ctx); err != nil {
		return failed(err)
	}
	return DeliveryOutcome{Success: true}
}
