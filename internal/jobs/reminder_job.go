package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/services"
	"github.com/sirupsen/logrus"
)

// AlertGenerator is satisfied by *services.AlertService.
type AlertGenerator interface {
	GenerateAlerts(ctx context.Context) (services.ScanSummary, error)
}

// AlertDispatcher is satisfied by *services.NotificationDispatcher.
type AlertDispatcher interface {
	DispatchPending(ctx context.Context) (services.DispatchSummary, error)
}

// RunReport is what one reminder run produced.
type RunReport struct {
	StartedAt time.Time                `json:"startedAt"`
	Duration  string                   `json:"duration"`
	Scan      services.ScanSummary     `json:"scan"`
	Dispatch  services.DispatchSummary `json:"dispatch"`
}

// ReminderJob generates the day's alerts and then delivers every unsent one. The cron
// schedule and the HTTP cron endpoint share one instance, and runs never overlap.
type ReminderJob struct {
	Generator  AlertGenerator
	Dispatcher AlertDispatcher

	mu sync.Mutex
}

// NewReminderJob creates a new instance of ReminderJob
func NewReminderJob(generator AlertGenerator, dispatcher AlertDispatcher) *ReminderJob {
	return &ReminderJob{
		Generator:  generator,
		Dispatcher: dispatcher,
	}
}

// Run performs one full reminder pass. A failed scan still lets previously created
// alerts be dispatched.
func (j *ReminderJob) Run(ctx context.Context) (RunReport, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	report := RunReport{StartedAt: time.Now()}
	logrus.Info("Reminder job started")

	scan, scanErr := j.Generator.GenerateAlerts(ctx)
	report.Scan = scan
	if scanErr != nil {
		logrus.WithError(scanErr).Error("Alert generation failed")
	}

	dispatch, dispatchErr := j.Dispatcher.DispatchPending(ctx)
	report.Dispatch = dispatch
	report.Duration = time.Since(report.StartedAt).Round(time.Millisecond).String()

	switch {
	case scanErr != nil:
		return report, fmt.Errorf("reminder job: %w", scanErr)
	case dispatchErr != nil:
		return report, fmt.Errorf("reminder job: %w", dispatchErr)
	}

	logrus.WithFields(logrus.Fields{
		"alerts_created": scan.AlertsCreated,
		"alerts_sent":    dispatch.Sent,
		"duration":       report.Duration,
	}).Info("Reminder job completed")
	return report, nil
}
