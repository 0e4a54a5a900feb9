package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderRunner is one reminder pass. cmd/server wraps *jobs.ReminderJob in a RunnerFunc.
type ReminderRunner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a plain function to ReminderRunner.
type RunnerFunc func(ctx context.Context) error

func (f RunnerFunc) Run(ctx context.Context) error { return f(ctx) }

// StartReminderCron schedules runner on spec (standard 5-field cron) in loc. When
// runOnStartup is set the runner is also fired once immediately in the background.
// The returned cron must be stopped on shutdown.
func StartReminderCron(spec string, loc *time.Location, runOnStartup bool, runner ReminderRunner) (*cron.Cron, error) {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))

	run := func() {
		if err := runner.Run(context.Background()); err != nil {
			logrus.WithError(err).Error("Scheduled reminder run failed")
		}
	}

	if _, err := c.AddFunc(spec, run); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	c.Start()
	logrus.WithFields(logrus.Fields{"schedule": spec, "timezone": loc.String()}).Info("Reminder cron started")

	if runOnStartup {
		go run()
	}
	return c, nil
}
