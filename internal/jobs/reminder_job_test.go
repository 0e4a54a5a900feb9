package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	summary services.ScanSummary
	err     error
	calls   atomic.Int32
	active  atomic.Int32
	overlap atomic.Bool
}

func (g *stubGenerator) GenerateAlerts(context.Context) (services.ScanSummary, error) {
	g.calls.Add(1)
	if g.active.Add(1) > 1 {
		g.overlap.Store(true)
	}
	time.Sleep(5 * time.Millisecond)
	g.active.Add(-1)
	return g.summary, g.err
}

type stubDispatcher struct {
	summary services.DispatchSummary
	err     error
	calls   atomic.Int32
}

func (d *stubDispatcher) DispatchPending(context.Context) (services.DispatchSummary, error) {
	d.calls.Add(1)
	return d.summary, d.err
}

func TestReminderJob_RunsGeneratorThenDispatcher(t *testing.T) {
	gen := &stubGenerator{summary: services.ScanSummary{Users: 2, AlertsCreated: 3}}
	disp := &stubDispatcher{summary: services.DispatchSummary{Pending: 3, Sent: 3}}

	report, err := NewReminderJob(gen, disp).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scan.AlertsCreated)
	assert.Equal(t, 3, report.Dispatch.Sent)
	assert.NotEmpty(t, report.Duration)
}

func TestReminderJob_DispatchesEvenWhenScanFails(t *testing.T) {
	gen := &stubGenerator{err: errors.New("users unavailable")}
	disp := &stubDispatcher{}

	_, err := NewReminderJob(gen, disp).Run(context.Background())

	assert.ErrorContains(t, err, "users unavailable")
	assert.Equal(t, int32(1), disp.calls.Load())
}

func TestReminderJob_RunsDoNotOverlap(t *testing.T) {
	gen := &stubGenerator{}
	job := NewReminderJob(gen, &stubDispatcher{})

	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		go func() {
			_, _ = job.Run(context.Background())
			done <- struct{}{}
		}()
	}
	for i := 0; i < 3; i++ {
		<-done
	}

	assert.Equal(t, int32(3), gen.calls.Load())
	assert.False(t, gen.overlap.Load())
}
