package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"notifyd/internal/clock"
	"notifyd/internal/metrics"
	"notifyd/internal/notification"

	"github.com/google/uuid"
)

// Activator flips pending task reminders to sent once their show-at instant
// has passed. Sent and read reminders are never touched again.
type Activator struct {
	Store   notification.Store
	Clock   clock.Clock
	Metrics *metrics.Metrics

	Interval time.Duration
}

// Run executes a pass immediately, then once per interval until ctx is
// cancelled, with the same catch-log-continue policy as the reconciler.
func (a *Activator) Run(ctx context.Context) {
	ticker := time.NewTicker(a.Interval)
	defer ticker.Stop()

	for {
		if err := a.RunOnce(ctx); err != nil {
			log.Printf("[activator] run failed: %v\n", err)
			a.Metrics.RunFailures.WithLabelValues("activator").Inc()
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce activates every due pending task reminder in one batch.
func (a *Activator) RunOnce(ctx context.Context) error {
	now := a.Clock.Now()

	due, err := a.Store.ListDuePending(ctx, notification.TypeTask, now)
	if err != nil {
		return fmt.Errorf("list due reminders: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(due))
	for _, n := range due {
		ids = append(ids, n.ID)
	}

	if err := a.Store.MarkSent(ctx, ids, now); err != nil {
		return fmt.Errorf("mark reminders sent: %w", err)
	}

	a.Metrics.RemindersActivated.Add(float64(len(ids)))
	log.Printf("[activator] activated %d reminders\n", len(ids))
	return nil
}
