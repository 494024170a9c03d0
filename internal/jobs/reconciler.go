package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"notifyd/internal/clock"
	"notifyd/internal/metrics"
	"notifyd/internal/notification"
	"notifyd/internal/task"

	"github.com/google/uuid"
)

// Reconciler periodically materializes pending reminders for upcoming task
// occurrences. It is purely additive: existing reminders are never mutated
// or deleted here.
type Reconciler struct {
	Feed    task.Feed
	Store   notification.Store
	Clock   clock.Clock
	Metrics *metrics.Metrics

	Interval       time.Duration
	Lead           time.Duration
	HorizonDays    int
	MaxOccurrences int
}

// Run executes a pass immediately, then once per interval until ctx is
// cancelled. A failed pass is logged and the loop keeps going; transient
// upstream or database trouble must never take the process down.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		if err := r.RunOnce(ctx); err != nil {
			log.Printf("[reconciler] run failed: %v\n", err)
			r.Metrics.RunFailures.WithLabelValues("reconciler").Inc()
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type occurrenceKey struct {
	userID      uuid.UUID
	referenceID uuid.UUID
	minute      int64
}

// RunOnce performs one reconciliation pass. A feed failure aborts the pass
// before anything is written; all inserts for the pass go out in one batch
// at the end.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	defs, err := r.Feed.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	now := r.Clock.Now()
	horizon := now.AddDate(0, 0, r.HorizonDays)

	var batch []*notification.Notification
	seen := make(map[occurrenceKey]struct{})

	for _, def := range defs {
		for _, item := range def.Tasks {
			if !item.Schedulable() {
				continue
			}
			if _, err := task.ParseAnchor(item); err != nil {
				log.Printf("[reconciler] skipping task item %s (%q): bad date/time: %v\n", item.ID, item.Title, err)
				continue
			}
			for _, occ := range task.Occurrences(item, now, r.HorizonDays, r.MaxOccurrences) {
				showAt := occ.At.Add(-r.Lead)
				// Skip reminders that would be due immediately or are past
				// the horizon.
				if !showAt.After(now) || showAt.After(horizon) {
					continue
				}

				key := occurrenceKey{def.UserID, def.ID, occ.At.Truncate(time.Minute).Unix()}
				if _, dup := seen[key]; dup {
					continue
				}

				exists, err := r.Store.HasPending(ctx, def.UserID, def.ID, occ.At, notification.DuplicateTolerance)
				if err != nil {
					return fmt.Errorf("probe pending reminders: %w", err)
				}
				if exists {
					continue
				}
				seen[key] = struct{}{}

				at := occ.At
				show := showAt
				batch = append(batch, &notification.Notification{
					UserID:      def.UserID,
					Type:        notification.TypeTask,
					ReferenceID: def.ID,
					Message:     notification.ReminderMessage(item.Title, occ.Time, occ.Date),
					Status:      notification.StatusPending,
					TaskAt:      &at,
					ShowAt:      &show,
					CreatedAt:   now,
					UpdatedAt:   now,
				})
			}
		}
	}

	if len(batch) == 0 {
		return nil
	}

	inserted, err := r.Store.CreateBatch(ctx, batch)
	if err != nil {
		return fmt.Errorf("persist reminders: %w", err)
	}

	r.Metrics.RemindersCreated.Add(float64(inserted))
	log.Printf("[reconciler] created %d pending reminders\n", inserted)
	return nil
}
