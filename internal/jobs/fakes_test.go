package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"notifyd/internal/notification"
	"notifyd/internal/task"

	"github.com/google/uuid"
)

type fakeFeed struct {
	mu    sync.Mutex
	defs  []task.Definition
	err   error
	fails int // fail this many calls before succeeding
}

func (f *fakeFeed) ListTasks(ctx context.Context) ([]task.Definition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		return nil, errors.New("task feed unavailable")
	}
	return f.defs, f.err
}

// memStore is an in-memory notification.Store. It enforces the same
// pending-occurrence uniqueness the postgres partial index does.
type memStore struct {
	mu    sync.Mutex
	items []*notification.Notification

	createErr    error
	probeErr     error
	listErr      error
	listFailures int // fail this many ListDuePending calls before succeeding
}

func (s *memStore) CreateBatch(ctx context.Context, ns []*notification.Notification) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return 0, s.createErr
	}
	inserted := 0
	for _, n := range ns {
		cp := *n
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		if cp.TaskAt != nil && s.hasPendingAtMinute(cp.UserID, cp.ReferenceID, *cp.TaskAt) {
			continue
		}
		s.items = append(s.items, &cp)
		inserted++
	}
	return inserted, nil
}

func (s *memStore) HasPending(ctx context.Context, userID, referenceID uuid.UUID, taskAt time.Time, tolerance time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.probeErr != nil {
		return false, s.probeErr
	}
	for _, ex := range s.items {
		if ex.Status != notification.StatusPending || ex.UserID != userID || ex.ReferenceID != referenceID || ex.TaskAt == nil {
			continue
		}
		d := ex.TaskAt.Sub(taskAt)
		if d < 0 {
			d = -d
		}
		if d < tolerance {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) ListDuePending(ctx context.Context, typ string, now time.Time) ([]notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listFailures > 0 {
		s.listFailures--
		return nil, errors.New("store unavailable")
	}
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []notification.Notification
	for _, ex := range s.items {
		if ex.Type == typ && ex.Status == notification.StatusPending && ex.ShowAt != nil && !ex.ShowAt.After(now) {
			out = append(out, *ex)
		}
	}
	return out, nil
}

func (s *memStore) MarkSent(ctx context.Context, ids []uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	for _, ex := range s.items {
		if _, ok := set[ex.ID]; ok && ex.Status == notification.StatusPending {
			ex.Status = notification.StatusSent
			ex.UpdatedAt = now
		}
	}
	return nil
}

// snapshot copies the current rows so tests can inspect them while a Run
// loop is still mutating the store.
func (s *memStore) snapshot() []notification.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notification.Notification, 0, len(s.items))
	for _, ex := range s.items {
		out = append(out, *ex)
	}
	return out
}

func (s *memStore) hasPendingAtMinute(userID, referenceID uuid.UUID, taskAt time.Time) bool {
	minute := taskAt.Truncate(time.Minute)
	for _, ex := range s.items {
		if ex.Status == notification.StatusPending &&
			ex.UserID == userID &&
			ex.ReferenceID == referenceID &&
			ex.TaskAt != nil &&
			ex.TaskAt.Truncate(time.Minute).Equal(minute) {
			return true
		}
	}
	return false
}
