package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound  = errors.New("notification not found")
	ErrDuplicate = errors.New("duplicate pending reminder")
)

// Store is the slice of the reminder store the background jobs run against.
// The full repo has more surface for the HTTP handlers; the jobs only need
// this much, and tests fake it without a database.
type Store interface {
	// CreateBatch inserts the given reminders, silently skipping any that
	// collide with the pending-occurrence uniqueness constraint, and reports
	// how many rows were actually written.
	CreateBatch(ctx context.Context, ns []*Notification) (int, error)

	// HasPending reports whether a pending reminder already exists for this
	// user and reference with an occurrence instant within tolerance of
	// taskAt.
	HasPending(ctx context.Context, userID, referenceID uuid.UUID, taskAt time.Time, tolerance time.Duration) (bool, error)

	// ListDuePending returns pending reminders of the given type whose
	// show-at instant has passed.
	ListDuePending(ctx context.Context, typ string, now time.Time) ([]Notification, error)

	// MarkSent flips the given reminders to sent. Only pending rows are
	// touched, so a concurrent mark-read can never be undone.
	MarkSent(ctx context.Context, ids []uuid.UUID, now time.Time) error
}

// Repo is the gorm-backed store.
type Repo struct {
	DB *gorm.DB
}

func (r *Repo) Create(ctx context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	err := r.DB.WithContext(ctx).Create(n).Error
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *Repo) CreateBatch(ctx context.Context, ns []*Notification) (int, error) {
	if len(ns) == 0 {
		return 0, nil
	}
	for _, n := range ns {
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
	}
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ns)
	return int(res.RowsAffected), res.Error
}

func (r *Repo) HasPending(ctx context.Context, userID, referenceID uuid.UUID, taskAt time.Time, tolerance time.Duration) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND reference_id = ? AND status = ?", userID, referenceID, StatusPending).
		Where("task_at > ? AND task_at < ?", taskAt.Add(-tolerance), taskAt.Add(tolerance)).
		Count(&count).Error
	return count > 0, err
}

func (r *Repo) ListDuePending(ctx context.Context, typ string, now time.Time) ([]Notification, error) {
	var out []Notification
	err := r.DB.WithContext(ctx).
		Where("type = ? AND status = ? AND show_at IS NOT NULL AND show_at <= ?", typ, StatusPending, now).
		Find(&out).Error
	return out, err
}

func (r *Repo) MarkSent(ctx context.Context, ids []uuid.UUID, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&Notification{}).
		Where("id IN ? AND status = ?", ids, StatusPending).
		Updates(map[string]any{"status": StatusSent, "updated_at": now}).Error
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	var n Notification
	if err := r.DB.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *Repo) ListAll(ctx context.Context) ([]Notification, error) {
	var out []Notification
	err := r.DB.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// ListVisibleByUser returns the notifications a user actually sees: activated
// (sent) and already-read ones. Pending rows stay hidden until the activator
// flips them.
func (r *Repo) ListVisibleByUser(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	var out []Notification
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []string{StatusSent, StatusRead}).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (r *Repo) ListUnreadByUser(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	var out []Notification
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, StatusSent).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (r *Repo) CountUnreadByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND status = ?", userID, StatusSent).
		Count(&count).Error
	return count, err
}

func (r *Repo) MarkRead(ctx context.Context, id uuid.UUID, now time.Time) error {
	res := r.DB.WithContext(ctx).Model(&Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": StatusRead, "read_at": now, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&Notification{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
