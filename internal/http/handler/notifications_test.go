package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notifyd/internal/clock"
	"notifyd/internal/notification"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	created   []*notification.Notification
	createErr error

	markReadID  uuid.UUID
	markReadAt  time.Time
	markReadErr error
}

func (f *fakeRepo) Create(ctx context.Context, n *notification.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	return nil, notification.ErrNotFound
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]notification.Notification, error) {
	return nil, nil
}

func (f *fakeRepo) ListVisibleByUser(ctx context.Context, userID uuid.UUID) ([]notification.Notification, error) {
	return nil, nil
}

func (f *fakeRepo) ListUnreadByUser(ctx context.Context, userID uuid.UUID) ([]notification.Notification, error) {
	return nil, nil
}

func (f *fakeRepo) CountUnreadByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) MarkRead(ctx context.Context, id uuid.UUID, now time.Time) error {
	if f.markReadErr != nil {
		return f.markReadErr
	}
	f.markReadID = id
	f.markReadAt = now
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func newTestRouter(h *NotificationHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/notifications", h.Create)
	r.Get("/api/notifications/{id}", h.Get)
	r.Patch("/api/notifications/{id}/read", h.MarkRead)
	return r
}

func TestCreateStampsTimestampsFromClock(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	h := &NotificationHandler{Repo: repo, Clock: clock.Fixed(now)}

	body := `{
		"userId": "` + uuid.New().String() + `",
		"type": "task",
		"referenceId": "` + uuid.New().String() + `",
		"message": "Reminder: Dentist - Time: 14:00 - Date: 2025-03-12"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/notifications", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.created, 1)
	require.Equal(t, notification.StatusPending, repo.created[0].Status)
	require.Equal(t, now, repo.created[0].CreatedAt)
	require.Equal(t, now, repo.created[0].UpdatedAt)
}

func TestCreateRejectsIncompleteBody(t *testing.T) {
	repo := &fakeRepo{}
	h := &NotificationHandler{Repo: repo, Clock: clock.Fixed(time.Now())}

	req := httptest.NewRequest(http.MethodPost, "/api/notifications", strings.NewReader(`{"type": "task"}`))
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, repo.created)
}

func TestCreateDuplicateReminderConflicts(t *testing.T) {
	repo := &fakeRepo{createErr: notification.ErrDuplicate}
	h := &NotificationHandler{Repo: repo, Clock: clock.Fixed(time.Now())}

	body := `{
		"userId": "` + uuid.New().String() + `",
		"type": "task",
		"referenceId": "` + uuid.New().String() + `",
		"message": "Reminder: x"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/notifications", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestMarkReadUsesClock(t *testing.T) {
	now := time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)
	repo := &fakeRepo{}
	h := &NotificationHandler{Repo: repo, Clock: clock.Fixed(now)}

	id := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/notifications/"+id.String()+"/read", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, id, repo.markReadID)
	require.Equal(t, now, repo.markReadAt)
}

func TestMarkReadUnknownID(t *testing.T) {
	repo := &fakeRepo{markReadErr: notification.ErrNotFound}
	h := &NotificationHandler{Repo: repo, Clock: clock.Fixed(time.Now())}

	req := httptest.NewRequest(http.MethodPatch, "/api/notifications/"+uuid.New().String()+"/read", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRejectsMalformedID(t *testing.T) {
	h := &NotificationHandler{Repo: &fakeRepo{}, Clock: clock.Fixed(time.Now())}

	req := httptest.NewRequest(http.MethodGet, "/api/notifications/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
