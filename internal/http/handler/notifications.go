package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"notifyd/internal/clock"
	"notifyd/internal/notification"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// NotificationRepo is the slice of the notification repo the handlers use.
type NotificationRepo interface {
	Create(ctx context.Context, n *notification.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error)
	ListAll(ctx context.Context) ([]notification.Notification, error)
	ListVisibleByUser(ctx context.Context, userID uuid.UUID) ([]notification.Notification, error)
	ListUnreadByUser(ctx context.Context, userID uuid.UUID) ([]notification.Notification, error)
	CountUnreadByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID, now time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type NotificationHandler struct {
	Repo  NotificationRepo
	Clock clock.Clock
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Repo.ListAll(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	n, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := parseID(w, r, "userID")
	if !ok {
		return
	}

	rows, err := h.Repo.ListVisibleByUser(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	uid, ok := parseID(w, r, "userID")
	if !ok {
		return
	}

	rows, err := h.Repo.ListUnreadByUser(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	uid, ok := parseID(w, r, "userID")
	if !ok {
		return
	}

	count, err := h.Repo.CountUnreadByUser(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, count)
}

type createNotificationReq struct {
	UserID      uuid.UUID  `json:"userId"`
	Type        string     `json:"type"`
	ReferenceID uuid.UUID  `json:"referenceId"`
	Message     string     `json:"message"`
	TaskAt      *time.Time `json:"taskDateTime"`
	ShowAt      *time.Time `json:"showAt"`
}

// Create is used by the sibling services, e.g. the Tasks API posting the
// reminder for a freshly created one-off task.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNotificationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	req.Type = strings.TrimSpace(req.Type)
	if req.UserID == uuid.Nil || req.ReferenceID == uuid.Nil || req.Type == "" || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "userId, type, referenceId and message are required", http.StatusBadRequest)
		return
	}

	now := h.Clock.Now()
	n := &notification.Notification{
		UserID:      req.UserID,
		Type:        req.Type,
		ReferenceID: req.ReferenceID,
		Message:     req.Message,
		Status:      notification.StatusPending,
		TaskAt:      req.TaskAt,
		ShowAt:      req.ShowAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Repo.Create(r.Context(), n); err != nil {
		if errors.Is(err, notification.ErrDuplicate) {
			http.Error(w, "reminder already exists for this occurrence", http.StatusConflict)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, n)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Repo.MarkRead(r.Context(), id, h.Clock.Now()); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
