package http

import (
	"net/http"

	"notifyd/internal/clock"
	"notifyd/internal/config"
	"notifyd/internal/http/handler"
	mw "notifyd/internal/http/middleware"
	"notifyd/internal/notification"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, clk clock.Clock) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	nh := &handler.NotificationHandler{Repo: &notification.Repo{DB: db}, Clock: clk}

	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/", nh.List)
		r.Post("/", nh.Create)

		r.Get("/{id}", nh.Get)
		r.Patch("/{id}/read", nh.MarkRead)
		r.Delete("/{id}", nh.Delete)

		r.Route("/user/{userID}", func(r chi.Router) {
			r.Get("/", nh.ListByUser)
			r.Get("/unread", nh.ListUnread)
			r.Get("/unread/count", nh.UnreadCount)
		})
	})

	return r
}
