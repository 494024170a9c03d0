package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notifyd/internal/clock"
	"notifyd/internal/config"
	"notifyd/internal/db"
	httpx "notifyd/internal/http"
	"notifyd/internal/jobs"
	"notifyd/internal/metrics"
	"notifyd/internal/notification"
	"notifyd/internal/task"
)

func main() {
	cfg, _ := config.Load()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal(err)
	}

	r := httpx.NewRouter(cfg, gdb, clock.System{})

	store := &notification.Repo{DB: gdb}
	feed := task.NewClient(cfg.TasksAPIURL, cfg.FetchTimeout)
	m := metrics.Default()

	reconciler := &jobs.Reconciler{
		Feed:           feed,
		Store:          store,
		Clock:          clock.System{},
		Metrics:        m,
		Interval:       cfg.ReconcileInterval,
		Lead:           cfg.ReminderLead,
		HorizonDays:    cfg.HorizonDays,
		MaxOccurrences: cfg.MaxOccurrences,
	}
	activator := &jobs.Activator{
		Store:    store,
		Clock:    clock.System{},
		Metrics:  m,
		Interval: cfg.ActivateInterval,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go reconciler.Run(ctx)
	go activator.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s\n", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
