package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the Prometheus collectors for the reminder pipeline.
type Metrics struct {
	RemindersCreated   prometheus.Counter
	RemindersActivated prometheus.Counter
	RunFailures        *prometheus.CounterVec
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the instance registered with the global registry. Created
// once so repeated wiring (tests, restarts of the job set) cannot trip
// duplicate-registration panics.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNew(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNew builds and registers the collectors against reg. Pass a fresh
// registry in tests; registration errors panic, same as the promauto helpers.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		RemindersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notifyd",
			Name:      "reminders_created_total",
			Help:      "Pending reminders created by the reconciler.",
		}),
		RemindersActivated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notifyd",
			Name:      "reminders_activated_total",
			Help:      "Reminders flipped from pending to sent by the activator.",
		}),
		RunFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notifyd",
			Name:      "job_run_failures_total",
			Help:      "Background job runs that ended in an error.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.RemindersCreated, m.RemindersActivated, m.RunFailures)
	return m
}
