package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DecisionAllowed = "allowed"
	DecisionDenied  = "denied"
	DecisionError   = "error"
)

type Metrics struct {
	Decisions              *prometheus.CounterVec
	CleanupRunsTotal       *prometheus.CounterVec
	CleanupRemovedTotal    prometheus.Counter
	CleanupDurationSeconds prometheus.Histogram
	TrackedClients         prometheus.Gauge
}

// New registers the rate limiter metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_rate_limit_decisions_total",
			Help: "Rate limit decisions for the contact endpoint, labeled by decision",
		}, []string{"decision"}),
		CleanupRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_rate_limit_cleanup_runs_total",
			Help: "Total number of rate limit cleanup runs",
		}, []string{"status"}),
		CleanupRemovedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "contact_rate_limit_cleanup_removed_total",
			Help: "Total number of expired rate limit records removed",
		}),
		CleanupDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "contact_rate_limit_cleanup_duration_seconds",
			Help: "Duration of cleanup runs in seconds",
		}),
		TrackedClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "contact_rate_limit_tracked_clients",
			Help: "Client keys currently held by the in-memory store",
		}),
	}
}

func (m *Metrics) IncrementDecision(decision string) {
	m.Decisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) ObserveCleanup(status string, removed int, durationSeconds float64) {
	m.CleanupRunsTotal.WithLabelValues(status).Inc()
	m.CleanupRemovedTotal.Add(float64(removed))
	m.CleanupDurationSeconds.Observe(durationSeconds)
}

func (m *Metrics) SetTrackedClients(n int) {
	m.TrackedClients.Set(float64(n))
}
