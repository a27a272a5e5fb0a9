package cleanup

import (
	"context"
	"log/slog"
	"time"

	"folio/internal/ratelimit/metrics"
)

// Result describes one cleanup run.
type Result struct {
	Removed   int
	Remaining int
	Duration  time.Duration
}

// Sweeper removes fixed-window records that expired before now.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (removed int, err error)
	Len() int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service periodically drops expired in-memory rate limit records so the map
// does not grow with every client ever seen.
type Service struct {
	store    Sweeper
	logger   *slog.Logger
	interval time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

func New(store Sweeper, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   slog.Default(),
		interval: 10 * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs cleanup on every tick until ctx is cancelled. Failed runs are
// logged and retried on the next tick.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.Error("rate_limit_cleanup_failed", "error", err)
				continue
			}
			s.logger.Debug("rate_limit_cleanup_completed",
				"removed", res.Removed,
				"remaining", res.Remaining,
				"duration_ms", res.Duration.Milliseconds(),
			)
		case <-ctx.Done():
			s.logger.Info("rate limit cleanup worker stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunOnce executes a single sweep and records metrics.
func (s *Service) RunOnce(ctx context.Context) (*Result, error) {
	start := time.Now()
	removed, err := s.store.Sweep(ctx, s.now())
	duration := time.Since(start)

	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveCleanup("error", 0, duration.Seconds())
		}
		return nil, err
	}

	res := &Result{Removed: removed, Remaining: s.store.Len(), Duration: duration}
	if s.metrics != nil {
		s.metrics.ObserveCleanup("success", removed, duration.Seconds())
		s.metrics.SetTrackedClients(res.Remaining)
	}
	return res, nil
}
