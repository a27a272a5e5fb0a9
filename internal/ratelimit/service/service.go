// Package service decides whether a contact submission may proceed under the
// per-client fixed-window quota.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"folio/internal/ratelimit/metrics"
	"folio/internal/ratelimit/models"
	"folio/pkg/requestcontext"
)

const (
	DefaultMaxRequests = 3
	DefaultWindow      = time.Hour
)

// Store applies one request to a key's fixed window.
type Store interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (*models.Decision, error)
}

type Limiter struct {
	store   Store
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func(ctx context.Context) time.Time
}

type Option func(*Limiter)

func WithLimit(limit int) Option {
	return func(l *Limiter) {
		l.limit = limit
	}
}

func WithWindow(window time.Duration) Option {
	return func(l *Limiter) {
		l.window = window
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithClock overrides the request time source. By default the limiter uses
// the time pinned on the request context.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = func(context.Context) time.Time { return now() }
		}
	}
}

func New(store Store, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("rate limit store is required")
	}
	l := &Limiter{
		store:  store,
		limit:  DefaultMaxRequests,
		window: DefaultWindow,
		logger: slog.Default(),
		now:    requestcontext.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.limit <= 0 {
		return nil, errors.New("rate limit must be positive")
	}
	if l.window <= 0 {
		return nil, errors.New("rate limit window must be positive")
	}
	return l, nil
}

func (l *Limiter) Limit() int { return l.limit }

func (l *Limiter) Window() time.Duration { return l.window }

// Allow counts one request for clientKey and returns the decision. It never
// fails: a store error lets the request through with a Degraded decision.
func (l *Limiter) Allow(ctx context.Context, clientKey string) *models.Decision {
	now := l.now(ctx)
	key := models.NewClientKey(clientKey).String()

	decision, err := l.store.Hit(ctx, key, l.limit, l.window, now)
	if err != nil {
		l.logger.WarnContext(ctx, "rate limit store unavailable, allowing request",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		l.record(metrics.DecisionError)
		return &models.Decision{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit,
			ResetAt:   now.Add(l.window),
			Degraded:  true,
		}
	}

	if decision.Allowed {
		l.record(metrics.DecisionAllowed)
	} else {
		l.record(metrics.DecisionDenied)
	}
	return decision
}

func (l *Limiter) record(decision string) {
	if l.metrics != nil {
		l.metrics.IncrementDecision(decision)
	}
}
