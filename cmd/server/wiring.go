package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"folio/internal/contact/compose"
	"folio/internal/contact/dispatch"
	contacthandler "folio/internal/contact/handler"
	contactmetrics "folio/internal/contact/metrics"
	contactservice "folio/internal/contact/service"
	"folio/internal/i18n"
	"folio/internal/platform/config"
	"folio/internal/platform/health"
	"folio/internal/platform/redis"
	rlmetrics "folio/internal/ratelimit/metrics"
	rlservice "folio/internal/ratelimit/service"
	"folio/internal/ratelimit/store/window"
	"folio/internal/ratelimit/workers/cleanup"
	"folio/pkg/platform/circuit"
	"folio/pkg/platform/tracer"
)

const redisStatsInterval = 30 * time.Second

// rateLimitDeps holds the limiter plus the background loops its backend needs.
type rateLimitDeps struct {
	limiter *rlservice.Limiter
	workers []func(ctx context.Context) error
	close   func()
}

func buildRateLimit(ctx context.Context, cfg config.Server, log *slog.Logger, reg prometheus.Registerer, hh *health.Handler) (*rateLimitDeps, error) {
	deps := &rateLimitDeps{close: func() {}}
	m := rlmetrics.New(reg)

	var store rlservice.Store
	switch cfg.RateLimit.Backend {
	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, errors.New("redis backend selected without REDIS_URL")
		}
		hh.RegisterCheck("redis", client.Health)
		deps.close = func() {
			if err := client.Close(); err != nil {
				log.Warn("failed to close redis client", "error", err)
			}
		}
		deps.workers = append(deps.workers, func(ctx context.Context) error {
			return client.RecordPoolStatsEvery(ctx, redisStatsInterval)
		})
		store = window.NewRedisStore(client.Client)
		log.Info("rate limit store: redis")
	default:
		mem := window.NewInMemoryStore()
		worker := cleanup.New(mem,
			cleanup.WithLogger(log),
			cleanup.WithInterval(cfg.RateLimit.CleanupInterval),
			cleanup.WithMetrics(m),
		)
		deps.workers = append(deps.workers, worker.Start)
		store = mem
		log.Info("rate limit store: memory")
	}

	limiter, err := rlservice.New(store,
		rlservice.WithLimit(cfg.RateLimit.MaxRequests),
		rlservice.WithWindow(cfg.RateLimit.Window),
		rlservice.WithLogger(log),
		rlservice.WithMetrics(m),
	)
	if err != nil {
		deps.close()
		return nil, err
	}
	deps.limiter = limiter
	return deps, nil
}

func buildContact(cfg config.Server, log *slog.Logger, m *contactmetrics.Metrics, hh *health.Handler) (*contactservice.Service, error) {
	composer, err := compose.New(cfg.Email.From, cfg.Email.Recipients)
	if err != nil {
		return nil, err
	}

	var sender dispatch.Sender
	switch cfg.Email.Provider {
	case config.ProviderLog:
		sender = dispatch.NewLogSender(log)
	default:
		resendSender, err := dispatch.NewResendSender(cfg.Email.APIKey,
			dispatch.WithTimeout(cfg.Email.Timeout),
			dispatch.WithBaseURL(cfg.Email.BaseURL),
		)
		if err != nil {
			return nil, err
		}
		sender = resendSender
	}

	breakerSender := dispatch.NewBreakerSender(sender, circuit.New(cfg.Email.Provider), log)
	hh.RegisterCheck("email_provider", func(context.Context) error {
		if breakerSender.State() == circuit.StateOpen {
			return errors.New("email provider circuit open")
		}
		return nil
	})

	return contactservice.New(composer, breakerSender,
		contactservice.WithLogger(log),
		contactservice.WithMetrics(m),
		contactservice.WithTracer(tracer.NewOTel()),
		contactservice.WithProvider(cfg.Email.Provider),
		contactservice.WithDiagnostics(cfg.IsDevelopment()),
	)
}

func newContactHandler(cfg config.Server, log *slog.Logger, m *contactmetrics.Metrics, limiter contacthandler.Limiter, svc contacthandler.Service, catalog *i18n.Catalog) *contacthandler.Handler {
	return contacthandler.New(limiter, svc, catalog, log,
		contacthandler.WithMetrics(m),
		contacthandler.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
}
