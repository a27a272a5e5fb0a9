package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	contactmetrics "folio/internal/contact/metrics"
	"folio/internal/i18n"
	"folio/internal/platform/config"
	"folio/internal/platform/health"
	"folio/internal/platform/httpserver"
	"folio/internal/platform/logger"
	httptransport "folio/internal/transport/http"
	"folio/pkg/platform/middleware/metadata"
	request "folio/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Info("initializing folio contact service",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"email_provider", cfg.Email.Provider,
		"rate_limit_backend", cfg.RateLimit.Backend,
		"rate_limit", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.DefaultRegisterer
	healthHandler := health.New(cfg.Environment)

	proxies, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	rateLimit, err := buildRateLimit(ctx, cfg, log, reg, healthHandler)
	if err != nil {
		return err
	}
	defer rateLimit.close()

	contactMetrics := contactmetrics.New(reg)
	contact, err := buildContact(cfg, log, contactMetrics, healthHandler)
	if err != nil {
		return err
	}

	catalog := i18n.MustLoad()
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Catalog:  catalog,
		Metadata: metadata.NewMiddleware(&metadata.Config{TrustedProxies: proxies}),
		Latency:  request.NewMetrics(reg),
		Health:   healthHandler,
		Contact:  newContactHandler(cfg, log, contactMetrics, rateLimit.limiter, contact, catalog),
		Metrics:  promhttp.Handler(),
	})

	srv := httpserver.New(cfg.Addr, router)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		return httpserver.Run(ctx, srv)
	})
	for _, worker := range rateLimit.workers {
		g.Go(func() error { return worker(ctx) })
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
