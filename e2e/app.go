package e2e

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"folio/internal/contact/compose"
	"folio/internal/contact/dispatch"
	contacthandler "folio/internal/contact/handler"
	contactmetrics "folio/internal/contact/metrics"
	"folio/internal/contact/models"
	contactservice "folio/internal/contact/service"
	"folio/internal/i18n"
	"folio/internal/platform/health"
	rlmetrics "folio/internal/ratelimit/metrics"
	rlservice "folio/internal/ratelimit/service"
	"folio/internal/ratelimit/store/window"
	httptransport "folio/internal/transport/http"
	"folio/pkg/platform/circuit"
	"folio/pkg/platform/middleware/metadata"
	request "folio/pkg/platform/middleware/request"
)

// RecordingSender stands in for the email provider and keeps every message
// it was asked to deliver.
type RecordingSender struct {
	mu      sync.Mutex
	sent    []*models.Message
	failing bool
}

func (s *RecordingSender) Send(_ context.Context, msg *models.Message) (*models.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errors.New("provider unavailable")
	}
	s.sent = append(s.sent, msg)
	return &models.Receipt{ID: "e2e-" + time.Now().Format("150405.000000")}, nil
}

func (s *RecordingSender) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

func (s *RecordingSender) Sent() []*models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Message(nil), s.sent...)
}

// Clock is a settable time source for the limiter.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newApp wires the same router the server binary builds, against an
// in-memory limiter, the given clock and a recording sender.
func newApp(clock *Clock, sender dispatch.Sender) (http.Handler, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()

	limiter, err := rlservice.New(window.NewInMemoryStore(),
		rlservice.WithLimit(rlservice.DefaultMaxRequests),
		rlservice.WithWindow(rlservice.DefaultWindow),
		rlservice.WithLogger(logger),
		rlservice.WithMetrics(rlmetrics.New(reg)),
		rlservice.WithClock(clock.Now),
	)
	if err != nil {
		return nil, err
	}

	composer, err := compose.New("Portfolio <noreply@example.com>", []string{"owner@example.com"})
	if err != nil {
		return nil, err
	}
	m := contactmetrics.New(reg)
	breakerSender := dispatch.NewBreakerSender(sender, circuit.New("e2e", circuit.WithFailureThreshold(100)), logger)
	svc, err := contactservice.New(composer, breakerSender,
		contactservice.WithLogger(logger),
		contactservice.WithMetrics(m),
		contactservice.WithProvider("e2e"),
	)
	if err != nil {
		return nil, err
	}

	catalog := i18n.MustLoad()
	return httptransport.NewRouter(httptransport.Deps{
		Logger:   logger,
		Catalog:  catalog,
		Metadata: metadata.NewMiddleware(nil),
		Latency:  request.NewMetrics(reg),
		Health:   health.New("e2e"),
		Contact:  contacthandler.New(limiter, svc, catalog, logger, contacthandler.WithMetrics(m)),
		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}), nil
}
