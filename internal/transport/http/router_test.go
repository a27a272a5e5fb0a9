package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contacthandler "folio/internal/contact/handler"
	"folio/internal/contact/models"
	"folio/internal/i18n"
	"folio/internal/platform/health"
	rlmodels "folio/internal/ratelimit/models"
	"folio/pkg/platform/middleware/metadata"
	request "folio/pkg/platform/middleware/request"
)

type stubLimiter struct{ keys []string }

func (l *stubLimiter) Allow(_ context.Context, key string) *rlmodels.Decision {
	l.keys = append(l.keys, key)
	return &rlmodels.Decision{Allowed: true, Limit: 3, Remaining: 2}
}

type stubService struct{}

func (stubService) Submit(context.Context, models.Submission) (*models.Receipt, error) {
	return &models.Receipt{ID: "re_stub"}, nil
}

type panicService struct{}

func (panicService) Submit(context.Context, models.Submission) (*models.Receipt, error) {
	panic("composer exploded")
}

func newTestRouter(t *testing.T, limiter *stubLimiter) http.Handler {
	t.Helper()
	return newTestRouterWith(t, limiter, stubService{})
}

func newTestRouterWith(t *testing.T, limiter *stubLimiter, svc contacthandler.Service) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := i18n.MustLoad()
	reg := prometheus.NewRegistry()

	return NewRouter(Deps{
		Logger:   logger,
		Catalog:  catalog,
		Metadata: metadata.NewMiddleware(nil),
		Latency:  request.NewMetrics(reg),
		Health:   health.New("test"),
		Contact:  contacthandler.New(limiter, svc, catalog, logger),
		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
}

func TestRouterContactUsesForwardedClient(t *testing.T) {
	limiter := &stubLimiter{}
	router := newTestRouter(t, limiter)

	req := httptest.NewRequest(http.MethodPost, "/api/contact",
		strings.NewReader(`{"name":"Ana","email":"ana@example.com","message":"Hello"}`))
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "203.0.113.9", limiter.keys[0])
}

func TestRouterUnknownRoutesAnswerJSON(t *testing.T) {
	router := newTestRouter(t, &stubLimiter{})

	tests := []struct {
		name   string
		method string
		path   string
		lang   string
		status int
		body   string
	}{
		{"not found", http.MethodGet, "/nope", "", http.StatusNotFound, `{"error":"Not found"}`},
		{"not found spanish", http.MethodGet, "/nope", "es", http.StatusNotFound, `{"error":"No encontrado"}`},
		{"wrong method", http.MethodGet, "/api/contact", "", http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.lang != "" {
				req.Header.Set("Accept-Language", tt.lang)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestRouterServesHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, &stubLimiter{})

	for _, path := range []string{"/health", "/health/live", "/health/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterPanicAnswersLocalized(t *testing.T) {
	router := newTestRouterWith(t, &stubLimiter{}, panicService{})

	req := httptest.NewRequest(http.MethodPost, "/api/contact",
		strings.NewReader(`{"name":"Ana","email":"ana@example.com","message":"Hello"}`))
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Algo sali")
	assert.NotContains(t, rec.Body.String(), "composer exploded")
}
