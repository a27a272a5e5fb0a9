package request

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"folio/pkg/requestcontext"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantKept bool
	}{
		{name: "generates UUID when no header provided", header: ""},
		{name: "keeps valid client-provided ID", header: "my-request-123", wantKept: true},
		{name: "keeps ID with periods and underscores", header: "trace.span_1234", wantKept: true},
		{name: "keeps ID at exactly max length", header: strings.Repeat("a", MaxRequestIDLength), wantKept: true},
		{name: "replaces ID over max length", header: strings.Repeat("a", MaxRequestIDLength+1)},
		{name: "replaces ID with newline", header: "valid\ninjected-log-line"},
		{name: "replaces ID with quote", header: `has"quote`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = requestcontext.RequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			assert.Equal(t, captured, got)
			if tt.wantKept {
				assert.Equal(t, tt.header, got)
			} else {
				assert.NotEqual(t, tt.header, got)
				assert.Len(t, got, 36)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	handler := Recovery(logger, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/contact", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
	assert.NotContains(t, body["error"], "boom")
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestRecoveryUsesRequestMessage(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	message := func(r *http.Request) string { return "oops " + r.Header.Get("Accept-Language") }
	handler := Recovery(logger, message)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	req.Header.Set("Accept-Language", "es")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "oops es", body["error"])
}

func TestRequestTimePinsInstant(t *testing.T) {
	var first, second time.Time
	handler := RequestTime(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = requestcontext.Now(r.Context())
		time.Sleep(2 * time.Millisecond)
		second = requestcontext.Now(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, first.IsZero())
	assert.Equal(t, first, second)
}

func TestLoggerSkipsHealthyProbes(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	ok := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Empty(t, logs.String())

	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), "203.0.113.77", ""))
	ok.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, logs.String(), `"path":"/api/contact"`)
	assert.Contains(t, logs.String(), `"remote_addr_prefix":"203.0.113.0"`)
	assert.NotContains(t, logs.String(), "203.0.113.77")
}

func TestLatencyMiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(LatencyMiddleware(m))
	r.Get("/health/{probe}", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(m.EndpointLatency))
	_, err := m.EndpointLatency.GetMetricWith(prometheus.Labels{"endpoint": "/health/{probe}"})
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.CollectAndCount(m.EndpointLatency), "observation was labelled with the route pattern")
}
