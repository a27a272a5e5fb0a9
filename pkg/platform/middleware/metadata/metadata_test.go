package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"

	"folio/pkg/requestcontext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareHandler(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		remoteAddr     string
		trustedProxies []string
		expectedKey    string
		expectedUA     string
	}{
		{
			name:        "uses first X-Forwarded-For hop",
			headers:     map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.2", "User-Agent": "Mozilla/5.0"},
			remoteAddr:  "192.168.1.1:12345",
			expectedKey: "203.0.113.1",
			expectedUA:  "Mozilla/5.0",
		},
		{
			name:        "falls back to X-Real-IP",
			headers:     map[string]string{"X-Real-IP": " 198.51.100.4 "},
			remoteAddr:  "192.168.1.1:12345",
			expectedKey: "198.51.100.4",
		},
		{
			name:        "pools requests without forwarded address under unknown",
			headers:     map[string]string{"User-Agent": "curl/8.0"},
			remoteAddr:  "192.168.1.100:54321",
			expectedKey: requestcontext.UnknownClient,
			expectedUA:  "curl/8.0",
		},
		{
			name:        "oversized X-Forwarded-For is ignored",
			headers:     map[string]string{"X-Forwarded-For": strings.Repeat("1", MaxXFFHeaderLength+1), "X-Real-IP": "198.51.100.4"},
			remoteAddr:  "192.168.1.1:12345",
			expectedKey: "198.51.100.4",
		},
		{
			name:           "untrusted peer cannot set forwarding headers",
			headers:        map[string]string{"X-Forwarded-For": "203.0.113.1"},
			remoteAddr:     "192.168.1.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedKey:    "192.168.1.1",
		},
		{
			name:           "trusted peer forwards the client address",
			headers:        map[string]string{"X-Forwarded-For": "203.0.113.1"},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedKey:    "203.0.113.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedCtx context.Context
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedCtx = r.Context()
				w.WriteHeader(http.StatusOK)
			})

			var prefixes []netip.Prefix
			for _, cidr := range tt.trustedProxies {
				prefixes = append(prefixes, netip.MustParsePrefix(cidr))
			}
			handler := NewMiddleware(&Config{TrustedProxies: prefixes}).Handler(next)

			req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			require.NotNil(t, capturedCtx)
			assert.Equal(t, tt.expectedKey, requestcontext.ClientIP(capturedCtx))
			assert.Equal(t, tt.expectedUA, requestcontext.UserAgent(capturedCtx))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies(" 10.0.0.0/8, 127.0.0.1 ,,")
	require.NoError(t, err)
	require.Len(t, prefixes, 2)
	assert.True(t, prefixes[1].Contains(netip.MustParseAddr("127.0.0.1")))

	_, err = ParseTrustedProxies("not-a-cidr")
	assert.Error(t, err)
}

func TestParseRemoteAddr(t *testing.T) {
	assert.Equal(t, "192.0.2.1", parseRemoteAddr("192.0.2.1:80"))
	assert.Equal(t, "::1", parseRemoteAddr("[::1]:8080"))
	assert.Equal(t, "", parseRemoteAddr("garbage"))
}
