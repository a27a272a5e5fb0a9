package metadata

import (
	"net/http"
	"net/netip"
	"strings"

	"folio/pkg/requestcontext"
)

// MaxXFFHeaderLength bounds forwarded-address headers; longer values are ignored.
const MaxXFFHeaderLength = 500

// Config holds configuration for the metadata middleware.
type Config struct {
	// TrustedProxies restricts which direct peers may set forwarding headers.
	// When empty the headers are always honored, which is the deployment model
	// behind a hosting platform's edge proxy.
	TrustedProxies []netip.Prefix
}

func DefaultConfig() *Config {
	return &Config{}
}

// Middleware derives the client key and User-Agent for each request.
type Middleware struct {
	config *Config
}

func NewMiddleware(cfg *Config) *Middleware {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Middleware{config: cfg}
}

// Handler stores the derived client key and User-Agent in the request context.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), m.ClientKey(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientKey resolves the identifier used for rate limiting: the first hop of
// X-Forwarded-For, then X-Real-IP, then requestcontext.UnknownClient. Every
// request without a forwarded address shares the "unknown" counter.
func (m *Middleware) ClientKey(r *http.Request) string {
	if len(m.config.TrustedProxies) > 0 {
		remoteIP := parseRemoteAddr(r.RemoteAddr)
		if !m.isTrustedProxy(remoteIP) {
			if remoteIP == "" {
				return requestcontext.UnknownClient
			}
			return remoteIP
		}
	}

	if hop := firstHop(r.Header.Get("X-Forwarded-For")); hop != "" {
		return hop
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && len(xri) <= MaxXFFHeaderLength {
		return xri
	}
	return requestcontext.UnknownClient
}

func firstHop(xff string) string {
	if xff == "" || len(xff) > MaxXFFHeaderLength {
		return ""
	}
	before, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(before)
}

func (m *Middleware) isTrustedProxy(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range m.config.TrustedProxies {
		if prefix.Contains(addr.Unmap()) {
			return true
		}
	}
	return false
}

// ParseTrustedProxies parses comma-separated CIDRs or bare addresses.
func ParseTrustedProxies(raw string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "/") {
			addr, err := netip.ParseAddr(part)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(part)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, nil
}

// parseRemoteAddr strips the port from RemoteAddr.
func parseRemoteAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap.Addr().Unmap().String()
	}
	if addr, err := netip.ParseAddr(strings.Trim(remoteAddr, "[]")); err == nil {
		return addr.Unmap().String()
	}
	return ""
}
