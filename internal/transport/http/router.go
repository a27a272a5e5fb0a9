package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	contacthandler "folio/internal/contact/handler"
	"folio/internal/i18n"
	"folio/internal/platform/health"
	"folio/pkg/platform/httputil"
	"folio/pkg/platform/middleware/metadata"
	request "folio/pkg/platform/middleware/request"
)

// Deps are the pieces NewRouter mounts. Metrics may be nil; the other fields
// are required.
type Deps struct {
	Logger   *slog.Logger
	Catalog  *i18n.Catalog
	Metadata *metadata.Middleware
	Latency  *request.Metrics
	Health   *health.Handler
	Contact  *contacthandler.Handler
	Metrics  http.Handler
}

// NewRouter wires the public endpoints with the request middleware stack.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger, func(req *http.Request) string {
		return d.Catalog.Message(d.Catalog.Negotiate(req), "contact.internal_error")
	}))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(d.Metadata.Handler)
	r.Use(request.Logger(d.Logger))
	r.Use(request.LatencyMiddleware(d.Latency))

	d.Health.Register(r)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
	d.Contact.Register(r)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		lang := d.Catalog.Negotiate(req)
		httputil.WriteErrorMessage(w, http.StatusNotFound, d.Catalog.Message(lang, "contact.not_found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		lang := d.Catalog.Negotiate(req)
		httputil.WriteErrorMessage(w, http.StatusMethodNotAllowed, d.Catalog.Message(lang, "contact.method_not_allowed"))
	})

	return r
}
