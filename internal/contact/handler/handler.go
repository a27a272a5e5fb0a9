package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"folio/internal/contact/metrics"
	"folio/internal/contact/models"
	"folio/internal/i18n"
	rlmodels "folio/internal/ratelimit/models"
	dErrors "folio/pkg/domain-errors"
	"folio/pkg/platform/httputil"
	request "folio/pkg/platform/middleware/request"
	"folio/pkg/requestcontext"
)

// Limiter decides whether a client may submit now.
type Limiter interface {
	Allow(ctx context.Context, clientKey string) *rlmodels.Decision
}

// Service validates and dispatches one submission.
type Service interface {
	Submit(ctx context.Context, sub models.Submission) (*models.Receipt, error)
}

const (
	keySent            = "contact.sent"
	keyRateLimited     = "contact.rate_limited"
	keyPayloadTooLarge = "contact.payload_too_large"
	keyInvalidBody     = "contact.invalid_body"
	keySendFailed      = "contact.send_failed"
	keyInternal        = "contact.internal_error"
)

type Handler struct {
	limiter      Limiter
	service      Service
	catalog      *i18n.Catalog
	metrics      *metrics.Metrics
	logger       *slog.Logger
	maxBodyBytes int64
}

type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithMaxBodyBytes overrides the request body cap. Default models.MaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

func New(limiter Limiter, service Service, catalog *i18n.Catalog, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		limiter:      limiter,
		service:      service,
		catalog:      catalog,
		logger:       logger,
		maxBodyBytes: models.MaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.With(request.BodyLimit(h.maxBodyBytes)).Post("/api/contact", h.HandleSubmit)
}

// HandleSubmit implements POST /api/contact.
//
// Input: { "name": "...", "email": "...", "message": "..." }
// Output: 200 { "message": "Email sent successfully", "id": "..." }
//
// The rate limit is checked before the body is read, so denied requests
// cost nothing beyond the counter lookup.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := h.catalog.Negotiate(r)

	decision := h.limiter.Allow(ctx, requestcontext.ClientIP(ctx))
	writeRateLimitHeaders(w, decision)
	if decision != nil && !decision.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
		h.logger.InfoContext(ctx, "contact submission rate limited",
			"retry_after", decision.RetryAfter,
			"request_id", requestcontext.RequestID(ctx),
		)
		h.reject(w, lang, http.StatusTooManyRequests, keyRateLimited)
		return
	}

	if r.ContentLength > h.maxBodyBytes {
		h.reject(w, lang, http.StatusRequestEntityTooLarge, keyPayloadTooLarge)
		return
	}

	sub, err := httputil.DecodeJSON[models.Submission](r)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to decode contact submission",
			"code", string(dErrors.CodeOf(err)),
			"request_id", requestcontext.RequestID(ctx),
		)
		h.writeError(w, lang, err)
		return
	}

	receipt, err := h.service.Submit(ctx, *sub)
	if err != nil {
		h.writeError(w, lang, err)
		return
	}

	resp := &models.SentResponse{Message: h.catalog.Message(lang, keySent)}
	if receipt != nil {
		resp.ID = receipt.ID
	}
	h.count(outcomeOf(keySent))
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, lang language.Tag, err error) {
	status := httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err))
	h.reject(w, lang, status, messageKey(err))
}

func (h *Handler) reject(w http.ResponseWriter, lang language.Tag, status int, key string) {
	h.count(outcomeOf(key))
	httputil.WriteErrorMessage(w, status, h.catalog.Message(lang, key))
}

func (h *Handler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.IncrementSubmission(outcome)
	}
}

// messageKey maps an error to its catalog key. Validation errors name their
// reason; server-side failures share one generic message.
func messageKey(err error) string {
	var reason models.Reason
	if errors.As(err, &reason) {
		return "contact." + string(reason)
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodePayloadTooLarge:
		return keyPayloadTooLarge
	case dErrors.CodeBadRequest:
		return keyInvalidBody
	case dErrors.CodeRateLimited:
		return keyRateLimited
	case dErrors.CodeDispatchFailed, dErrors.CodeTimeout:
		return keySendFailed
	default:
		return keyInternal
	}
}

func outcomeOf(key string) string {
	return strings.TrimPrefix(key, "contact.")
}

// writeRateLimitHeaders adds X-RateLimit-* headers. A degraded decision has
// no counter behind it, so nothing is advertised.
func writeRateLimitHeaders(w http.ResponseWriter, d *rlmodels.Decision) {
	if d == nil || d.Degraded {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
}
