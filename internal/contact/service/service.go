// Package service runs one contact submission through validation,
// sanitization, composition and dispatch.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"folio/internal/contact/dispatch"
	"folio/internal/contact/metrics"
	"folio/internal/contact/models"
	"folio/internal/contact/sanitize"
	"folio/internal/contact/validation"
	dErrors "folio/pkg/domain-errors"
	"folio/pkg/platform/circuit"
	"folio/pkg/platform/tracer"
	"folio/pkg/requestcontext"
)

// Composer builds the outbound message from the raw and escaped submission.
type Composer interface {
	Compose(raw models.Submission, clean models.SanitizedSubmission) (*models.Message, error)
}

type Service struct {
	composer    Composer
	sender      dispatch.Sender
	provider    string
	tracer      tracer.Tracer
	metrics     *metrics.Metrics
	logger      *slog.Logger
	diagnostics bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithProvider names the sender in logs, spans and metrics.
func WithProvider(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.provider = name
		}
	}
}

// WithDiagnostics includes provider error detail in failure logs. Enabled
// only in development.
func WithDiagnostics(enabled bool) Option {
	return func(s *Service) {
		s.diagnostics = enabled
	}
}

func New(composer Composer, sender dispatch.Sender, opts ...Option) (*Service, error) {
	if composer == nil {
		return nil, errors.New("composer is required")
	}
	if sender == nil {
		return nil, errors.New("sender is required")
	}
	s := &Service{
		composer: composer,
		sender:   sender,
		provider: "unknown",
		tracer:   tracer.NewNoop(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit validates, escapes, composes and dispatches one submission.
// Validation failures carry a models.Reason; dispatch failures keep the
// sender's code (CodeDispatchFailed or CodeTimeout). Nothing is retried.
func (s *Service) Submit(ctx context.Context, sub models.Submission) (receipt *models.Receipt, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanContactSubmit)
	defer func() {
		span.SetAttributes(tracer.String(tracer.AttrOutcome, outcome(err)))
		span.End(err)
	}()

	// Lengths and the email format apply to the values as received; only the
	// escaped copy is trimmed.
	if err := validation.Validate(sub); err != nil {
		return nil, err
	}

	clean := sanitize.Submission(sub.Trimmed())
	msg, err := s.composer.Compose(sub, clean)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compose message")
	}

	return s.dispatch(ctx, msg, sub.Email)
}

func (s *Service) dispatch(ctx context.Context, msg *models.Message, senderEmail string) (receipt *models.Receipt, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanContactDispatch,
		tracer.String(tracer.AttrProvider, s.provider),
		tracer.Int(tracer.AttrRecipientCount, len(msg.To)),
		tracer.String(tracer.AttrSenderHash, tracer.HashEmail(senderEmail)),
	)
	defer func() { span.End(err) }()

	start := time.Now()
	receipt, err = s.sender.Send(ctx, msg)
	elapsed := time.Since(start)

	if err != nil {
		s.observe("error", elapsed)
		if dispatch.IsCircuitOpen(err) {
			span.AddEvent(tracer.EventBreakerRejected, tracer.String(tracer.AttrBreakerState, circuit.StateOpen.String()))
		}
		s.logFailure(ctx, err, elapsed)
		return nil, dErrors.Wrap(err, dErrors.CodeDispatchFailed, "Failed to send email. Please try again later.")
	}

	s.observe("success", elapsed)
	if receipt == nil {
		receipt = &models.Receipt{}
	}
	span.SetAttributes(tracer.String(tracer.AttrMessageID, receipt.ID))
	s.logger.InfoContext(ctx, "contact email dispatched",
		"provider", s.provider,
		"message_id", receipt.ID,
		"duration_ms", elapsed.Milliseconds(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return receipt, nil
}

func (s *Service) logFailure(ctx context.Context, err error, elapsed time.Duration) {
	attrs := []any{
		"provider", s.provider,
		"code", string(dErrors.CodeOf(err)),
		"duration_ms", elapsed.Milliseconds(),
		"request_id", requestcontext.RequestID(ctx),
	}
	if s.diagnostics {
		attrs = append(attrs, "error", errorDetail(err))
	}
	s.logger.ErrorContext(ctx, "contact email dispatch failed", attrs...)
}

// errorDetail returns the innermost cause, which holds the provider's text.
func errorDetail(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func outcome(err error) string {
	if err == nil {
		return "sent"
	}
	return string(dErrors.CodeOf(err))
}

func (s *Service) observe(status string, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveDispatch(s.provider, status, elapsed.Seconds())
	}
}
