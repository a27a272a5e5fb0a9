package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"folio/internal/contact/models"
	dErrors "folio/pkg/domain-errors"
	"folio/pkg/platform/circuit"
)

// BreakerSender stops calling a failing provider. While the circuit is open
// sends fail immediately with CodeDispatchFailed; after the cooldown probe
// sends go through and close the circuit again once enough succeed.
type BreakerSender struct {
	next    Sender
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewBreakerSender(next Sender, breaker *circuit.Breaker, logger *slog.Logger) *BreakerSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &BreakerSender{next: next, breaker: breaker, logger: logger}
}

// ErrCircuitOpen is returned without contacting the provider.
var ErrCircuitOpen = dErrors.New(dErrors.CodeDispatchFailed, "email provider circuit open")

// IsCircuitOpen reports whether err is ErrCircuitOpen or wraps it. errors.Is
// matches any dispatch_failed error, so identity is checked instead.
func IsCircuitOpen(err error) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if err == ErrCircuitOpen {
			return true
		}
	}
	return false
}

func (s *BreakerSender) Send(ctx context.Context, msg *models.Message) (*models.Receipt, error) {
	if !s.breaker.Allow() {
		return nil, ErrCircuitOpen
	}

	receipt, err := s.next.Send(ctx, msg)
	if err != nil {
		if change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "email provider circuit opened", "breaker", s.breaker.Name())
		}
		return nil, err
	}

	if change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "email provider circuit closed", "breaker", s.breaker.Name())
	}
	return receipt, nil
}

// State exposes the breaker state for health reporting.
func (s *BreakerSender) State() circuit.State {
	return s.breaker.State()
}
