// Package dispatch delivers composed contact messages to an email provider.
// Senders never retry; a failed send is reported to the caller once.
package dispatch

import (
	"context"

	"folio/internal/contact/models"
)

// Sender delivers one message and returns the provider's receipt.
type Sender interface {
	Send(ctx context.Context, msg *models.Message) (*models.Receipt, error)
}

// Provider names reported in logs, traces and metrics.
const (
	ProviderResend = "resend"
	ProviderLog    = "log"
)
