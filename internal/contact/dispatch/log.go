package dispatch

import (
	"context"
	"log/slog"

	"folio/internal/contact/models"
	"folio/pkg/requestcontext"

	"github.com/google/uuid"
)

// LogSender accepts every message without network access and logs its
// envelope. Message content is not logged.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg *models.Message) (*models.Receipt, error) {
	id := uuid.NewString()
	s.logger.InfoContext(ctx, "contact email accepted by log sender",
		"message_id", id,
		"recipient_count", len(msg.To),
		"subject_length", len(msg.Subject),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.Receipt{ID: id}, nil
}
