package email

import (
	"context"
	"log/slog"
)

// NopSender accepts everything and only logs. Used in development and
// tests where no relay exists.
type NopSender struct {
	logger *slog.Logger
}

var _ Sender = (*NopSender)(nil)

func NewNopSender(logger *slog.Logger) *NopSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &NopSender{logger: logger}
}

func (s *NopSender) Send(ctx context.Context, msg Message) (Outcome, error) {
	s.logger.InfoContext(ctx, "email suppressed",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return Outcome{Accepted: true}, nil
}
