package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"sigil/internal/platform/config"
)

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	client *mail.Client
	from   string
	logger *slog.Logger
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender constructs a relay-backed sender. Credentials are
// optional; without them the relay is used unauthenticated, as local
// development relays are.
func NewSMTPSender(cfg config.SMTPConfig, logger *slog.Logger) (*SMTPSender, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not build smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From, logger: logger}, nil
}

// Send delivers one message. A recipient the relay refuses comes back as
// Rejected; everything else that fails is a transport error.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (Outcome, error) {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return Outcome{}, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return Outcome{Rejected: true}, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		var sendErr *mail.SendError
		if errors.As(err, &sendErr) {
			s.logger.WarnContext(ctx, "relay refused message",
				"to", msg.To,
				"error", err,
			)
			return Outcome{Rejected: true}, fmt.Errorf("recipient refused: %w", err)
		}
		return Outcome{}, fmt.Errorf("smtp delivery failed: %w", err)
	}

	return Outcome{Accepted: true}, nil
}
