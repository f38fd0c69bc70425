// Package verification gates disclosures behind one-time codes sent over
// email: an account holder proving they own the address on file, and a
// third party proving a document's owner let them in. Both flows ride
// the same code store; the code never travels back over the API.
package verification

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"sigil/internal/audit"
	authmodels "sigil/internal/auth/models"
	"sigil/internal/email"
	regmodels "sigil/internal/registry/models"
	"sigil/pkg/domain"
	"sigil/pkg/requestcontext"
)

var tracer trace.Tracer = otel.Tracer("sigil/internal/verification")

// AccountStore is the slice of the identity store the proof flows need.
type AccountStore interface {
	FindByAddress(ctx context.Context, address domain.Address) (*authmodels.Account, error)
	UpdateProfile(ctx context.Context, address domain.Address, update authmodels.ProfileUpdate, now time.Time) (*authmodels.Account, error)
}

// DocumentStore resolves the document a proof is being run for.
type DocumentStore interface {
	FindByID(ctx context.Context, id domain.DocumentID) (*regmodels.Document, error)
}

// CodeStore issues and verifies the one-time codes. Verify returns nil
// on acceptance; otherwise one of the otc reasons.
type CodeStore interface {
	Issue(ctx context.Context, key string) (string, error)
	Verify(ctx context.Context, key, candidate string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the email-ownership and document-ownership proof flows.
type Service struct {
	accounts       AccountStore
	documents      DocumentStore
	codes          CodeStore
	sender         EmailSender
	content        ContentFetcher
	codeTTL        time.Duration
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithCodeTTL sets the validity window quoted in outgoing mail. It must
// match the TTL the code store was built with.
func WithCodeTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.codeTTL = ttl
		}
	}
}

// New constructs a Service. Without WithCodeTTL the mail quotes the
// 5-minute default the code store also uses.
func New(accounts AccountStore, documents DocumentStore, codes CodeStore, sender EmailSender, content ContentFetcher, opts ...Option) *Service {
	s := &Service{
		accounts:  accounts,
		documents: documents,
		codes:     codes,
		sender:    sender,
		content:   content,
		codeTTL:   5 * time.Minute,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) logAudit(ctx context.Context, kind audit.Kind, actor domain.Address, subject, outcome string, detail map[string]string) {
	attributes := []any{"event", string(kind), "log_type", "audit", "subject", subject}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	for key, value := range detail {
		attributes = append(attributes, key, value)
	}
	s.logger.InfoContext(ctx, string(kind), attributes...)
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Kind:    kind,
		Actor:   actor.String(),
		Subject: subject,
		Outcome: outcome,
		Detail:  detail,
	})
}

// deliveryLabel flattens a transport outcome into the wire vocabulary.
func deliveryLabel(outcome email.Outcome) string {
	if outcome.Rejected {
		return "rejected"
	}
	return "accepted"
}
