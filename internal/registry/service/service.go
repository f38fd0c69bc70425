// Package service implements the document registry core: registration with
// ledger anchoring, and metadata/content retrieval behind the document
// access check.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"sigil/internal/audit"
	authmodels "sigil/internal/auth/models"
	"sigil/internal/registry/metrics"
	"sigil/internal/registry/models"
	"sigil/pkg/domain"
	"sigil/pkg/requestcontext"
)

var tracer trace.Tracer = otel.Tracer("sigil/internal/registry")

// DocumentStore is the slice of the document store the registry needs.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id domain.DocumentID) (*models.Document, error)
}

// AccountDirectory resolves wallet addresses to identity records for the
// issuer role check.
type AccountDirectory interface {
	FindByAddress(ctx context.Context, address domain.Address) (*authmodels.Account, error)
}

// Authorizer gates document reads on the ledger's capability query.
type Authorizer interface {
	Authorize(ctx context.Context, id domain.DocumentID, caller domain.Address) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates document registration and retrieval.
type Service struct {
	documents      DocumentStore
	ledger         Ledger
	content        ContentStore
	accounts       AccountDirectory
	access         Authorizer
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(documents DocumentStore, ledger Ledger, content ContentStore, accounts AccountDirectory, access Authorizer, opts ...Option) *Service {
	s := &Service{
		documents: documents,
		ledger:    ledger,
		content:   content,
		accounts:  accounts,
		access:    access,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) logAudit(ctx context.Context, kind audit.Kind, actor domain.Address, subject string, outcome string, detail map[string]string) {
	attributes := []any{"event", string(kind), "log_type", "audit", "subject", subject}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	for k, v := range detail {
		attributes = append(attributes, k, v)
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
