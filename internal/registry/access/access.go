// Package access decides whether a wallet may open a registered document.
// The decision itself lives on the ledger; this layer validates inputs,
// keeps the two failure modes apart (the ledger said no vs the ledger could
// not be asked) and audits denials.
package access

import (
	"context"
	"log/slog"

	"sigil/internal/audit"
	"sigil/internal/registry/metrics"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

var (
	// ErrAccessDenied is the ledger's answer, not a failure.
	ErrAccessDenied = dErrors.New(dErrors.CodeForbidden, "document access denied")
	// ErrAccessCheckFailed means the answer could not be obtained; callers
	// must fail closed without treating the wallet as unauthorized.
	ErrAccessCheckFailed = dErrors.New(dErrors.CodeUnavailable, "document access check failed")
)

// LedgerGate is the capability query the authorizer delegates to.
type LedgerGate interface {
	CanAccessDocument(ctx context.Context, documentID string, caller domain.Address) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Authorizer answers document access questions for the registry handlers.
type Authorizer struct {
	ledger  LedgerGate
	logger  *slog.Logger
	auditor AuditPublisher
	metrics *metrics.Metrics
}

type Option func(a *Authorizer)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Authorizer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(a *Authorizer) {
		a.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Authorizer) {
		a.metrics = m
	}
}

// New constructs an Authorizer over the given ledger gate.
func New(ledger LedgerGate, opts ...Option) *Authorizer {
	a := &Authorizer{
		ledger: ledger,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authorize returns nil when caller may open the document, ErrAccessDenied
// when the ledger refuses, and ErrAccessCheckFailed when the ledger cannot
// answer.
func (a *Authorizer) Authorize(ctx context.Context, id domain.DocumentID, caller domain.Address) error {
	if id.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "document id is required")
	}
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "caller address is required")
	}

	allowed, err := a.ledger.CanAccessDocument(ctx, id.String(), caller)
	if err != nil {
		a.metrics.IncrementAccessCheck("error")
		a.logger.WarnContext(ctx, "document access check failed",
			"document_id", id.String(),
			"caller", caller.String(),
			"error", err,
		)
		return ErrAccessCheckFailed
	}
	if !allowed {
		a.metrics.IncrementAccessCheck("denied")
		a.logger.InfoContext(ctx, "document access denied",
			"document_id", id.String(),
			"caller", caller.String(),
			"event", string(audit.KindAccessDenied),
			"log_type", "audit",
		)
		if a.auditor != nil {
			_ = a.auditor.Emit(ctx, audit.Event{
				Kind:    audit.KindAccessDenied,
				Actor:   caller.String(),
				Subject: id.String(),
				Outcome: "denied",
			})
		}
		return ErrAccessDenied
	}

	a.metrics.IncrementAccessCheck("granted")
	return nil
}
