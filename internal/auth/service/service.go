// Package service implements the wallet-challenge authentication core:
// account registration, challenge issuance, signature login with lockout
// bookkeeping, token refresh and revocation, and login history.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"sigil/internal/audit"
	"sigil/internal/auth/metrics"
	"sigil/internal/auth/models"
	"sigil/internal/auth/signature"
	"sigil/internal/platform/config"
	"sigil/internal/token"
	"sigil/pkg/attrs"
	"sigil/pkg/domain"
	"sigil/pkg/requestcontext"
)

var tracer trace.Tracer = otel.Tracer("sigil/internal/auth")

// AccountStore is the slice of the identity store the auth flows need.
// Every auth-state transition is a single atomic operation on the store;
// the service never reads, mutates and writes auth state separately.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByAddress(ctx context.Context, address domain.Address) (*models.Account, error)
	SetChallenge(ctx context.Context, address domain.Address, nonce string, now time.Time) error
	ConsumeChallenge(ctx context.Context, address domain.Address, expected string, entry models.LoginEntry, historyLimit int, now time.Time) (*models.Account, error)
	RecordFailure(ctx context.Context, address domain.Address, threshold int, lockFor time.Duration, now time.Time) (int, bool, error)
}

// RevocationList tracks refresh-token JTIs that must no longer be
// honored.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the wallet-challenge login flows.
type Service struct {
	accounts       AccountStore
	trl            RevocationList
	tokens         *token.Issuer
	recoverer      signature.Recoverer
	cfg            config.AuthConfig
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

// WithConfig overrides the default auth parameters (nonce max age,
// lockout threshold and duration, login history cap).
func WithConfig(cfg config.AuthConfig) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

// New constructs a Service. Without WithConfig it locks after 5 failed
// attempts for 15 minutes, accepts nonces up to 24h old, and keeps the
// 10 most recent logins.
func New(accounts AccountStore, trl RevocationList, tokens *token.Issuer, recoverer signature.Recoverer, opts ...Option) *Service {
	s := &Service{
		accounts:  accounts,
		trl:       trl,
		tokens:    tokens,
		recoverer: recoverer,
		cfg: config.AuthConfig{
			NonceMaxAge:       24 * time.Hour,
			LockoutThreshold:  5,
			LockoutDuration:   15 * time.Minute,
			LoginHistoryLimit: 10,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// accountUsable enforces the status gate shared by challenge, login and
// request authentication. Unknown statuses are refused.
func accountUsable(account *models.Account) error {
	if account.Status == models.StatusBlacklisted {
		return ErrAccountBlacklisted
	}
	if !account.Status.CanAuthenticate() {
		return ErrAccountSuspended
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, kind audit.Kind, subject domain.Address, outcome string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(kind), "log_type", "audit")
	s.logger.InfoContext(ctx, string(kind), args...)
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Kind:    kind,
		Actor:   subject.String(),
		Subject: subject.String(),
		Outcome: outcome,
		Detail:  attrs.StringMap(attributes, "source_ip", "device", "reason", "jti"),
	})
}
