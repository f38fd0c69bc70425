package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"sigil/internal/audit"
	"sigil/internal/auth/device"
	"sigil/internal/auth/models"
	"sigil/internal/auth/nonce"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/platform/sentinel"
	"sigil/pkg/requestcontext"
)

// LoginRequest carries a signed challenge answer. SourceIP and UserAgent
// feed the login history entry; the handler fills them from the request.
type LoginRequest struct {
	Address   string
	Signature string
	Nonce     string
	SourceIP  string
	UserAgent string
}

// Login verifies a signed challenge and returns a session token pair.
// The lock gate runs before any signature work so a locked account gets
// no signature oracle. Only signature failures (recovery errors and
// mismatches) count toward the lockout; a stale or replaced challenge is
// not a forgery signal.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*models.TokenPair, error) {
	ctx, span := tracer.Start(ctx, "auth.login")
	defer span.End()

	address, err := domain.ParseAddress(req.Address)
	if err != nil {
		return nil, ErrInvalidAddress
	}
	span.SetAttributes(attribute.String("wallet.address", address.String()))
	now := requestcontext.Now(ctx)

	account, err := s.accounts.FindByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementLogin("failure")
			return nil, ErrUnknownIdentity
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if err := accountUsable(account); err != nil {
		return nil, err
	}
	if account.IsLocked(now) {
		s.metrics.IncrementLogin("locked")
		s.logAudit(ctx, audit.KindLoginFailed, address, "locked",
			"reason", "account_locked",
		)
		return nil, ErrAccountLocked
	}

	if account.Auth.Nonce == nil {
		s.metrics.IncrementLogin("failure")
		s.logAudit(ctx, audit.KindLoginFailed, address, "failed",
			"reason", "no_challenge",
		)
		return nil, ErrUnknownIdentity
	}
	stored := *account.Auth.Nonce
	if req.Nonce != stored {
		s.metrics.IncrementLogin("failure")
		s.logAudit(ctx, audit.KindLoginFailed, address, "failed",
			"reason", "stale_challenge",
		)
		return nil, ErrNonceExpired
	}
	if !nonce.IsFresh(stored, now, s.cfg.NonceMaxAge) {
		s.metrics.IncrementLogin("failure")
		s.logAudit(ctx, audit.KindLoginFailed, address, "failed",
			"reason", "expired_challenge",
		)
		return nil, ErrNonceExpired
	}

	recovered, err := s.recoverer.Recover(stored, req.Signature)
	if err != nil {
		s.metrics.IncrementLogin("failure")
		s.recordFailure(ctx, address, "recovery_failed", now)
		return nil, ErrSignatureRecovery
	}
	if !recovered.Equal(address) {
		s.metrics.IncrementLogin("failure")
		s.recordFailure(ctx, address, "signature_mismatch", now)
		return nil, ErrSignatureMismatch
	}

	entry := models.LoginEntry{
		At:       now,
		SourceIP: req.SourceIP,
		Device:   device.ParseUserAgent(req.UserAgent),
	}
	if _, err := s.accounts.ConsumeChallenge(ctx, address, stored, entry, s.cfg.LoginHistoryLimit, now); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			// Another login answered this challenge first.
			s.metrics.IncrementLogin("failure")
			s.logAudit(ctx, audit.KindLoginFailed, address, "failed",
				"reason", "challenge_replayed",
			)
			return nil, ErrNonceExpired
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, ErrUnknownIdentity
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume challenge")
		}
	}

	pair, err := s.issuePair(address)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementLogin("success")
	s.logAudit(ctx, audit.KindLoginSucceeded, address, "success",
		"source_ip", req.SourceIP,
		"device", entry.Device,
	)
	return pair, nil
}

// recordFailure counts a signature failure on the store and emits the
// lockout event when this attempt trips the threshold. Bookkeeping
// errors are logged; the login error stands either way.
func (s *Service) recordFailure(ctx context.Context, address domain.Address, reason string, now time.Time) {
	attempts, locked, err := s.accounts.RecordFailure(ctx, address, s.cfg.LockoutThreshold, s.cfg.LockoutDuration, now)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record login failure",
			"address", address.String(),
			"error", err,
		)
		return
	}
	s.logAudit(ctx, audit.KindLoginFailed, address, "failed",
		"reason", reason,
		"attempts", attempts,
	)
	if locked {
		s.metrics.IncrementLockout()
		s.logAudit(ctx, audit.KindAccountLocked, address, "locked",
			"attempts", attempts,
		)
	}
}
