package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"sigil/internal/audit"
	"sigil/internal/auth/models"
	"sigil/internal/auth/nonce"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/platform/sentinel"
	"sigil/pkg/requestcontext"
)

// Challenge issues a fresh login nonce for the address. Any outstanding
// nonce is invalidated by the overwrite; a stale lock is cleared on the
// same store write. Locked accounts get no challenge at all, so there is
// nothing to sign until the window elapses.
func (s *Service) Challenge(ctx context.Context, rawAddress string) (*models.ChallengeResult, error) {
	ctx, span := tracer.Start(ctx, "auth.challenge")
	defer span.End()

	address, err := domain.ParseAddress(rawAddress)
	if err != nil {
		return nil, ErrInvalidAddress
	}
	span.SetAttributes(attribute.String("wallet.address", address.String()))
	now := requestcontext.Now(ctx)

	account, err := s.accounts.FindByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrUnknownIdentity
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if err := accountUsable(account); err != nil {
		return nil, err
	}
	if account.IsLocked(now) {
		return nil, ErrAccountLocked
	}

	challenge, err := nonce.Issue(address, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate challenge")
	}
	if err := s.accounts.SetChallenge(ctx, address, challenge, now); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrUnknownIdentity
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store challenge")
	}

	s.metrics.IncrementChallengeIssued()
	s.logAudit(ctx, audit.KindChallengeIssued, address, "issued")

	return &models.ChallengeResult{
		Nonce:     challenge,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.NonceMaxAge),
	}, nil
}
