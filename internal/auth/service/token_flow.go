package service

import (
	"context"
	"errors"

	"sigil/internal/audit"
	"sigil/internal/auth/models"
	"sigil/internal/token"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/platform/sentinel"
	"sigil/pkg/requestcontext"
)

// Refresh mints a new access token from a live refresh token. The
// refresh token is not rotated; it stays valid until it expires or is
// revoked by logout. No identity-store fetch happens here: the refresh
// secret plus the revocation list are the whole gate.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	ctx, span := tracer.Start(ctx, "auth.refresh")
	defer span.End()

	claims, err := s.tokens.Validate(refreshToken, token.KindRefresh)
	if err != nil {
		return nil, err
	}
	revoked, err := s.trl.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token revocation")
	}
	if revoked {
		return nil, token.ErrTokenInvalid
	}

	address, err := domain.ParseAddress(claims.Address)
	if err != nil {
		return nil, token.ErrTokenInvalid
	}
	access, err := s.tokens.Issue(address, token.KindAccess)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}

	s.logAudit(ctx, audit.KindTokenRefreshed, address, "success")

	return &models.TokenPair{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL(token.KindAccess).Seconds()),
	}, nil
}

// Logout revokes the refresh token's JTI for its remaining lifetime.
// Tokens that no longer validate have nothing to revoke, so logout is
// idempotent and never reveals token state.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	ctx, span := tracer.Start(ctx, "auth.logout")
	defer span.End()

	claims, err := s.tokens.Validate(refreshToken, token.KindRefresh)
	if err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	remaining := claims.ExpiresAt.Time.Sub(requestcontext.Now(ctx))
	if remaining <= 0 {
		return nil
	}
	if err := s.trl.Revoke(ctx, claims.ID, remaining); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}

	if address, err := domain.ParseAddress(claims.Address); err == nil {
		s.logAudit(ctx, audit.KindLoggedOut, address, "revoked",
			"jti", claims.ID,
		)
	}
	return nil
}

// Authenticate resolves a bearer access token to its wallet address for
// the request authenticator. The account must still exist and pass the
// status gate; a deleted or suspended account invalidates its tokens
// immediately even though they still verify.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (domain.Address, error) {
	ctx, span := tracer.Start(ctx, "auth.authenticate")
	defer span.End()

	claims, err := s.tokens.Validate(accessToken, token.KindAccess)
	if err != nil {
		return "", err
	}
	address, err := domain.ParseAddress(claims.Address)
	if err != nil {
		return "", token.ErrTokenInvalid
	}

	account, err := s.accounts.FindByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", ErrUnknownIdentity
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if err := accountUsable(account); err != nil {
		return "", err
	}
	return address, nil
}

func (s *Service) issuePair(address domain.Address) (*models.TokenPair, error) {
	access, err := s.tokens.Issue(address, token.KindAccess)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	refresh, err := s.tokens.Issue(address, token.KindRefresh)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue refresh token")
	}
	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.TTL(token.KindAccess).Seconds()),
	}, nil
}
