package service

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"sigil/internal/audit"
	"sigil/internal/auth/models"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/platform/sentinel"
	"sigil/pkg/requestcontext"
)

// RegisterRequest creates an identity record. Roles defaults to holder;
// unknown role names are dropped rather than rejected.
type RegisterRequest struct {
	Address   string
	Email     string
	Roles     []string
	PhotoHash string
}

// Register creates the identity record a later challenge binds to.
// Email stays unverified until the email-ownership proof completes.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer span.End()

	address, err := domain.ParseAddress(req.Address)
	if err != nil {
		return nil, ErrInvalidAddress
	}
	span.SetAttributes(attribute.String("wallet.address", address.String()))
	now := requestcontext.Now(ctx)

	account, err := models.NewAccount(address, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	account.Email = strings.TrimSpace(req.Email)
	account.PhotoHash = strings.TrimSpace(req.PhotoHash)
	if roles := domain.ParseRoles(req.Roles); len(roles) > 0 {
		account.Roles = roles
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, ErrAccountExists
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	s.logAudit(ctx, audit.KindAccountRegistered, address, "created",
		"roles", domain.RoleNames(account.Roles),
	)
	return account, nil
}
