package service

import (
	"context"
	"errors"

	"sigil/internal/auth/models"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/platform/sentinel"
)

// History returns the account's recent successful logins, newest first.
func (s *Service) History(ctx context.Context, address domain.Address) (*models.HistoryResult, error) {
	account, err := s.accounts.FindByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrUnknownIdentity
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	history := account.Security.LoginHistory
	logins := make([]models.LoginEntry, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		logins = append(logins, history[i])
	}
	return &models.HistoryResult{
		LastLogin: account.Security.LastLogin,
		Logins:    logins,
	}, nil
}
