package service

import (
	dErrors "sigil/pkg/domain-errors"
)

// Login failures deliberately share the unauthorized code; the handler
// collapses them into one generic response so callers cannot probe which
// step failed. errors.Is still tells them apart in tests and logs.
var (
	ErrInvalidAddress     = dErrors.New(dErrors.CodeValidation, "invalid wallet address")
	ErrUnknownIdentity    = dErrors.New(dErrors.CodeUnauthorized, "unknown identity")
	ErrNonceExpired       = dErrors.New(dErrors.CodeUnauthorized, "challenge expired")
	ErrSignatureRecovery  = dErrors.New(dErrors.CodeUnauthorized, "signature recovery failed")
	ErrSignatureMismatch  = dErrors.New(dErrors.CodeUnauthorized, "signature does not match address")
	ErrAccountLocked      = dErrors.New(dErrors.CodeRateLimited, "account temporarily locked")
	ErrAccountSuspended   = dErrors.New(dErrors.CodeForbidden, "account suspended")
	ErrAccountBlacklisted = dErrors.New(dErrors.CodeForbidden, "account blacklisted")
	ErrAccountExists      = dErrors.New(dErrors.CodeConflict, "account already registered")
)
