package service

import (
	dErrors "sigil/pkg/domain-errors"
)

var (
	ErrInvalidRecipient   = dErrors.New(dErrors.CodeValidation, "invalid recipient address")
	ErrCallerUnknown      = dErrors.New(dErrors.CodeUnauthorized, "unknown identity")
	ErrIssuerRoleRequired = dErrors.New(dErrors.CodeForbidden, "issuer role required")
	ErrDocumentNotFound   = dErrors.New(dErrors.CodeNotFound, "document not found")
	ErrLedgerUnavailable  = dErrors.New(dErrors.CodeUnavailable, "ledger unavailable")
	ErrContentUnavailable = dErrors.New(dErrors.CodeUnavailable, "content store unavailable")
)
