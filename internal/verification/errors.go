package verification

import (
	dErrors "sigil/pkg/domain-errors"
)

var (
	// ErrUnknownAccount mirrors the auth layer's refusal to say whether
	// an address exists.
	ErrUnknownAccount = dErrors.New(dErrors.CodeUnauthorized, "unknown identity")

	// ErrEmailMissing means the account never supplied an address to
	// prove ownership of.
	ErrEmailMissing = dErrors.New(dErrors.CodeValidation, "account has no email address")

	// ErrAlreadyVerified keeps the email proof single-shot.
	ErrAlreadyVerified = dErrors.New(dErrors.CodeConflict, "email already verified")

	// ErrCodeExpired covers both an expired code and no code at all, so
	// callers cannot probe whether a flow was ever started.
	ErrCodeExpired = dErrors.New(dErrors.CodeUnauthorized, "code expired")

	// ErrCodeMismatch means the candidate was wrong; attempts remain.
	ErrCodeMismatch = dErrors.New(dErrors.CodeUnauthorized, "code mismatch")

	// ErrAttemptsExhausted means the attempt budget is spent and a fresh
	// code must be requested.
	ErrAttemptsExhausted = dErrors.New(dErrors.CodeRateLimited, "code attempts exhausted")

	// ErrDeliveryFailed means the mail transport failed before a verdict.
	ErrDeliveryFailed = dErrors.New(dErrors.CodeUnavailable, "code delivery failed")

	// ErrDocumentNotFound is returned for ids with no registered document.
	ErrDocumentNotFound = dErrors.New(dErrors.CodeNotFound, "document not found")

	// ErrOwnerUnreachable means the document's recipient has no verified
	// email to deliver a code to.
	ErrOwnerUnreachable = dErrors.New(dErrors.CodeInvariantViolation, "document owner has no verified email address")

	// ErrContentUnavailable means the owner photo could not be fetched.
	ErrContentUnavailable = dErrors.New(dErrors.CodeUnavailable, "content store unavailable")
)
