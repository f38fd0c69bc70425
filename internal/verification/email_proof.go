package verification

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"sigil/internal/audit"
	authmodels "sigil/internal/auth/models"
	"sigil/internal/email"
	"sigil/internal/otc"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	pkgemail "sigil/pkg/email"
	"sigil/pkg/platform/sentinel"
	"sigil/pkg/requestcontext"
)

// EmailProofStarted reports what the mail transport did with the code.
type EmailProofStarted struct {
	Delivery string
}

// StartEmailProof issues a code keyed by the account's email address and
// mails it there. Proving the inbox is what flips EmailVerified, so the
// code must travel over the address being proven and nothing else.
func (s *Service) StartEmailProof(ctx context.Context, address domain.Address) (*EmailProofStarted, error) {
	ctx, span := tracer.Start(ctx, "verification.start_email_proof")
	defer span.End()
	span.SetAttributes(attribute.String("account.address", address.String()))

	account, err := s.provableAccount(ctx, address)
	if err != nil {
		return nil, err
	}

	code, err := s.codes.Issue(ctx, account.Email)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue code")
	}

	outcome, err := s.sender.Send(ctx, s.codeMessage(account.Email,
		"Your email verification code",
		fmt.Sprintf("Your email verification code is %s.", code),
	))
	if err != nil {
		s.logger.WarnContext(ctx, "code delivery failed",
			"request_id", requestcontext.RequestID(ctx),
			"address", address.String(),
			"error", err,
		)
		return nil, ErrDeliveryFailed
	}

	delivery := deliveryLabel(outcome)
	s.logAudit(ctx, audit.KindCodeIssued, address, address.String(), "issued", map[string]string{
		"purpose":  "email_proof",
		"delivery": delivery,
	})
	return &EmailProofStarted{Delivery: delivery}, nil
}

// ConfirmEmailProof verifies the code and marks the account's email as
// verified. The updated account summary is returned.
func (s *Service) ConfirmEmailProof(ctx context.Context, address domain.Address, code string) (*authmodels.Account, error) {
	ctx, span := tracer.Start(ctx, "verification.confirm_email_proof")
	defer span.End()
	span.SetAttributes(attribute.String("account.address", address.String()))

	account, err := s.provableAccount(ctx, address)
	if err != nil {
		return nil, err
	}

	if err := s.codes.Verify(ctx, account.Email, code); err != nil {
		return nil, s.verifyFailure(ctx, err, address, address.String(), "email_proof")
	}
	s.logAudit(ctx, audit.KindCodeAccepted, address, address.String(), "accepted", map[string]string{
		"purpose": "email_proof",
	})

	verified := true
	updated, err := s.accounts.UpdateProfile(ctx, address, authmodels.ProfileUpdate{EmailVerified: &verified}, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not mark email verified")
	}

	s.logAudit(ctx, audit.KindEmailConfirmed, address, address.String(), "confirmed", nil)
	return updated, nil
}

// provableAccount loads the account and checks there is an unverified
// email to run the proof against.
func (s *Service) provableAccount(ctx context.Context, address domain.Address) (*authmodels.Account, error) {
	account, err := s.accounts.FindByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load account")
	}
	if account.Email == "" {
		return nil, ErrEmailMissing
	}
	if account.EmailVerified {
		return nil, ErrAlreadyVerified
	}
	return account, nil
}

// verifyFailure maps a code-store refusal onto the wire taxonomy and
// records the security event. A missing entry reads as expired so
// callers cannot probe whether a flow was ever started.
func (s *Service) verifyFailure(ctx context.Context, err error, actor domain.Address, subject, purpose string) error {
	detail := map[string]string{"purpose": purpose}
	switch {
	case errors.Is(err, otc.ErrNotFound), errors.Is(err, otc.ErrExpired):
		detail["reason"] = "expired"
		s.logAudit(ctx, audit.KindCodeRejected, actor, subject, "rejected", detail)
		return ErrCodeExpired
	case errors.Is(err, otc.ErrExhausted):
		s.logAudit(ctx, audit.KindCodeExhausted, actor, subject, "exhausted", detail)
		return ErrAttemptsExhausted
	case errors.Is(err, otc.ErrMismatch):
		detail["reason"] = "mismatch"
		s.logAudit(ctx, audit.KindCodeRejected, actor, subject, "rejected", detail)
		return ErrCodeMismatch
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "code verification failed")
	}
}

// codeMessage renders the one-time-code mail. The TTL quoted must match
// the store's; WithCodeTTL keeps the two in step.
func (s *Service) codeMessage(to, subject, line string) email.Message {
	first, _ := pkgemail.DeriveNameFromEmail(to)
	return email.Message{
		To:      to,
		Subject: subject,
		Text: fmt.Sprintf("Hi %s,\n\n%s It expires in %d minutes.\n\nIf you did not request it, ignore this mail.",
			first, line, int(s.codeTTL.Minutes())),
	}
}
