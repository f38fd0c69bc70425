package verification

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"sigil/internal/audit"
	authmodels "sigil/internal/auth/models"
	regmodels "sigil/internal/registry/models"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	pkgemail "sigil/pkg/email"
	"sigil/pkg/platform/sentinel"
	"sigil/pkg/requestcontext"
)

// DocumentProofStarted tells the requester where the code went without
// revealing the owner's address.
type DocumentProofStarted struct {
	Delivery    string
	MaskedEmail string
}

// Disclosure is what a correct code buys: the document record, the
// owner's identity, and their photo when one is on file.
type Disclosure struct {
	Document *regmodels.Document
	Owner    *authmodels.Account
	Photo    []byte
}

// StartDocumentProof issues a code keyed by the document id and mails it
// to the document owner's verified address. The requester never learns
// that address; only the owner can relay the code onward.
func (s *Service) StartDocumentProof(ctx context.Context, id domain.DocumentID) (*DocumentProofStarted, error) {
	ctx, span := tracer.Start(ctx, "verification.start_document_proof")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", id.String()))

	doc, owner, err := s.provableDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	code, err := s.codes.Issue(ctx, id.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue code")
	}

	outcome, err := s.sender.Send(ctx, s.codeMessage(owner.Email,
		"Your document verification code",
		fmt.Sprintf("Someone asked to verify %q. The code is %s; share it only if you want them to see your details.", doc.Title, code),
	))
	if err != nil {
		s.logger.WarnContext(ctx, "code delivery failed",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", id.String(),
			"error", err,
		)
		return nil, ErrDeliveryFailed
	}

	delivery := deliveryLabel(outcome)
	s.logAudit(ctx, audit.KindCodeIssued, doc.Recipient, id.String(), "issued", map[string]string{
		"purpose":  "document_proof",
		"delivery": delivery,
	})
	return &DocumentProofStarted{
		Delivery:    delivery,
		MaskedEmail: pkgemail.MaskAddress(owner.Email),
	}, nil
}

// ConfirmDocumentProof verifies the code and returns the disclosure. A
// content-store failure while fetching the photo is an outage, never an
// authentication verdict.
func (s *Service) ConfirmDocumentProof(ctx context.Context, id domain.DocumentID, code string) (*Disclosure, error) {
	ctx, span := tracer.Start(ctx, "verification.confirm_document_proof")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", id.String()))

	doc, owner, err := s.provableDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.codes.Verify(ctx, id.String(), code); err != nil {
		return nil, s.verifyFailure(ctx, err, doc.Recipient, id.String(), "document_proof")
	}
	s.logAudit(ctx, audit.KindCodeAccepted, doc.Recipient, id.String(), "accepted", map[string]string{
		"purpose": "document_proof",
	})

	var photo []byte
	if owner.PhotoHash != "" {
		photo, err = s.content.Fetch(ctx, owner.PhotoHash)
		if err != nil {
			s.logger.WarnContext(ctx, "owner photo fetch failed",
				"request_id", requestcontext.RequestID(ctx),
				"document_id", id.String(),
				"error", err,
			)
			return nil, ErrContentUnavailable
		}
	}

	s.logAudit(ctx, audit.KindDocumentConfirmed, doc.Recipient, id.String(), "confirmed", nil)
	return &Disclosure{
		Document: doc,
		Owner:    owner,
		Photo:    photo,
	}, nil
}

// provableDocument resolves the document and its owner, and checks the
// owner can actually receive a code.
func (s *Service) provableDocument(ctx context.Context, id domain.DocumentID) (*regmodels.Document, *authmodels.Account, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load document")
	}

	owner, err := s.accounts.FindByAddress(ctx, doc.Recipient)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, ErrOwnerUnreachable
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load document owner")
	}
	if owner.Email == "" || !owner.EmailVerified {
		return nil, nil, ErrOwnerUnreachable
	}
	return doc, owner, nil
}
