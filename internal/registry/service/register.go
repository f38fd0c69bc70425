package service

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"sigil/internal/audit"
	"sigil/internal/registry/models"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/platform/sentinel"
	"sigil/pkg/requestcontext"
)

// maxContentBytes caps document bodies. The handler enforces a matching
// cap on the encoded form before decoding.
const maxContentBytes = 8 << 20

// RegisterDocumentRequest registers a document against a recipient wallet.
type RegisterDocumentRequest struct {
	Title     string
	DocType   string
	Recipient string
	Content   []byte
}

// Register stores the document body, anchors the document on the ledger and
// persists the record. The order matters: a ledger failure must leave no
// local record, so persistence comes last. Content uploaded for a failed
// anchor is unreachable garbage, not an inconsistency, because the store is
// content-addressed.
func (s *Service) Register(ctx context.Context, caller domain.Address, req RegisterDocumentRequest) (*models.Document, error) {
	ctx, span := tracer.Start(ctx, "registry.register")
	defer span.End()

	recipient, err := domain.ParseAddress(req.Recipient)
	if err != nil {
		return nil, ErrInvalidRecipient
	}
	docType, err := domain.ParseDocType(strings.TrimSpace(req.DocType))
	if err != nil {
		return nil, err
	}
	if len(req.Content) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "document content is required")
	}
	if len(req.Content) > maxContentBytes {
		return nil, dErrors.New(dErrors.CodeValidation, "document content exceeds size limit")
	}

	account, err := s.accounts.FindByAddress(ctx, caller)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrCallerUnknown
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve issuer")
	}
	if !account.HasRole(domain.RoleIssuer) {
		return nil, ErrIssuerRoleRequired
	}

	now := requestcontext.Now(ctx)
	doc, err := models.NewDocument(strings.TrimSpace(req.Title), docType, caller, recipient, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("document.id", doc.ID.String()))

	hash, err := s.content.Put(ctx, req.Content)
	if err != nil {
		s.logger.WarnContext(ctx, "content upload failed",
			"document_id", doc.ID.String(),
			"error", err,
		)
		return nil, ErrContentUnavailable
	}
	doc.ContentHash = hash

	tx, err := s.ledger.AnchorDocument(ctx, doc.ID.String(), hash, caller, recipient)
	if err != nil {
		s.logger.WarnContext(ctx, "ledger anchoring failed",
			"document_id", doc.ID.String(),
			"error", err,
		)
		return nil, ErrLedgerUnavailable
	}
	doc.MarkAnchored(tx, now)

	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist document")
	}

	s.metrics.IncrementRegistered()
	s.logAudit(ctx, audit.KindDocumentRegistered, caller, doc.ID.String(), "registered", map[string]string{
		"doc_type":  docType.String(),
		"recipient": recipient.String(),
		"ledger_tx": tx,
	})
	return doc, nil
}
