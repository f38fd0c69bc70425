// Package models defines the document records the registry manages.
package models

import (
	"time"

	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

// DocumentStatus is the lifecycle state of a registered document.
type DocumentStatus string

const (
	// StatusPending means the document exists but its ledger anchor has not
	// been confirmed. Freshly constructed documents start here.
	StatusPending DocumentStatus = "pending"
	// StatusAnchored means the ledger transaction was submitted and the
	// record carries its hash.
	StatusAnchored DocumentStatus = "anchored"
	// StatusRevoked means the issuer withdrew the document.
	StatusRevoked DocumentStatus = "revoked"
)

// IsValid reports whether the status is one of the known values.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAnchored, StatusRevoked:
		return true
	}
	return false
}

// Document is a registered document: metadata here, body in the content
// store, anchor on the ledger.
//
// Invariants:
//   - ID is a non-nil uuid
//   - Issuer and Recipient are non-zero canonical addresses
//   - ContentHash is the keccak256 digest of the stored body
//   - Status anchored implies a non-empty LedgerTx
type Document struct {
	ID          domain.DocumentID `json:"id"`
	Title       string            `json:"title"`
	DocType     domain.DocType    `json:"doc_type"`
	ContentHash string            `json:"content_hash"`
	Issuer      domain.Address    `json:"issuer"`
	Recipient   domain.Address    `json:"recipient"`
	Status      DocumentStatus    `json:"status"`
	LedgerTx    string            `json:"ledger_tx,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewDocument constructs a pending document with a fresh id. The content
// hash is attached once the body has been stored.
func NewDocument(title string, docType domain.DocType, issuer, recipient domain.Address, now time.Time) (*Document, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "document title cannot be empty")
	}
	if !docType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unsupported document type")
	}
	if issuer.IsZero() || recipient.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "document issuer and recipient are required")
	}
	return &Document{
		ID:        domain.NewDocumentID(),
		Title:     title,
		DocType:   docType,
		Issuer:    issuer,
		Recipient: recipient,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkAnchored transitions the document to anchored with its ledger
// transaction hash.
func (d *Document) MarkAnchored(ledgerTx string, now time.Time) {
	d.Status = StatusAnchored
	d.LedgerTx = ledgerTx
	d.UpdatedAt = now
}

// Clone returns an independent copy.
func (d *Document) Clone() *Document {
	clone := *d
	return &clone
}
