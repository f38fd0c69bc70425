package handler

import (
	"encoding/base64"
	"time"

	"sigil/internal/registry/models"
)

// DocumentResponse is the document summary returned by registration and
// lookup. The content itself is never inlined here.
type DocumentResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	DocType     string    `json:"docType"`
	ContentHash string    `json:"contentHash"`
	Issuer      string    `json:"issuer"`
	Recipient   string    `json:"recipient"`
	Status      string    `json:"status"`
	LedgerTx    string    `json:"ledgerTx,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FromDocument converts a document to its HTTP summary.
func FromDocument(doc *models.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:          doc.ID.String(),
		Title:       doc.Title,
		DocType:     doc.DocType.String(),
		ContentHash: doc.ContentHash,
		Issuer:      doc.Issuer.String(),
		Recipient:   doc.Recipient.String(),
		Status:      string(doc.Status),
		LedgerTx:    doc.LedgerTx,
		CreatedAt:   doc.CreatedAt,
	}
}

// ContentResponse is the HTTP response for GET /documents/{id}/content.
type ContentResponse struct {
	ContentHash string `json:"contentHash"`
	Content     string `json:"content"`
}

// FromContent pairs the verified document bytes with the hash they were
// checked against.
func FromContent(doc *models.Document, data []byte) *ContentResponse {
	return &ContentResponse{
		ContentHash: doc.ContentHash,
		Content:     base64.StdEncoding.EncodeToString(data),
	}
}
