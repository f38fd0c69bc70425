package handler

import (
	"encoding/base64"
	"strings"

	dErrors "sigil/pkg/domain-errors"
)

// maxEncodedContent caps the base64 payload on the wire. The service
// enforces the 8 MiB limit on the decoded bytes; this bound only keeps
// absurd bodies from being decoded at all.
const maxEncodedContent = 12 << 20

// RegisterDocumentRequest is the HTTP request body for POST /documents.
type RegisterDocumentRequest struct {
	Title     string `json:"title"`
	DocType   string `json:"docType"`
	Recipient string `json:"recipient"`
	Content   string `json:"content"`

	decoded []byte
}

// Validate validates the request and decodes the content payload.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterDocumentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	if len(r.Title) > 256 {
		return dErrors.New(dErrors.CodeValidation, "title must be at most 256 characters")
	}
	if len(r.DocType) > 32 {
		return dErrors.New(dErrors.CodeValidation, "docType must be at most 32 characters")
	}
	if len(r.Recipient) > 64 {
		return dErrors.New(dErrors.CodeValidation, "recipient must be at most 64 characters")
	}
	if len(r.Content) > maxEncodedContent {
		return dErrors.New(dErrors.CodeValidation, "content exceeds the size limit")
	}

	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	r.DocType = strings.TrimSpace(r.DocType)
	if r.DocType == "" {
		return dErrors.New(dErrors.CodeValidation, "docType is required")
	}
	r.Recipient = strings.TrimSpace(r.Recipient)
	if r.Recipient == "" {
		return dErrors.New(dErrors.CodeValidation, "recipient is required")
	}

	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return dErrors.New(dErrors.CodeValidation, "content is required")
	}
	decoded, err := base64.StdEncoding.DecodeString(r.Content)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "content must be base64 encoded")
	}
	if len(decoded) == 0 {
		return dErrors.New(dErrors.CodeValidation, "content is required")
	}
	r.decoded = decoded

	return nil
}

// DocumentBytes returns the decoded content after a successful Validate.
func (r *RegisterDocumentRequest) DocumentBytes() []byte {
	return r.decoded
}
