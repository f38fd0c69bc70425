package handler

import (
	"strings"

	dErrors "sigil/pkg/domain-errors"
)

// ConfirmRequest is the HTTP request body for the proof confirm
// endpoints.
type ConfirmRequest struct {
	Code string `json:"code"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ConfirmRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Code) > 16 {
		return dErrors.New(dErrors.CodeValidation, "code must be at most 16 characters")
	}
	r.Code = strings.TrimSpace(r.Code)
	if r.Code == "" {
		return dErrors.New(dErrors.CodeValidation, "code is required")
	}
	return nil
}
