package handler

import (
	"strings"

	dErrors "sigil/pkg/domain-errors"
)

// RegisterAccountRequest is the HTTP request body for POST /accounts.
type RegisterAccountRequest struct {
	Address   string   `json:"address"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	PhotoHash string   `json:"photoHash,omitempty"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterAccountRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	if len(r.Address) > 64 {
		return dErrors.New(dErrors.CodeValidation, "address must be at most 64 characters")
	}
	if len(r.Email) > 254 {
		return dErrors.New(dErrors.CodeValidation, "email must be at most 254 characters")
	}
	if len(r.Roles) > 8 {
		return dErrors.New(dErrors.CodeValidation, "too many roles")
	}
	if len(r.PhotoHash) > 128 {
		return dErrors.New(dErrors.CodeValidation, "photoHash must be at most 128 characters")
	}

	r.Address = strings.TrimSpace(r.Address)
	if r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}

	r.Email = strings.TrimSpace(r.Email)
	if r.Email != "" && !strings.Contains(r.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}

	return nil
}

// ChallengeRequest is the HTTP request body for POST /auth/challenge.
type ChallengeRequest struct {
	Address string `json:"address"`
}

func (r *ChallengeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Address) > 64 {
		return dErrors.New(dErrors.CodeValidation, "address must be at most 64 characters")
	}
	r.Address = strings.TrimSpace(r.Address)
	if r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	return nil
}

// LoginRequest is the HTTP request body for POST /auth/login.
type LoginRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Nonce     string `json:"nonce"`
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast). A 65-byte secp256k1 signature is 132
	// hex characters with the 0x prefix.
	if len(r.Address) > 64 {
		return dErrors.New(dErrors.CodeValidation, "address must be at most 64 characters")
	}
	if len(r.Signature) > 256 {
		return dErrors.New(dErrors.CodeValidation, "signature must be at most 256 characters")
	}
	if len(r.Nonce) > 512 {
		return dErrors.New(dErrors.CodeValidation, "nonce must be at most 512 characters")
	}

	r.Address = strings.TrimSpace(r.Address)
	if r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	r.Signature = strings.TrimSpace(r.Signature)
	if r.Signature == "" {
		return dErrors.New(dErrors.CodeValidation, "signature is required")
	}
	r.Nonce = strings.TrimSpace(r.Nonce)
	if r.Nonce == "" {
		return dErrors.New(dErrors.CodeValidation, "nonce is required")
	}

	return nil
}

// RefreshRequest is the HTTP request body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *RefreshRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.RefreshToken) > 4096 {
		return dErrors.New(dErrors.CodeValidation, "refreshToken must be at most 4096 characters")
	}
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	if r.RefreshToken == "" {
		return dErrors.New(dErrors.CodeValidation, "refreshToken is required")
	}
	return nil
}

// LogoutRequest is the HTTP request body for POST /auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *LogoutRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.RefreshToken) > 4096 {
		return dErrors.New(dErrors.CodeValidation, "refreshToken must be at most 4096 characters")
	}
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	if r.RefreshToken == "" {
		return dErrors.New(dErrors.CodeValidation, "refreshToken is required")
	}
	return nil
}
