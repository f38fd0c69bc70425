package handler

import (
	"time"

	"sigil/internal/auth/models"
	"sigil/pkg/domain"
)

// AccountResponse is the account summary returned by registration and by
// the verification confirm endpoints.
type AccountResponse struct {
	Address       string    `json:"address"`
	Email         string    `json:"email,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	Roles         []string  `json:"roles"`
	PhotoHash     string    `json:"photoHash,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FromAccount converts a domain account to its HTTP summary.
func FromAccount(account *models.Account) *AccountResponse {
	return &AccountResponse{
		Address:       account.Address.String(),
		Email:         account.Email,
		EmailVerified: account.EmailVerified,
		Roles:         domain.RoleNames(account.Roles),
		PhotoHash:     account.PhotoHash,
		Status:        string(account.Status),
		CreatedAt:     account.CreatedAt,
	}
}

// ChallengeResponse is the HTTP response for POST /auth/challenge.
type ChallengeResponse struct {
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FromChallenge converts a challenge result to its HTTP response.
func FromChallenge(result *models.ChallengeResult) *ChallengeResponse {
	return &ChallengeResponse{
		Nonce:     result.Nonce,
		ExpiresAt: result.ExpiresAt,
	}
}

// TokenResponse is the HTTP response for login and refresh. Refresh
// responses omit the refresh token; the original stays in force.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// FromTokenPair converts a token pair to its HTTP response.
func FromTokenPair(pair *models.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	}
}

// HistoryResponse is the HTTP response for GET /auth/history.
type HistoryResponse struct {
	LastLogin *time.Time     `json:"lastLogin,omitempty"`
	History   []HistoryEntry `json:"history"`
}

// HistoryEntry is one recorded login, newest first.
type HistoryEntry struct {
	At       time.Time `json:"at"`
	SourceIP string    `json:"sourceIp,omitempty"`
	Device   string    `json:"device,omitempty"`
}

// FromHistory converts a history result to its HTTP response.
func FromHistory(result *models.HistoryResult) *HistoryResponse {
	entries := make([]HistoryEntry, 0, len(result.Logins))
	for _, login := range result.Logins {
		entries = append(entries, HistoryEntry{
			At:       login.At,
			SourceIP: login.SourceIP,
			Device:   login.Device,
		})
	}
	return &HistoryResponse{
		LastLogin: result.LastLogin,
		History:   entries,
	}
}
