package models

import "time"

// ChallengeResult carries a freshly issued login challenge.
type ChallengeResult struct {
	Nonce     string    `json:"nonce"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenPair is the result of a successful login or refresh. Refresh
// responses carry no refresh token; the original stays in force.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// HistoryResult lists an account's recent successful logins, newest first.
type HistoryResult struct {
	LastLogin *time.Time   `json:"last_login,omitempty"`
	Logins    []LoginEntry `json:"logins"`
}
