package models

import (
	"time"

	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

// AccountStatus is the administrative state of a wallet account.
type AccountStatus string

const (
	StatusActive      AccountStatus = "active"
	StatusSuspended   AccountStatus = "suspended"
	StatusBlacklisted AccountStatus = "blacklisted"
)

// IsValid reports whether the status is one of the known values.
func (s AccountStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusBlacklisted:
		return true
	}
	return false
}

// CanAuthenticate reports whether accounts in this status may obtain or use
// session tokens.
func (s AccountStatus) CanAuthenticate() bool {
	return s == StatusActive
}

// LoginEntry is one successful login recorded in an account's history.
type LoginEntry struct {
	At       time.Time `json:"at"`
	SourceIP string    `json:"source_ip,omitempty"`
	Device   string    `json:"device,omitempty"`
}

// AuthState holds the challenge and lockout bookkeeping for one account.
// A nil Nonce means no challenge is outstanding.
type AuthState struct {
	Nonce          *string
	NonceIssuedAt  *time.Time
	FailedAttempts int
	LockedUntil    *time.Time
}

// SecurityState tracks successful logins for the account.
type SecurityState struct {
	LastLogin    *time.Time
	LoginHistory []LoginEntry
}

// Account is the aggregate root for a wallet identity.
//
// Invariants:
//   - Address is non-zero and canonical (lowercase hex)
//   - Status is one of active, suspended, blacklisted
//   - At most one challenge nonce is outstanding at a time
//   - LoginHistory holds the most recent entries, newest last, bounded by
//     the configured limit
type Account struct {
	Address       domain.Address `json:"address"`
	Email         string         `json:"email,omitempty"`
	EmailVerified bool           `json:"email_verified"`
	Roles         []domain.Role  `json:"roles"`
	PhotoHash     string         `json:"photo_hash,omitempty"`
	Status        AccountStatus  `json:"status"`
	Auth          AuthState      `json:"-"`
	Security      SecurityState  `json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewAccount constructs an active account for the given wallet address.
func NewAccount(address domain.Address, now time.Time) (*Account, error) {
	if address.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account address cannot be empty")
	}
	return &Account{
		Address:   address,
		Roles:     []domain.Role{domain.RoleHolder},
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HasRole reports whether the account carries the given role.
func (a *Account) HasRole(role domain.Role) bool {
	return domain.HasRole(a.Roles, role)
}

// IsLocked reports whether a lockout window is still in effect at now.
func (a *Account) IsLocked(now time.Time) bool {
	return a.Auth.LockedUntil != nil && now.Before(*a.Auth.LockedUntil)
}

// ClearLockIfExpired lazily removes an elapsed lockout. Returns true when a
// lock was cleared so callers can audit the transition.
func (a *Account) ClearLockIfExpired(now time.Time) bool {
	if a.Auth.LockedUntil == nil || now.Before(*a.Auth.LockedUntil) {
		return false
	}
	a.Auth.LockedUntil = nil
	a.Auth.FailedAttempts = 0
	return true
}

// ApplyChallenge replaces any outstanding nonce with the new one. Issuing a
// fresh challenge always invalidates the previous one.
func (a *Account) ApplyChallenge(nonce string, now time.Time) {
	a.Auth.Nonce = &nonce
	issuedAt := now
	a.Auth.NonceIssuedAt = &issuedAt
	a.UpdatedAt = now
}

// TakeNonce returns the outstanding nonce and clears it so it can never be
// presented twice. Must be called with the store's write lock held.
func (a *Account) TakeNonce() (string, bool) {
	if a.Auth.Nonce == nil {
		return "", false
	}
	nonce := *a.Auth.Nonce
	a.Auth.Nonce = nil
	a.Auth.NonceIssuedAt = nil
	return nonce, true
}

// ApplyFailedAttempt increments the failure counter and starts a lockout
// window once the threshold is reached. Returns true when this attempt
// triggered the lock.
func (a *Account) ApplyFailedAttempt(now time.Time, threshold int, lockFor time.Duration) bool {
	a.Auth.FailedAttempts++
	a.UpdatedAt = now
	if a.Auth.FailedAttempts < threshold {
		return false
	}
	until := now.Add(lockFor)
	a.Auth.LockedUntil = &until
	return true
}

// ProfileUpdate is a partial update to an account's profile. Nil fields
// are left untouched.
type ProfileUpdate struct {
	Email         *string
	EmailVerified *bool
	PhotoHash     *string
}

// ApplyProfile applies the non-nil fields of a partial update.
func (a *Account) ApplyProfile(update ProfileUpdate, now time.Time) {
	if update.Email != nil {
		a.Email = *update.Email
	}
	if update.EmailVerified != nil {
		a.EmailVerified = *update.EmailVerified
	}
	if update.PhotoHash != nil {
		a.PhotoHash = *update.PhotoHash
	}
	a.UpdatedAt = now
}

// ApplyLogin records a successful authentication: failure state is reset
// and the login lands in the bounded history, newest last.
func (a *Account) ApplyLogin(entry LoginEntry, historyLimit int, now time.Time) {
	a.Auth.FailedAttempts = 0
	a.Auth.LockedUntil = nil
	last := entry.At
	a.Security.LastLogin = &last
	a.Security.LoginHistory = append(a.Security.LoginHistory, entry)
	if historyLimit > 0 && len(a.Security.LoginHistory) > historyLimit {
		a.Security.LoginHistory = a.Security.LoginHistory[len(a.Security.LoginHistory)-historyLimit:]
	}
	a.UpdatedAt = now
}

// Clone returns a deep copy so in-memory stores never leak internal state.
func (a *Account) Clone() *Account {
	cp := *a
	if a.Auth.Nonce != nil {
		n := *a.Auth.Nonce
		cp.Auth.Nonce = &n
	}
	if a.Auth.NonceIssuedAt != nil {
		t := *a.Auth.NonceIssuedAt
		cp.Auth.NonceIssuedAt = &t
	}
	if a.Auth.LockedUntil != nil {
		t := *a.Auth.LockedUntil
		cp.Auth.LockedUntil = &t
	}
	if a.Security.LastLogin != nil {
		t := *a.Security.LastLogin
		cp.Security.LastLogin = &t
	}
	cp.Security.LoginHistory = append([]LoginEntry(nil), a.Security.LoginHistory...)
	cp.Roles = append([]domain.Role(nil), a.Roles...)
	return &cp
}
