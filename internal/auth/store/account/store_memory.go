// Package account persists wallet identity records. The auth-state
// operations (challenge set/consume, failure bookkeeping) are each one
// atomic step against the backing store; services never read-modify-write
// auth state across an I/O boundary.
package account

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sigil/internal/auth/models"
	"sigil/pkg/domain"
	"sigil/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this pattern:
//   - sentinel.ErrNotFound when no account exists for the address
//   - sentinel.ErrConflict when Create hits an already-registered address
//   - sentinel.ErrAlreadyUsed when ConsumeChallenge loses the compare-and-clear
//   - nil for success; wrapped infrastructure errors otherwise
//
// Time is always injected; stores never call time.Now.

// InMemoryAccountStore keeps accounts in a mutex-guarded map for tests and
// single-instance dev deployments.
type InMemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[domain.Address]*models.Account
}

// New constructs an empty in-memory account store.
func New() *InMemoryAccountStore {
	return &InMemoryAccountStore{accounts: make(map[domain.Address]*models.Account)}
}

func (s *InMemoryAccountStore) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.Address]; exists {
		return fmt.Errorf("account %s already registered: %w", account.Address, sentinel.ErrConflict)
	}
	s.accounts[account.Address] = account.Clone()
	return nil
}

func (s *InMemoryAccountStore) FindByAddress(_ context.Context, address domain.Address) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[address]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	return account.Clone(), nil
}

// SetChallenge stores a fresh nonce, replacing any outstanding one. A
// stale lock is cleared here because issuing a challenge touches auth
// state, which is where lazy lock expiry happens.
func (s *InMemoryAccountStore) SetChallenge(_ context.Context, address domain.Address, nonce string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[address]
	if !ok {
		return fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	account.ClearLockIfExpired(now)
	account.ApplyChallenge(nonce, now)
	return nil
}

// ConsumeChallenge atomically compares the outstanding nonce against
// expected, clears it, and records the successful login. Losing the
// compare (nonce consumed, replaced, or never issued) returns
// ErrAlreadyUsed and changes nothing.
func (s *InMemoryAccountStore) ConsumeChallenge(_ context.Context, address domain.Address, expected string, entry models.LoginEntry, historyLimit int, now time.Time) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[address]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	if account.Auth.Nonce == nil || *account.Auth.Nonce != expected {
		return nil, fmt.Errorf("challenge already consumed: %w", sentinel.ErrAlreadyUsed)
	}
	account.TakeNonce()
	account.ApplyLogin(entry, historyLimit, now)
	return account.Clone(), nil
}

// RecordFailure counts a failed verification attempt and reports the new
// count plus whether this attempt started a lockout window. An elapsed
// lock is cleared first so the counter restarts at one.
func (s *InMemoryAccountStore) RecordFailure(_ context.Context, address domain.Address, threshold int, lockFor time.Duration, now time.Time) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[address]
	if !ok {
		return 0, false, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	account.ClearLockIfExpired(now)
	locked := account.ApplyFailedAttempt(now, threshold, lockFor)
	return account.Auth.FailedAttempts, locked, nil
}

func (s *InMemoryAccountStore) UpdateProfile(_ context.Context, address domain.Address, update models.ProfileUpdate, now time.Time) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[address]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	account.ApplyProfile(update, now)
	return account.Clone(), nil
}
