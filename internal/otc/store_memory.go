package otc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sigil/internal/platform/config"
)

type memoryEntry struct {
	hash     []byte
	issuedAt time.Time
	attempts int
}

// MemoryStore keeps codes in a mutex-owned map. Fine for a single
// instance; multi-instance deployments need RedisStore so every instance
// sees the same entries.
type MemoryStore struct {
	mu          sync.Mutex
	entries     map[string]*memoryEntry
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

var _ Store = (*MemoryStore)(nil)

type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the time source for deterministic tests.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore constructs an in-memory code store. Zero config values
// fall back to a 5 minute TTL and 3 attempts.
func NewMemoryStore(cfg config.OTCConfig, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries:     make(map[string]*memoryEntry),
		ttl:         cfg.TTL,
		maxAttempts: cfg.MaxAttempts,
		now:         time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = 5 * time.Minute
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = 3
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a fresh code for key, replacing any outstanding entry.
// Only the bcrypt hash is retained.
func (s *MemoryStore) Issue(_ context.Context, key string) (string, error) {
	code, err := generateCode(codeLength)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("could not hash code: %w", err)
	}

	s.mu.Lock()
	s.entries[key] = &memoryEntry{hash: hash, issuedAt: s.now()}
	s.mu.Unlock()

	issuedTotal.Inc()
	return code, nil
}

// Verify burns one attempt against the entry for key. The attempt bump
// and the comparison are a single critical section, so concurrent
// attempts cannot lose counts and a code is accepted at most once.
func (s *MemoryStore) Verify(_ context.Context, key, candidate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		observeVerification("missing")
		return ErrNotFound
	}
	if s.now().Sub(entry.issuedAt) > s.ttl {
		delete(s.entries, key)
		observeVerification("expired")
		return ErrExpired
	}
	if entry.attempts >= s.maxAttempts {
		delete(s.entries, key)
		observeVerification("exhausted")
		return ErrExhausted
	}

	entry.attempts++
	if bcrypt.CompareHashAndPassword(entry.hash, []byte(candidate)) != nil {
		observeVerification("mismatch")
		return ErrMismatch
	}

	delete(s.entries, key)
	observeVerification("accepted")
	return nil
}

// SweepExpired removes every entry older than the TTL at now.
func (s *MemoryStore) SweepExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if now.Sub(entry.issuedAt) > s.ttl {
			delete(s.entries, key)
			removed++
		}
	}
	if removed > 0 {
		sweptTotal.Add(float64(removed))
	}
	return removed, nil
}
