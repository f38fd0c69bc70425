package otc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"sigil/internal/platform/config"
)

const (
	codeKeyPrefix     = "otc:code:"
	attemptsKeyPrefix = "otc:attempts:"
)

// RedisStore is the shared code store for multi-instance deployments.
// Redis key expiry owns the TTL, INCR owns the attempt count, and the
// accepting verifier claims the entry with GETDEL, so a code is consumed
// at most once across instances. Expired entries simply vanish and
// surface as ErrNotFound.
type RedisStore struct {
	client      *redis.Client
	ttl         time.Duration
	maxAttempts int
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore constructs a Redis-backed code store. Zero config values
// fall back to a 5 minute TTL and 3 attempts.
func NewRedisStore(client *redis.Client, cfg config.OTCConfig) *RedisStore {
	s := &RedisStore{
		client:      client,
		ttl:         cfg.TTL,
		maxAttempts: cfg.MaxAttempts,
	}
	if s.ttl <= 0 {
		s.ttl = 5 * time.Minute
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = 3
	}
	return s
}

// Issue creates a fresh code for key, replacing any outstanding entry
// and resetting its attempt count.
func (s *RedisStore) Issue(ctx context.Context, key string) (string, error) {
	code, err := generateCode(codeLength)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("could not hash code: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, codeKeyPrefix+key, string(hash), s.ttl)
	pipe.Del(ctx, attemptsKeyPrefix+key)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("could not store code: %w", err)
	}

	issuedTotal.Inc()
	return code, nil
}

// Verify burns one attempt against the entry for key. The attempt bump
// runs as INCR before the comparison so racing attempts cannot lose
// counts.
func (s *RedisStore) Verify(ctx context.Context, key, candidate string) error {
	codeKey := codeKeyPrefix + key
	attemptsKey := attemptsKeyPrefix + key

	hash, err := s.client.Get(ctx, codeKey).Result()
	if errors.Is(err, redis.Nil) {
		observeVerification("missing")
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("could not load code: %w", err)
	}

	attempts, err := s.client.Incr(ctx, attemptsKey).Result()
	if err != nil {
		return fmt.Errorf("could not count attempt: %w", err)
	}
	if attempts == 1 {
		// Fresh counter; bound it to the entry's lifetime.
		_ = s.client.Expire(ctx, attemptsKey, s.ttl).Err()
	}
	if attempts > int64(s.maxAttempts) {
		if err := s.client.Del(ctx, codeKey, attemptsKey).Err(); err != nil {
			return fmt.Errorf("could not drop exhausted code: %w", err)
		}
		observeVerification("exhausted")
		return ErrExhausted
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) != nil {
		observeVerification("mismatch")
		return ErrMismatch
	}

	// Claim the entry; a racing verifier that loses the claim sees no
	// code left.
	if err := s.client.GetDel(ctx, codeKey).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			observeVerification("missing")
			return ErrNotFound
		}
		return fmt.Errorf("could not consume code: %w", err)
	}
	_ = s.client.Del(ctx, attemptsKey).Err()

	observeVerification("accepted")
	return nil
}

// SweepExpired is a no-op: Redis key expiry already removes dead entries.
func (s *RedisStore) SweepExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
