// Package otc issues and verifies short-lived numeric one-time codes.
// A code proves control of an out-of-band channel: an email inbox during
// signup, a document recipient's inbox before owner details are
// disclosed. Entries are keyed by an arbitrary identifier, kept hashed,
// and die on acceptance, attempt exhaustion or expiry.
package otc

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"
)

const codeLength = 6

// Verification failure reasons. Every path except ErrMismatch also
// removes the entry.
var (
	// ErrNotFound means no code is outstanding for the key. Consumed,
	// swept and never-issued keys are indistinguishable.
	ErrNotFound = errors.New("no code outstanding")
	// ErrExpired means the code outlived its TTL.
	ErrExpired = errors.New("code expired")
	// ErrExhausted means the attempt budget was spent.
	ErrExhausted = errors.New("code attempts exhausted")
	// ErrMismatch means the candidate was wrong; the entry stays for the
	// remaining attempts.
	ErrMismatch = errors.New("code mismatch")
)

// Store issues and verifies one-time codes. Issue replaces any
// outstanding entry for the key. Verify returns nil exactly once per
// issued code; every other outcome is one of the errors above.
// SweepExpired bounds memory growth from abandoned codes.
type Store interface {
	Issue(ctx context.Context, key string) (string, error)
	Verify(ctx context.Context, key, candidate string) error
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// generateCode draws n uniformly random decimal digits. Bytes at or
// above 250 are rejected so the modulo cannot bias the low digits.
func generateCode(n int) (string, error) {
	digits := make([]byte, 0, n)
	buf := make([]byte, 16)
	for len(digits) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("could not draw random digits: %w", err)
		}
		for _, b := range buf {
			if len(digits) == n {
				break
			}
			if b >= 250 {
				continue
			}
			digits = append(digits, '0'+b%10)
		}
	}
	return string(digits), nil
}
