// Package nonce produces and validates the opaque challenge strings used
// by wallet login. A nonce embeds the address and issue time so freshness
// can be checked without a separate expiry index; the random entropy
// defeats guessing.
package nonce

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sigil/pkg/domain"
)

// entropyBytes is the amount of random material embedded per nonce.
const entropyBytes = 32

// Issue builds a challenge string of the form address:issuedAt:entropy.
// The issue time is injected so request-scoped clocks work in tests.
func Issue(address domain.Address, now time.Time) (string, error) {
	buf := make([]byte, entropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate nonce entropy: %w", err)
	}
	return fmt.Sprintf("%s:%d:%s", address, now.Unix(), hex.EncodeToString(buf)), nil
}

// Parse splits a nonce into its embedded address and issue time. ok is
// false for anything that does not look like an issued nonce: wrong field
// count, unparseable address, non-numeric timestamp, or undersized entropy.
func Parse(raw string) (domain.Address, time.Time, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return "", time.Time{}, false
	}
	address, err := domain.ParseAddress(parts[0])
	if err != nil {
		return "", time.Time{}, false
	}
	secs, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || secs <= 0 {
		return "", time.Time{}, false
	}
	entropy, err := hex.DecodeString(parts[2])
	if err != nil || len(entropy) < 16 {
		return "", time.Time{}, false
	}
	return address, time.Unix(secs, 0).UTC(), true
}

// IsFresh reports whether the nonce was issued within maxAge of now.
// Malformed nonces are never fresh; this function does not fail.
func IsFresh(raw string, now time.Time, maxAge time.Duration) bool {
	_, issuedAt, ok := Parse(raw)
	if !ok {
		return false
	}
	return now.Sub(issuedAt) <= maxAge
}
