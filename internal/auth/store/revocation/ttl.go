package revocation

import (
	"fmt"
	"time"

	"sigil/pkg/platform/sentinel"
)

// validateTTL guards every Revoke implementation the same way. A zero or
// negative TTL would write an entry already past its expiry, which reads
// back as not revoked.
func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}
