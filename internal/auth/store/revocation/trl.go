// Package revocation tracks revoked refresh-token IDs (a token revocation
// list, TRL). An entry only needs to outlive the token it blocks, so every
// implementation stores a JTI with the token's remaining TTL and treats
// expired entries as not revoked.
package revocation

import "time"

// Clock supplies the current time. Injected so expiry behavior is
// deterministic in tests.
type Clock func() time.Time
