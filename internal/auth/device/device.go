// Package device derives display labels and stable fingerprints from
// browser user-agent strings. Labels go into login history; fingerprints
// feed drift detection when tokens are refreshed.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mssola/useragent"
)

// Service computes device fingerprints. Fingerprinting can be switched
// off wholesale for deployments that must not profile client devices.
type Service struct {
	enabled bool
}

func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ParseUserAgent renders a user-agent string as a short human-readable
// device label for login history, like "Chrome on Windows 10".
func ParseUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)
	name, _ := ua.Browser()
	if name == "" {
		name = "Unknown Browser"
	}
	os := ua.OSInfo().FullName
	if os == "" {
		os = "Unknown OS"
	}
	return strings.Join(strings.Fields(name+" on "+os), " ")
}

// ComputeFingerprint hashes the coarse shape of the client device:
// browser name, major version, OS name and platform. Minor browser
// updates keep the fingerprint stable; a major-version jump or an OS
// change rolls it over. Returns "" when fingerprinting is disabled.
func (s *Service) ComputeFingerprint(raw string) string {
	if !s.enabled {
		return ""
	}

	ua := useragent.New(raw)
	name, version := ua.Browser()
	major, _, _ := strings.Cut(version, ".")
	seed := strings.ToLower(strings.Join([]string{name, major, ua.OSInfo().Name, ua.Platform()}, "/"))

	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// CompareFingerprints reports whether current matches stored and whether
// a mismatch counts as drift. An absent fingerprint on either side is
// not drift; there is nothing to compare against.
func (s *Service) CompareFingerprints(current, stored string) (matched bool, drift bool) {
	if current == "" || stored == "" {
		return false, false
	}
	if current == stored {
		return true, false
	}
	return false, true
}
