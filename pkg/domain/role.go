package domain

import (
	platformstrings "sigil/pkg/platform/strings"
)

// Role names a capability granted to an account. Roles are consumed by the
// authorization checks, never mutated by the auth core.
type Role string

const (
	// RoleIssuer may register documents against recipient wallets.
	RoleIssuer Role = "issuer"
	// RoleHolder is the default role for self-registered accounts.
	RoleHolder Role = "holder"
	// RoleAdmin may manage accounts and inspect audit trails.
	RoleAdmin Role = "admin"
)

// HasRole reports whether the role set contains r.
func HasRole(roles []Role, r Role) bool {
	for _, have := range roles {
		if have == r {
			return true
		}
	}
	return false
}

// ParseRoles lowers, dedupes and filters a raw role list to known roles,
// dropping unknown entries rather than failing registration on a stray value.
func ParseRoles(raw []string) []Role {
	cleaned := platformstrings.DedupeAndTrimLower(raw)
	out := make([]Role, 0, len(cleaned))
	for _, s := range cleaned {
		role := Role(s)
		switch role {
		case RoleIssuer, RoleHolder, RoleAdmin:
			out = append(out, role)
		}
	}
	return out
}

// RoleNames renders a role set as plain strings for logs and responses.
func RoleNames(roles []Role) []string {
	out := make([]string, len(roles))
	for i, role := range roles {
		out[i] = string(role)
	}
	return out
}
