// Package audit records security-relevant actions as structured events.
// Domain services emit events through a Publisher; sinks decide where
// they land (an in-memory ring for tests and single-node runs, Kafka in
// production). Emission is best-effort: a failed append never fails the
// business operation that produced it.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies audit events by their primary purpose. This
// enables different retention policies and downstream routing.
type Category string

const (
	// CategoryCompliance covers events with legal or regulatory
	// significance. These require long retention.
	CategoryCompliance Category = "compliance"

	// CategorySecurity covers events relevant to security monitoring
	// and forensics. These feed into SIEM systems and alerting.
	CategorySecurity Category = "security"

	// CategoryOperations covers routine activity useful for debugging.
	// These can be sampled or aggregated with shorter retention.
	CategoryOperations Category = "operations"
)

// Kind names the action an event records.
type Kind string

const (
	// Account events
	KindAccountRegistered Kind = "account.registered"

	// Authentication events
	KindChallengeIssued Kind = "auth.challenge_issued"
	KindLoginSucceeded  Kind = "auth.login_succeeded"
	KindLoginFailed     Kind = "auth.login_failed"
	KindAccountLocked   Kind = "auth.account_locked"
	KindTokenRefreshed  Kind = "auth.token_refreshed"
	KindLoggedOut       Kind = "auth.logged_out"

	// One-time code events
	KindCodeIssued    Kind = "otc.issued"
	KindCodeAccepted  Kind = "otc.accepted"
	KindCodeRejected  Kind = "otc.rejected"
	KindCodeExhausted Kind = "otc.exhausted"

	// Verification events
	KindEmailConfirmed    Kind = "verification.email_confirmed"
	KindDocumentConfirmed Kind = "verification.document_confirmed"

	// Document registry events
	KindDocumentRegistered Kind = "document.registered"
	KindAccessDenied       Kind = "document.access_denied"
)

// kindCategories maps each kind to its category.
// Compliance: proofs and registrations, long retention required.
// Security: failures, lockouts and denials, SIEM integration.
// Operations: routine activity, can be sampled.
var kindCategories = map[Kind]Category{
	KindAccountRegistered:  CategoryCompliance,
	KindEmailConfirmed:     CategoryCompliance,
	KindDocumentConfirmed:  CategoryCompliance,
	KindDocumentRegistered: CategoryCompliance,

	KindLoginFailed:   CategorySecurity,
	KindAccountLocked: CategorySecurity,
	KindCodeRejected:  CategorySecurity,
	KindCodeExhausted: CategorySecurity,
	KindAccessDenied:  CategorySecurity,

	KindChallengeIssued: CategoryOperations,
	KindLoginSucceeded:  CategoryOperations,
	KindTokenRefreshed:  CategoryOperations,
	KindLoggedOut:       CategoryOperations,
	KindCodeIssued:      CategoryOperations,
	KindCodeAccepted:    CategoryOperations,
}

// Category returns the category for this kind.
// Unknown kinds default to CategoryOperations.
func (k Kind) Category() Category {
	if cat, ok := kindCategories[k]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture a key action. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	ID      uuid.UUID         `json:"id"`
	Kind    Kind              `json:"kind"`
	Actor   string            `json:"actor,omitempty"`
	Subject string            `json:"subject"`
	Outcome string            `json:"outcome,omitempty"`
	Detail  map[string]string `json:"detail,omitempty"`
	At      time.Time         `json:"at"`
}
