package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the auth module.
type Metrics struct {
	// Login attempts by outcome
	Logins *prometheus.CounterVec

	// Accounts locked after repeated signature failures
	Lockouts prometheus.Counter

	// Challenges handed out
	ChallengesIssued prometheus.Counter
}

// New creates a new Metrics instance with all auth module metrics registered.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigil_auth_logins_total",
			Help: "Total login attempts by outcome",
		}, []string{"outcome"}), // outcome: "success", "failure", "locked"

		Lockouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sigil_auth_lockouts_total",
			Help: "Total accounts locked after repeated failed logins",
		}),

		ChallengesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sigil_auth_challenges_issued_total",
			Help: "Total login challenges issued",
		}),
	}
}

// IncrementLogin records one login attempt with its outcome.
func (m *Metrics) IncrementLogin(outcome string) {
	if m != nil {
		m.Logins.WithLabelValues(outcome).Inc()
	}
}

// IncrementLockout records an account entering the locked state.
func (m *Metrics) IncrementLockout() {
	if m != nil {
		m.Lockouts.Inc()
	}
}

// IncrementChallengeIssued records one issued challenge.
func (m *Metrics) IncrementChallengeIssued() {
	if m != nil {
		m.ChallengesIssued.Inc()
	}
}
