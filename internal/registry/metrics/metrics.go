package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module.
type Metrics struct {
	// Documents registered and anchored
	DocumentsRegistered prometheus.Counter

	// Document access checks by outcome
	AccessChecks *prometheus.CounterVec
}

// New creates a new Metrics instance with all registry module metrics registered.
func New() *Metrics {
	return &Metrics{
		DocumentsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sigil_registry_documents_registered_total",
			Help: "Total documents registered and anchored",
		}),

		AccessChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigil_registry_access_checks_total",
			Help: "Total document access checks by outcome",
		}, []string{"outcome"}), // outcome: "granted", "denied", "error"
	}
}

// IncrementRegistered records one registered document.
func (m *Metrics) IncrementRegistered() {
	if m != nil {
		m.DocumentsRegistered.Inc()
	}
}

// IncrementAccessCheck records one access check with its outcome.
func (m *Metrics) IncrementAccessCheck(outcome string) {
	if m != nil {
		m.AccessChecks.WithLabelValues(outcome).Inc()
	}
}
