package otc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	issuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sigil_otc_issued_total",
		Help: "Total one-time codes issued",
	})
	// outcome: "accepted", "mismatch", "expired", "exhausted", "missing"
	verificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigil_otc_verifications_total",
		Help: "One-time code verification attempts by outcome",
	}, []string{"outcome"})
	sweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sigil_otc_swept_total",
		Help: "Expired one-time codes removed by background sweeps",
	})
)

func observeVerification(outcome string) {
	verificationsTotal.WithLabelValues(outcome).Inc()
}
