package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AuthGate counts access gate decisions by outcome
	// (admitted, missing, expired, invalid, revoked).
	AuthGate = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dockshield", Name: "auth_gate_total", Help: "Access gate decisions by outcome."},
		[]string{"outcome"},
	)
	// StoreQueries counts report store lookups by operation and result
	// (ok, not_found, error, unavailable).
	StoreQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dockshield", Name: "store_queries_total", Help: "Report store lookups by operation and result."},
		[]string{"operation", "result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(AuthGate)
	reg.MustRegister(StoreQueries)
}
