// Package metrics provides Prometheus instrumentation for the settlement
// ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchesSubmitted counts batches accepted by the ledger.
	BatchesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stl_batches_submitted_total",
		Help: "Total number of settlement batches accepted",
	})

	// TradesSettled counts trade identifiers consumed by verification.
	TradesSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stl_trades_settled_total",
		Help: "Total number of trades consumed by settlement",
	})

	// PayoutsExecuted counts executed payout requests.
	PayoutsExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stl_payouts_executed_total",
		Help: "Total number of executed payouts",
	})

	// PayoutAmount tracks the cumulative trader share paid out.
	PayoutAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stl_payout_amount_total",
		Help: "Cumulative trader share paid out, smallest unit",
	})

	// ProofFailures counts Merkle proof verification failures.
	ProofFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stl_proof_failures_total",
		Help: "Merkle proofs that failed to reconstruct a batch root",
	})

	// ScalingsAuthorized counts tier upgrades granted.
	ScalingsAuthorized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stl_scalings_authorized_total",
		Help: "Tier upgrades authorized",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stl_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stl_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)
