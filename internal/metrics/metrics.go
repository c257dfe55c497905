package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccountsProvisioned counts wallet provisioning requests by result
	AccountsProvisioned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_accounts_provisioned_total",
			Help: "Total number of wallet provisioning requests",
		},
		[]string{"result"},
	)

	// SecretDeliveries counts one-time secret deliveries by status
	SecretDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_secret_deliveries_total",
			Help: "Total number of one-time secret credential deliveries",
		},
		[]string{"status"},
	)

	// Verdicts counts unlock evaluations by verdict
	Verdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_unlock_verdicts_total",
			Help: "Total number of unlock verdicts issued",
		},
		[]string{"verdict"},
	)

	// OracleRequests counts balance oracle reads by status
	OracleRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_oracle_requests_total",
			Help: "Total number of balance oracle reads",
		},
		[]string{"status"},
	)

	// OracleRequestDuration tracks balance oracle read latency
	OracleRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wallet_oracle_request_duration_seconds",
			Help:    "Balance oracle read duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ActionsHandled counts gated action requests by action and outcome
	ActionsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_actions_handled_total",
			Help: "Total number of action requests handled by the gate",
		},
		[]string{"action", "outcome"},
	)

	// ReconcileRuns counts background balance reconciliation sweeps by status
	ReconcileRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_reconcile_runs_total",
			Help: "Total number of background balance reconciliation sweeps",
		},
		[]string{"status"},
	)
)
