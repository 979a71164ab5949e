// Package metrics provides Prometheus metrics for Holdfast: counters and
// gauges for escrows, settlements, the treasury, and health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Escrows ────────────────────────────────────────────────────────────────

// EscrowsByStatus tracks escrow counts per kind and status.
var EscrowsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "holdfast",
	Name:      "escrows",
	Help:      "Escrow counts by kind and status.",
}, []string{"kind", "status"})

// PendingGross tracks the total gross amount locked in pending escrows.
var PendingGross = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "holdfast",
	Name:      "pending_gross_units",
	Help:      "Gross amount locked in pending escrows, in base units.",
})

// ─── Treasury ───────────────────────────────────────────────────────────────

// TreasuryBalance tracks the withdrawable treasury balance.
var TreasuryBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "holdfast",
	Name:      "treasury_balance_units",
	Help:      "Withdrawable treasury balance, in base units.",
})

// TreasuryAccrued tracks lifetime fees accrued.
var TreasuryAccrued = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "holdfast",
	Name:      "treasury_accrued_units",
	Help:      "Lifetime platform fees accrued, in base units.",
})

// TreasuryWithdrawn tracks lifetime fees withdrawn.
var TreasuryWithdrawn = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "holdfast",
	Name:      "treasury_withdrawn_units",
	Help:      "Lifetime treasury withdrawals, in base units.",
})

// ─── Vault ──────────────────────────────────────────────────────────────────

// VaultBalance tracks the custody account balance. Must equal pending gross
// plus the treasury balance.
var VaultBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "holdfast",
	Name:      "vault_balance_units",
	Help:      "Balance of the custody vault account, in base units.",
})

// ─── API ────────────────────────────────────────────────────────────────────

// APIRequests tracks REST requests by route and status code.
var APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "holdfast",
	Name:      "api_requests_total",
	Help:      "Total REST API requests by route and status code.",
}, []string{"route", "code"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "holdfast",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})

// HealthRecoveries tracks checks that returned to healthy after failing.
var HealthRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "holdfast",
	Name:      "health_recoveries_total",
	Help:      "Total health check recoveries per check.",
}, []string{"check"})
