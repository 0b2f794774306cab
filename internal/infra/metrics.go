package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SweepRuns counts sweep executions, partitioned by sweep type.
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crickbet_sweep_runs_total",
		Help: "Total sweep executions",
	}, []string{"sweep"})

	// SweepSkips counts ticks skipped because the previous run was in flight.
	SweepSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crickbet_sweep_skips_total",
		Help: "Sweep ticks skipped by the in-flight guard",
	}, []string{"sweep"})

	// SweepDuration tracks sweep execution time.
	SweepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crickbet_sweep_duration_seconds",
		Help:    "Sweep execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"sweep"})

	// WagersSettled counts settled wagers, partitioned by final status.
	WagersSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crickbet_wagers_settled_total",
		Help: "Wagers moved out of pending",
	}, []string{"status"})

	// SourceFetchFailures counts swallowed result-source failures.
	SourceFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crickbet_source_fetch_failures_total",
		Help: "Result source fetch or parse failures treated as not-yet-available",
	}, []string{"source"})

	// UnparsedResults counts free-text results no rule matched.
	UnparsedResults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crickbet_unparsed_results_total",
		Help: "Result strings left pending because no parse rule matched",
	})

	// CommissionsPaid counts commission records written.
	CommissionsPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crickbet_commissions_paid_total",
		Help: "Commission records credited to agents",
	})
)

// MetricsHandler returns the Prometheus metrics HTTP handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
