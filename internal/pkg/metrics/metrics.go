// Package metrics holds the Prometheus collectors of the engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wallet_engine"

var (
	PriceRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_refreshes_total",
			Help:      "Rate feed refreshes by feed and status.",
		},
		[]string{"feed", "status"},
	)

	PricesCached = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "prices_cached",
			Help:      "Number of fresh rates currently cached.",
		},
	)

	FeeEstimations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fee_estimations_total",
			Help:      "Fee estimations by network and status.",
		},
		[]string{"network", "status"},
	)

	StaleFeeCompletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fee_stale_completions_total",
			Help:      "Fee completions discarded because the selection changed.",
		},
	)

	TransferSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_submissions_total",
			Help:      "Transfer submissions by network and status.",
		},
		[]string{"network", "status"},
	)

	TransferSessionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transfer_sessions_open",
			Help:      "Number of open transfer sessions.",
		},
	)

	BalanceRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_refreshes_total",
			Help:      "Balance snapshot refreshes by status.",
		},
		[]string{"status"},
	)

	AggregationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent aggregating a balance snapshot.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)
)

var registerOnce sync.Once

// MustRegisterMetrics registers all collectors with the default registry.
// Calling it more than once is a no-op.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			PriceRefreshes,
			PricesCached,
			FeeEstimations,
			StaleFeeCompletions,
			TransferSubmissions,
			TransferSessionsOpen,
			BalanceRefreshes,
			AggregationDuration,
		)
	})
}

// Status labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)
