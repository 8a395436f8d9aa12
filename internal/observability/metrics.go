// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Compute metrics
	ComputesTotal   *prometheus.CounterVec
	ComputeDuration prometheus.Histogram

	// Event pipeline metrics
	TradesLoaded       prometheus.Counter
	SettlementsLoaded  prometheus.Counter
	MalformedDropped   *prometheus.CounterVec
	PhantomLegsDropped prometheus.Counter
	SettlementsUnmapped prometheus.Counter

	// Data quality metrics
	ExternalSellFlags  prometheus.Counter
	ExternalSellTokens prometheus.Counter

	// Batch metrics
	BatchWalletsTotal *prometheus.CounterVec
	BatchDuration     prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "polymarket_pnl"
	}

	return &Metrics{
		ComputesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "computes_total",
			Help:      "Total number of wallet computations by status",
		}, []string{"status"}),
		ComputeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "compute_duration_seconds",
			Help:      "Wallet computation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		TradesLoaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "trades_loaded_total",
			Help:      "Total number of raw trade events loaded",
		}),
		SettlementsLoaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "settlements_loaded_total",
			Help:      "Total number of raw settlement events loaded",
		}),
		MalformedDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "malformed_dropped_total",
			Help:      "Total number of malformed events dropped by kind",
		}, []string{"kind"}),
		PhantomLegsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "normalizer",
			Name:      "phantom_legs_dropped_total",
			Help:      "Total number of phantom trade legs dropped",
		}),
		SettlementsUnmapped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "unifier",
			Name:      "settlements_unmapped_total",
			Help:      "Total number of settlement events dropped for missing token pair mapping",
		}),

		ExternalSellFlags: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "external_sell_flags_total",
			Help:      "Total number of disposals exceeding tracked inventory",
		}),
		ExternalSellTokens: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "external_sell_tokens_total",
			Help:      "Total untracked tokens across flagged disposals",
		}),

		BatchWalletsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "wallets_total",
			Help:      "Total number of wallets processed in batches by status",
		}, []string{"status"}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Batch run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCompute records one wallet computation.
func RecordCompute(status string, seconds float64) {
	DefaultMetrics.ComputesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ComputeDuration.Observe(seconds)
}

// RecordEventsLoaded records raw events surviving the loader.
func RecordEventsLoaded(trades, settlements int) {
	DefaultMetrics.TradesLoaded.Add(float64(trades))
	DefaultMetrics.SettlementsLoaded.Add(float64(settlements))
}

// RecordMalformedEvent records one dropped malformed event by kind.
func RecordMalformedEvent(kind string) {
	DefaultMetrics.MalformedDropped.WithLabelValues(kind).Inc()
}

// RecordSettlementUnmapped records a settlement event dropped because
// its condition has no token pair mapping.
func RecordSettlementUnmapped() {
	DefaultMetrics.SettlementsUnmapped.Inc()
}

// RecordPhantomLegs records dropped phantom legs.
func RecordPhantomLegs(n int) {
	DefaultMetrics.PhantomLegsDropped.Add(float64(n))
}

// RecordExternalSells records flagged disposals and their untracked volume.
func RecordExternalSells(flags int, tokens float64) {
	DefaultMetrics.ExternalSellFlags.Add(float64(flags))
	DefaultMetrics.ExternalSellTokens.Add(tokens)
}

// RecordBatchWallet records one wallet's outcome within a batch.
func RecordBatchWallet(status string) {
	DefaultMetrics.BatchWalletsTotal.WithLabelValues(status).Inc()
}
