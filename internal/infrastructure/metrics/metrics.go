package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger's Prometheus metrics. Use cases take it as an
// optional dependency; a nil receiver on the caller side skips recording.
type Metrics struct {
	// Entry metrics
	EntriesCreated   *prometheus.CounterVec
	EntriesCancelled *prometheus.CounterVec
	EntriesReversed  prometheus.Counter
	EntryAmount      *prometheus.HistogramVec

	// Transfer metrics
	TransfersCreated   prometheus.Counter
	TransfersCancelled prometheus.Counter
	TransferDuration   prometheus.Histogram

	// Account metrics
	AccountsCreated prometheus.Counter

	// Consistency metrics
	ReconciliationRuns    prometheus.Counter
	BalanceDriftDetected  prometheus.Counter
	ConsistencyViolations *prometheus.CounterVec
	BalanceCacheHits      prometheus.Counter
	BalanceCacheMisses    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		// Entry metrics
		EntriesCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_entries_created_total",
				Help: "Total number of entries created",
			},
			[]string{"kind"},
		),
		EntriesCancelled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_entries_cancelled_total",
				Help: "Total number of entries cancelled",
			},
			[]string{"kind"},
		),
		EntriesReversed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_entries_reversed_total",
			Help: "Total number of reversing entries appended for reconciled originals",
		}),
		EntryAmount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_entry_amount",
				Help:    "Entry amounts",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"kind"},
		),

		// Transfer metrics
		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_transfers_created_total",
			Help: "Total number of transfer pairs created",
		}),
		TransfersCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_transfers_cancelled_total",
			Help: "Total number of transfer pairs cancelled",
		}),
		TransferDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		// Consistency metrics
		ReconciliationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_reconciliation_runs_total",
			Help: "Total number of reconciliation checks performed",
		}),
		BalanceDriftDetected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_balance_drift_detected_total",
			Help: "Total number of accounts where cached and replayed balances disagreed",
		}),
		ConsistencyViolations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_consistency_violations_total",
				Help: "Total detected consistency violations by type",
			},
			[]string{"violation"},
		),
		BalanceCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_balance_cache_hits_total",
			Help: "Total balance reads served from cache",
		}),
		BalanceCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_balance_cache_misses_total",
			Help: "Total balance reads that fell through to storage",
		}),
	}
}
