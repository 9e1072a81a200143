package sql

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusLedgerGet      prometheus.Counter
	prometheusLedgerBalance  prometheus.Counter
	prometheusLedgerSpend    prometheus.Counter
	prometheusLedgerCreate   prometheus.Counter
	prometheusLedgerUnspend  prometheus.Counter
	prometheusLedgerDelete   prometheus.Counter
	prometheusLedgerCommit   prometheus.Counter
	prometheusLedgerErrors   *prometheus.CounterVec
	prometheusLedgerCacheHit prometheus.Counter

	// only init the metrics once
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusLedgerGet = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "sql_ledger",
			Name:      "get",
			Help:      "Number of utxo get calls done to sql",
		},
	)
	prometheusLedgerBalance = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "sql_ledger",
			Name:      "balance",
			Help:      "Number of balance queries done to sql",
		},
	)
	prometheusLedgerSpend = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "sql_ledger",
			Name:      "spend",
			Help:      "Number of utxos marked as spent",
		},
	)
	prometheusLedgerCreate = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "sql_ledger",
			Name:      "create",
			Help:      "Number of utxos created",
		},
	)
	prometheusLedgerUnspend = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "sql_ledger",
			Name:      "unspend",
			Help:      "Number of utxos reverted to unspent by rollbacks",
		},
	)
	prometheusLedgerDelete = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "sql_ledger",
			Name:      "delete",
			Help:      "Number of utxos deleted by rollbacks",
		},
	)
	prometheusLedgerCommit = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "sql_ledger",
			Name:      "commit",
			Help:      "Number of committed units of work",
		},
	)
	prometheusLedgerCacheHit = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "sql_ledger",
			Name:      "block_cache_hit",
			Help:      "Number of block lookups served from the response cache",
		},
	)
	prometheusLedgerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "sql_ledger",
			Name:      "errors",
			Help:      "Number of sql ledger errors",
		},
		[]string{
			"function", // function raising the error
			"error",    // error returned
		},
	)
}
