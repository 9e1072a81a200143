package ledger

import (
	"sync"

	"github.com/bsv-blockchain/utxoindexer/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusBlocksAccepted prometheus.Counter
	prometheusBlocksRejected *prometheus.CounterVec
	prometheusRollbacks      prometheus.Counter
	prometheusBalanceQueries prometheus.Counter
	prometheusSubmitBlock    prometheus.Histogram
	prometheusRollbackTo     prometheus.Histogram
	prometheusBlockTxs       prometheus.Histogram
	prometheusRolledBackTxs  prometheus.Histogram
)

var prometheusMetricsInitOnce sync.Once

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusBlocksAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "ledger",
			Name:      "blocks_accepted",
			Help:      "Number of blocks applied to the ledger",
		},
	)

	prometheusBlocksRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "ledger",
			Name:      "blocks_rejected",
			Help:      "Number of submitted blocks that were not applied, by error code",
		},
		[]string{"reason"},
	)

	prometheusRollbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "ledger",
			Name:      "rollbacks",
			Help:      "Number of rollbacks that removed at least one block",
		},
	)

	prometheusBalanceQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "ledger",
			Name:      "balance_queries",
			Help:      "Number of balance queries",
		},
	)

	prometheusSubmitBlock = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "utxoindexer",
			Subsystem: "ledger",
			Name:      "submit_block",
			Help:      "Histogram of block submission, validation and apply included",
			Buckets:   util.MetricsBucketsMilliSeconds,
		},
	)

	prometheusRollbackTo = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "utxoindexer",
			Subsystem: "ledger",
			Name:      "rollback",
			Help:      "Histogram of rollbacks",
			Buckets:   util.MetricsBucketsMilliLongSeconds,
		},
	)

	prometheusBlockTxs = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "utxoindexer",
			Subsystem: "ledger",
			Name:      "block_transactions",
			Help:      "Number of transactions in accepted blocks",
			Buckets:   util.MetricsBucketsCount,
		},
	)

	prometheusRolledBackTxs = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "utxoindexer",
			Subsystem: "ledger",
			Name:      "rolled_back_transactions",
			Help:      "Number of transactions removed per rollback",
			Buckets:   util.MetricsBucketsCount,
		},
	)
}
