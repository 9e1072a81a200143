package validator

import (
	"sync"

	"github.com/bsv-blockchain/utxoindexer/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusValidateBlock        prometheus.Histogram
	prometheusValidateTransactions prometheus.Counter
	prometheusInvalidBlocks        *prometheus.CounterVec
)

var prometheusMetricsInitOnce sync.Once

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusValidateBlock = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "utxoindexer",
			Subsystem: "validator",
			Name:      "validate_block",
			Help:      "Histogram of block validation",
			Buckets:   util.MetricsBucketsMilliSeconds,
		},
	)

	prometheusValidateTransactions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "validator",
			Name:      "transactions",
			Help:      "Number of transactions checked by the validator",
		},
	)

	// reason is the error code name, e.g. TX_UNBALANCED
	prometheusInvalidBlocks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "validator",
			Name:      "invalid_blocks",
			Help:      "Number of blocks found invalid by the validator",
		},
		[]string{"reason"},
	)
}
