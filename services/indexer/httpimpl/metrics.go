package httpimpl

import (
	"sync"

	"github.com/bsv-blockchain/utxoindexer/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusHTTPRequests *prometheus.CounterVec
	prometheusHTTPDuration *prometheus.HistogramVec

	prometheusIndexerHTTPSubmitBlock *prometheus.CounterVec
	prometheusIndexerHTTPGetBalance  *prometheus.CounterVec
	prometheusIndexerHTTPRollback    *prometheus.CounterVec
	prometheusIndexerHTTPGetBlock    *prometheus.CounterVec
	prometheusIndexerHTTPGetUTXO     *prometheus.CounterVec
)

var prometheusMetricsInitOnce sync.Once

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusHTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "http",
			Name:      "requests",
			Help:      "Number of HTTP requests by method, route and status",
		},
		[]string{"method", "path", "status"},
	)

	prometheusHTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "utxoindexer",
			Subsystem: "http",
			Name:      "request_duration",
			Help:      "Histogram of HTTP request handling by route",
			Buckets:   util.MetricsBucketsMilliSeconds,
		},
		[]string{"path"},
	)

	prometheusIndexerHTTPSubmitBlock = newHandlerCounter("submit_block", "Number of Submit block ops")
	prometheusIndexerHTTPGetBalance = newHandlerCounter("get_balance", "Number of Get balance ops")
	prometheusIndexerHTTPRollback = newHandlerCounter("rollback", "Number of Rollback ops")
	prometheusIndexerHTTPGetBlock = newHandlerCounter("get_block", "Number of Get block ops")
	prometheusIndexerHTTPGetUTXO = newHandlerCounter("get_utxo", "Number of Get utxo ops")
}

func newHandlerCounter(name, help string) *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "http",
			Name:      name,
			Help:      help,
		},
		[]string{
			"function",  // function tracking the operation
			"operation", // type of operation achieved
		},
	)
}
