package bolt

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusBoltGet     prometheus.Counter
	prometheusBoltBalance prometheus.Counter
	prometheusBoltSpend   prometheus.Counter
	prometheusBoltCreate  prometheus.Counter
	prometheusBoltUnspend prometheus.Counter
	prometheusBoltDelete  prometheus.Counter
	prometheusBoltCommit  prometheus.Counter
	prometheusBoltErrors  *prometheus.CounterVec

	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	newCounter := func(name, help string) prometheus.Counter {
		return promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "bolt_ledger",
			Name:      name,
			Help:      help,
		})
	}

	prometheusBoltGet = newCounter("get", "Number of utxo reads done to bolt")
	prometheusBoltBalance = newCounter("balance", "Number of balance queries done to bolt")
	prometheusBoltSpend = newCounter("spend", "Number of utxos marked as spent")
	prometheusBoltCreate = newCounter("create", "Number of utxos created")
	prometheusBoltUnspend = newCounter("unspend", "Number of utxos reverted to unspent by rollbacks")
	prometheusBoltDelete = newCounter("delete", "Number of utxos deleted by rollbacks")
	prometheusBoltCommit = newCounter("commit", "Number of committed units of work")

	prometheusBoltErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utxoindexer",
			Subsystem: "bolt_ledger",
			Name:      "errors",
			Help:      "Number of bolt ledger errors",
		},
		[]string{
			"function", // function raising the error
			"error",    // error returned
		},
	)
}
