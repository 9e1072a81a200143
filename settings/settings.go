package settings

import (
	"strings"
	"time"
)

func NewSettings() *Settings {
	return &Settings{
		ServiceName:        getString("SERVICE_NAME", "utxoindexer"),
		Version:            getString("VERSION", "dev"),
		Commit:             getString("COMMIT", ""),
		DataFolder:         getString("dataFolder", "data"),
		LogLevel:           getString("logLevel", "INFO"),
		LoggerType:         getString("logger", "zerolog"),
		PrettyLogs:         getBool("PRETTY_LOGS", true),
		StatsPrefix:        getString("stats_prefix", "/stats/"),
		PrometheusEndpoint: getString("prometheusEndpoint", "/metrics"),
		LedgerStore: LedgerStoreSettings{
			StoreURL:             getURL("ledgerstore", "sqlite:///ledger"),
			DBTimeout:            getDuration("ledgerstore_dbTimeout", 5*time.Second),
			PostgresMaxIdleConns: getInt("ledgerstore_postgresMaxIdleConns", 10),
			PostgresMaxOpenConns: getInt("ledgerstore_postgresMaxOpenConns", 80),
			BlockCacheTTL:        getDuration("ledgerstore_blockCacheTTL", 2*time.Minute),
			BoltTimeout:          getDuration("ledgerstore_boltTimeout", time.Second),
		},
		Indexer: IndexerSettings{
			HTTPListenAddress: getString("indexer_httpListenAddress", ":8090"),
			APIPrefix:         getString("indexer_apiPrefix", ""),
			EchoDebug:         getBool("ECHO_DEBUG", false),
			BodyLimit:         getString("indexer_bodyLimit", "16M"),
			CORSAllowOrigins:  splitList(getString("indexer_corsAllowOrigins", "*")),
			ClientURL:         getString("indexer_clientURL", "http://localhost:8090"),
			ClientTimeout:     getDuration("indexer_clientTimeout", 30*time.Second),
		},
		Tracing: TracingSettings{
			Enabled:      getBool("tracing_enabled", false),
			SampleRate:   getFloat64("tracing_SampleRate", 0.01),
			CollectorURL: getURL("tracing_collector_url", "http://localhost:4318"),
		},
	}
}

func splitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
