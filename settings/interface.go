package settings

import (
	"net/url"
	"time"
)

type LedgerStoreSettings struct {
	StoreURL             *url.URL
	DBTimeout            time.Duration
	PostgresMaxIdleConns int
	PostgresMaxOpenConns int
	BlockCacheTTL        time.Duration
	BoltTimeout          time.Duration
}

type IndexerSettings struct {
	HTTPListenAddress string
	APIPrefix         string
	EchoDebug         bool
	BodyLimit         string
	CORSAllowOrigins  []string
	ClientURL         string
	ClientTimeout     time.Duration
}

type TracingSettings struct {
	Enabled      bool
	SampleRate   float64
	CollectorURL *url.URL
}

type Settings struct {
	ServiceName        string
	Version            string
	Commit             string
	DataFolder         string
	LogLevel           string
	LoggerType         string
	PrettyLogs         bool
	StatsPrefix        string
	PrometheusEndpoint string
	LedgerStore        LedgerStoreSettings
	Indexer            IndexerSettings
	Tracing            TracingSettings
}
