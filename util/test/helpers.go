// Package test provides settings shared by the unit tests of every package.
package test

import (
	"testing"
	"time"

	"github.com/bsv-blockchain/utxoindexer/settings"
)

// CreateBaseTestSettings returns the default settings with a private data folder and
// short timeouts, so that file backed stores never collide between tests.
func CreateBaseTestSettings(t *testing.T) *settings.Settings {
	tSettings := settings.NewSettings()

	tSettings.DataFolder = t.TempDir()
	tSettings.LogLevel = "DEBUG"
	tSettings.PrettyLogs = false
	tSettings.LedgerStore.DBTimeout = 5 * time.Second
	tSettings.LedgerStore.BlockCacheTTL = time.Minute
	tSettings.LedgerStore.BoltTimeout = time.Second
	tSettings.Indexer.HTTPListenAddress = "localhost:0"
	tSettings.Indexer.APIPrefix = ""
	tSettings.StatsPrefix = "/stats/"
	tSettings.PrometheusEndpoint = "/metrics"
	tSettings.Tracing.Enabled = false

	return tSettings
}
