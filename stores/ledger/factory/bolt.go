package factory

import (
	"context"
	"net/url"

	"github.com/bsv-blockchain/utxoindexer/settings"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger/bolt"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
)

func init() {
	availableDatabases["bolt"] = func(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (ledger.Store, error) {
		return bolt.New(ctx, logger, tSettings, storeURL)
	}
}
