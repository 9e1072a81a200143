package factory

import (
	"context"
	"net/url"

	"github.com/bsv-blockchain/utxoindexer/settings"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger/sql"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/bsv-blockchain/utxoindexer/util"
)

func init() {
	newSQLStore := func(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (ledger.Store, error) {
		return sql.New(ctx, logger, tSettings, storeURL)
	}

	availableDatabases[string(util.Postgres)] = newSQLStore
	availableDatabases[string(util.Sqlite)] = newSQLStore
	availableDatabases[string(util.SqliteMemory)] = newSQLStore
}
