package sql

import (
	"context"
	"database/sql"

	"github.com/bsv-blockchain/utxoindexer/errors"
)

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *Store) GetBestHeight(ctx context.Context) (uint32, error) {
	ctx, cancelTimeout := context.WithTimeout(ctx, s.dbTimeout)
	defer cancelTimeout()

	return getBestHeight(ctx, s.db)
}

func getBestHeight(ctx context.Context, db queryRower) (uint32, error) {
	var height int64

	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(height), 0) FROM blocks`).Scan(&height); err != nil {
		prometheusLedgerErrors.WithLabelValues("GetBestHeight", "query").Inc()
		return 0, errors.NewStorageError("[GetBestHeight] failed to get best height", err)
	}

	//nolint:gosec // heights are inserted from uint32 values
	return uint32(height), nil
}
