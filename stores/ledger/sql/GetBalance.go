package sql

import (
	"context"

	"github.com/bsv-blockchain/utxoindexer/errors"
)

func (s *Store) GetBalance(ctx context.Context, address string) (uint64, error) {
	ctx, cancelTimeout := context.WithTimeout(ctx, s.dbTimeout)
	defer cancelTimeout()

	q := `
		SELECT COALESCE(SUM(value), 0)
		FROM utxos
		WHERE address = $1
		AND spent = FALSE
	`

	var balance uint64

	if err := s.db.QueryRowContext(ctx, q, address).Scan(&balance); err != nil {
		prometheusLedgerErrors.WithLabelValues("GetBalance", "query").Inc()
		return 0, errors.NewStorageError("[GetBalance] failed to get balance for %s", address, err)
	}

	prometheusLedgerBalance.Inc()

	return balance, nil
}
