package sql

import (
	"context"
	"database/sql"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
)

const utxoColumns = `tx_id, output_index, address, value, spent, spent_in_tx, created_at_height`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUTXO(row scanner) (*model.UTXO, error) {
	var (
		u         model.UTXO
		index     int64
		value     int64
		height    int64
		spentInTx sql.NullString
	)

	if err := row.Scan(&u.TxID, &index, &u.Address, &value, &u.Spent, &spentInTx, &height); err != nil {
		return nil, err
	}

	//nolint:gosec // columns are written from uint32 / checked uint64 values
	u.Index, u.Value, u.CreatedAtHeight = uint32(index), uint64(value), uint32(height)
	u.SpentInTx = spentInTx.String

	return &u, nil
}

func (s *Store) GetUTXO(ctx context.Context, outpoint model.Outpoint) (*model.UTXO, error) {
	ctx, cancelTimeout := context.WithTimeout(ctx, s.dbTimeout)
	defer cancelTimeout()

	q := `
		SELECT ` + utxoColumns + `
		FROM utxos
		WHERE tx_id = $1
		AND output_index = $2
	`

	utxo, err := scanUTXO(s.db.QueryRowContext(ctx, q, outpoint.TxID, outpoint.Index))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ERR_UTXO_NOT_FOUND, "[GetUTXO] utxo %s not found", outpoint)
		}

		prometheusLedgerErrors.WithLabelValues("GetUTXO", "query").Inc()

		return nil, errors.NewStorageError("[GetUTXO] failed to get utxo %s", outpoint, err)
	}

	prometheusLedgerGet.Inc()

	return utxo, nil
}

func (s *Store) GetUTXOsByAddress(ctx context.Context, address string) ([]*model.UTXO, error) {
	ctx, cancelTimeout := context.WithTimeout(ctx, s.dbTimeout)
	defer cancelTimeout()

	q := `
		SELECT ` + utxoColumns + `
		FROM utxos
		WHERE address = $1
		AND spent = FALSE
		ORDER BY created_at_height, tx_id, output_index
	`

	rows, err := s.db.QueryContext(ctx, q, address)
	if err != nil {
		prometheusLedgerErrors.WithLabelValues("GetUTXOsByAddress", "query").Inc()
		return nil, errors.NewStorageError("[GetUTXOsByAddress] failed to query utxos for %s", address, err)
	}

	defer func() {
		_ = rows.Close()
	}()

	utxos := make([]*model.UTXO, 0)

	for rows.Next() {
		utxo, err := scanUTXO(rows)
		if err != nil {
			return nil, errors.NewStorageError("[GetUTXOsByAddress] failed to scan utxo for %s", address, err)
		}

		utxos = append(utxos, utxo)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.NewStorageError("[GetUTXOsByAddress] failed to read utxos for %s", address, err)
	}

	prometheusLedgerGet.Inc()

	return utxos, nil
}
