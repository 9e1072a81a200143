package sql

import (
	"context"
	"database/sql"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/bsv-blockchain/utxoindexer/util"
	"github.com/bsv-blockchain/utxoindexer/util/usql"
)

// unit is the ledger.UnitOfWork of a single database transaction.
type unit struct {
	engine        util.SQLEngine
	txn           *usql.Tx
	blocksDeleted bool
}

func (u *unit) GetBestHeight(ctx context.Context) (uint32, error) {
	return getBestHeight(ctx, u.txn)
}

func (u *unit) GetUnspent(ctx context.Context, outpoint model.Outpoint) (*model.UTXO, error) {
	q := `
		SELECT ` + utxoColumns + `
		FROM utxos
		WHERE tx_id = $1
		AND output_index = $2
		AND spent = FALSE
	`

	// lock the row until the unit ends so that no other writer can spend it in between
	if u.engine == util.Postgres {
		q += `
		FOR UPDATE
	`
	}

	utxo, err := scanUTXO(u.txn.QueryRowContext(ctx, q, outpoint.TxID, outpoint.Index))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ERR_UTXO_NOT_FOUND, "[GetUnspent] utxo %s not found or spent", outpoint)
		}

		prometheusLedgerErrors.WithLabelValues("GetUnspent", "query").Inc()

		return nil, errors.NewStorageError("[GetUnspent] failed to get utxo %s", outpoint, err)
	}

	prometheusLedgerGet.Inc()

	return utxo, nil
}

func (u *unit) GetSupply(ctx context.Context) (uint64, error) {
	var supply int64

	err := u.txn.QueryRowContext(ctx, `SELECT supply FROM blocks ORDER BY height DESC LIMIT 1`).Scan(&supply)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		prometheusLedgerErrors.WithLabelValues("GetSupply", "query").Inc()

		return 0, errors.NewStorageError("[GetSupply] failed to get supply", err)
	}

	//nolint:gosec // the column is checked non-negative
	return uint64(supply), nil
}

func (u *unit) InsertBlock(ctx context.Context, blockID string, height uint32, supply uint64) error {
	if supply > model.MaxValue {
		return errors.NewStorageError("[InsertBlock] supply %d of block %s does not fit the supply column", supply, blockID)
	}

	q := `
		INSERT INTO blocks (
		 id
		,height
		,supply
		) VALUES (
		 $1
		,$2
		,$3
		)
	`

	//nolint:gosec // checked against MaxValue above
	if _, err := u.txn.ExecContext(ctx, q, blockID, height, int64(supply)); err != nil {
		if isUniqueViolation(err) {
			return errors.NewBlockExistsError("[InsertBlock] block %s or height %d already exists", blockID, height, err)
		}

		prometheusLedgerErrors.WithLabelValues("InsertBlock", "exec").Inc()

		return errors.NewStorageError("[InsertBlock] failed to insert block %s", blockID, err)
	}

	return nil
}

func (u *unit) InsertTransaction(ctx context.Context, blockID string, _ uint32, position int, tx *model.Transaction) error {
	q := `
		INSERT INTO transactions (
		 id
		,block_id
		,position
		) VALUES (
		 $1
		,$2
		,$3
		)
	`

	if _, err := u.txn.ExecContext(ctx, q, tx.ID, blockID, position); err != nil {
		if isUniqueViolation(err) {
			return errors.NewInvalidTxError(tx.ID, "transaction already exists in the ledger")
		}

		prometheusLedgerErrors.WithLabelValues("InsertTransaction", "exec").Inc()

		return errors.NewStorageError("[InsertTransaction] failed to insert transaction %s", tx.ID, err)
	}

	return nil
}

func (u *unit) Spend(ctx context.Context, outpoint model.Outpoint, spendingTxID string) error {
	q := `
		UPDATE utxos
		SET spent = TRUE
		   ,spent_in_tx = $1
		WHERE tx_id = $2
		AND output_index = $3
		AND spent = FALSE
	`

	result, err := u.txn.ExecContext(ctx, q, spendingTxID, outpoint.TxID, outpoint.Index)
	if err != nil {
		prometheusLedgerErrors.WithLabelValues("Spend", "exec").Inc()
		return errors.NewStorageError("[Spend] error spending utxo %s", outpoint, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewStorageError("[Spend] error reading affected rows for %s", outpoint, err)
	}

	if affected == 0 {
		return errors.NewUtxoSpentError("[Spend] utxo %s is not unspent, cannot be spent by %s", outpoint, spendingTxID)
	}

	prometheusLedgerSpend.Inc()

	return nil
}

func (u *unit) CreateUTXO(ctx context.Context, utxo *model.UTXO) error {
	if utxo.Value > model.MaxValue {
		return errors.NewInvalidTxError(utxo.TxID, "output %d value %d exceeds the maximum of %d", utxo.Index, utxo.Value, uint64(model.MaxValue))
	}

	q := `
		INSERT INTO utxos (
		 tx_id
		,output_index
		,address
		,value
		,spent
		,spent_in_tx
		,created_at_height
		) VALUES (
		 $1
		,$2
		,$3
		,$4
		,FALSE
		,NULL
		,$5
		)
	`

	//nolint:gosec // value is checked against MaxValue above
	if _, err := u.txn.ExecContext(ctx, q, utxo.TxID, utxo.Index, utxo.Address, int64(utxo.Value), utxo.CreatedAtHeight); err != nil {
		if isUniqueViolation(err) {
			return errors.NewInvalidTxError(utxo.TxID, "output %d already exists", utxo.Index)
		}

		prometheusLedgerErrors.WithLabelValues("CreateUTXO", "exec").Inc()

		return errors.NewStorageError("[CreateUTXO] failed to insert utxo %s", utxo.Outpoint(), err)
	}

	prometheusLedgerCreate.Inc()

	return nil
}

func (u *unit) UnspendAbove(ctx context.Context, height uint32) (int64, error) {
	q := `
		UPDATE utxos
		SET spent = FALSE
		   ,spent_in_tx = NULL
		WHERE spent_in_tx IN (
			SELECT t.id
			FROM transactions t
			JOIN blocks b ON b.id = t.block_id
			WHERE b.height > $1
		)
		AND created_at_height <= $1
	`

	affected, err := u.exec(ctx, "UnspendAbove", q, height)
	if err != nil {
		return 0, err
	}

	prometheusLedgerUnspend.Add(float64(affected))

	return affected, nil
}

func (u *unit) DeleteUTXOsAbove(ctx context.Context, height uint32) (int64, error) {
	affected, err := u.exec(ctx, "DeleteUTXOsAbove", `DELETE FROM utxos WHERE created_at_height > $1`, height)
	if err != nil {
		return 0, err
	}

	prometheusLedgerDelete.Add(float64(affected))

	return affected, nil
}

func (u *unit) DeleteTransactionsAbove(ctx context.Context, height uint32) (int64, error) {
	q := `
		DELETE FROM transactions
		WHERE block_id IN (
			SELECT id FROM blocks WHERE height > $1
		)
	`

	return u.exec(ctx, "DeleteTransactionsAbove", q, height)
}

func (u *unit) DeleteBlocksAbove(ctx context.Context, height uint32) (int64, error) {
	affected, err := u.exec(ctx, "DeleteBlocksAbove", `DELETE FROM blocks WHERE height > $1`, height)
	if err != nil {
		return 0, err
	}

	if affected > 0 {
		u.blocksDeleted = true
	}

	return affected, nil
}

func (u *unit) exec(ctx context.Context, function string, q string, args ...interface{}) (int64, error) {
	result, err := u.txn.ExecContext(ctx, q, args...)
	if err != nil {
		prometheusLedgerErrors.WithLabelValues(function, "exec").Inc()
		return 0, errors.NewStorageError("[%s] failed to execute statement", function, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewStorageError("[%s] failed to read affected rows", function, err)
	}

	return affected, nil
}
