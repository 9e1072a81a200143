package sql

import (
	"context"
	"database/sql"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
)

func (s *Store) GetBlockByHeight(ctx context.Context, height uint32) (*model.BlockRecord, error) {
	op := s.blockCache.begin(height)
	if cached := op.get(); cached != nil {
		prometheusLedgerCacheHit.Inc()
		return cached, nil
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, s.dbTimeout)
	defer cancelTimeout()

	block := &model.BlockRecord{
		Height: height,
		TxIDs:  make([]string, 0),
	}

	var supply int64

	if err := s.db.QueryRowContext(ctx, `SELECT id, supply FROM blocks WHERE height = $1`, height).Scan(&block.ID, &supply); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewBlockNotFoundError("[GetBlockByHeight] no block at height %d", height)
		}

		return nil, errors.NewStorageError("[GetBlockByHeight] failed to get block at height %d", height, err)
	}

	//nolint:gosec // the column is checked non-negative
	block.Supply = uint64(supply)

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM transactions WHERE block_id = $1 ORDER BY position`, block.ID)
	if err != nil {
		return nil, errors.NewStorageError("[GetBlockByHeight] failed to get transactions of block %s", block.ID, err)
	}

	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var txID string
		if err = rows.Scan(&txID); err != nil {
			return nil, errors.NewStorageError("[GetBlockByHeight] failed to scan transaction of block %s", block.ID, err)
		}

		block.TxIDs = append(block.TxIDs, txID)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.NewStorageError("[GetBlockByHeight] failed to read transactions of block %s", block.ID, err)
	}

	op.set(block)

	return block, nil
}
