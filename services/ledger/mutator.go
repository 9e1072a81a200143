package ledger

import (
	"context"

	"github.com/bsv-blockchain/utxoindexer/model"
	ledgerstore "github.com/bsv-blockchain/utxoindexer/stores/ledger"
)

// apply writes the effects of a validated block: the block record with the supply after
// it, then for every transaction in order its record, the spends of its inputs and its
// new outputs.
func apply(ctx context.Context, unit ledgerstore.UnitOfWork, block *model.Block, supply uint64) error {
	if err := unit.InsertBlock(ctx, block.ID, block.Height, supply); err != nil {
		return err
	}

	for position, tx := range block.Transactions {
		if err := unit.InsertTransaction(ctx, block.ID, block.Height, position, tx); err != nil {
			return err
		}

		for _, input := range tx.Inputs {
			if err := unit.Spend(ctx, input.Outpoint(), tx.ID); err != nil {
				return err
			}
		}

		for index := range tx.Outputs {
			if err := unit.CreateUTXO(ctx, model.NewUTXO(tx, uint32(index), block.Height)); err != nil {
				return err
			}
		}
	}

	return nil
}

type rollbackResult struct {
	unspent      int64
	deletedUTXOs int64
	deletedTxs   int64
	deletedBlock int64
}

// rollback reverts every block above target. Spends are reverted while the transactions
// of the removed blocks are still stored, the rows themselves are deleted afterwards.
func rollback(ctx context.Context, unit ledgerstore.UnitOfWork, target uint32) (res rollbackResult, err error) {
	if res.unspent, err = unit.UnspendAbove(ctx, target); err != nil {
		return res, err
	}

	if res.deletedUTXOs, err = unit.DeleteUTXOsAbove(ctx, target); err != nil {
		return res, err
	}

	if res.deletedTxs, err = unit.DeleteTransactionsAbove(ctx, target); err != nil {
		return res, err
	}

	if res.deletedBlock, err = unit.DeleteBlocksAbove(ctx, target); err != nil {
		return res, err
	}

	return res, nil
}
