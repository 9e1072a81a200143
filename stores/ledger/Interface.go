// Package ledger defines the persistence contract of the indexer: committed reads
// for queries, and an atomic unit of work for block application and rollback.
package ledger

import (
	"context"

	"github.com/bsv-blockchain/utxoindexer/model"
)

// Store is implemented by every ledger backend.
type Store interface {
	Health(ctx context.Context, checkLiveness bool) (int, string, error)

	// GetBestHeight returns the height of the highest stored block, 0 for an empty ledger.
	GetBestHeight(ctx context.Context) (uint32, error)

	// GetUTXO returns the record for outpoint whatever its spent state.
	GetUTXO(ctx context.Context, outpoint model.Outpoint) (*model.UTXO, error)

	// GetUTXOsByAddress returns the unspent records owned by address, ordered by creation height.
	GetUTXOsByAddress(ctx context.Context, address string) ([]*model.UTXO, error)

	// GetBalance sums the unspent values owned by address. Unknown addresses have balance 0.
	GetBalance(ctx context.Context, address string) (uint64, error)

	GetBlockByHeight(ctx context.Context, height uint32) (*model.BlockRecord, error)

	// Update runs fn inside a single atomic unit of work. The unit is committed when fn
	// returns nil and rolled back on error or panic.
	Update(ctx context.Context, fn func(unit UnitOfWork) error) error

	Close() error
}

// UnitOfWork is the read-write view of the ledger inside Store.Update. Reads observe
// the writes already made in the same unit.
type UnitOfWork interface {
	GetBestHeight(ctx context.Context) (uint32, error)

	// GetUnspent returns the unspent record for outpoint, or an ERR_UTXO_NOT_FOUND error
	// when the output does not exist or is already spent.
	GetUnspent(ctx context.Context, outpoint model.Outpoint) (*model.UTXO, error)

	// GetSupply returns the Supply of the best block, 0 for an empty ledger.
	GetSupply(ctx context.Context) (uint64, error)

	InsertBlock(ctx context.Context, blockID string, height uint32, supply uint64) error
	InsertTransaction(ctx context.Context, blockID string, height uint32, position int, tx *model.Transaction) error

	// Spend marks outpoint as spent by spendingTxID. It fails with ERR_UTXO_SPENT when the
	// output is not unspent at the time of the write.
	Spend(ctx context.Context, outpoint model.Outpoint, spendingTxID string) error
	CreateUTXO(ctx context.Context, utxo *model.UTXO) error

	// UnspendAbove reverts outputs created at or below height that were spent by a
	// transaction of a block above height.
	UnspendAbove(ctx context.Context, height uint32) (int64, error)
	DeleteUTXOsAbove(ctx context.Context, height uint32) (int64, error)
	DeleteTransactionsAbove(ctx context.Context, height uint32) (int64, error)
	DeleteBlocksAbove(ctx context.Context, height uint32) (int64, error)
}
