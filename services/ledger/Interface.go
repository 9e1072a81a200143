// Package ledger is the single owner of the ledger store. It admits blocks through the
// validator, applies and reverts their effects inside store units of work, and answers
// balance and record queries from committed state.
package ledger

import (
	"context"

	"github.com/bsv-blockchain/utxoindexer/model"
)

// Interface is the contract the transport layer is built on.
type Interface interface {
	Health(ctx context.Context, checkLiveness bool) (int, string, error)

	// SubmitBlock validates block against the current tip and applies it atomically.
	// It returns the new height, or the first validation failure.
	SubmitBlock(ctx context.Context, block *model.Block) (uint32, error)

	// RollbackTo reverts every block above height and returns the new height.
	// height must be between 0 and the current height inclusive.
	RollbackTo(ctx context.Context, height int64) (uint32, error)

	// QueryBalance returns the sum of the unspent outputs of address, 0 when it has none.
	QueryBalance(ctx context.Context, address string) (uint64, error)

	GetBestHeight(ctx context.Context) (uint32, error)
	GetBlock(ctx context.Context, height uint32) (*model.BlockRecord, error)
	GetUTXOs(ctx context.Context, address string) ([]*model.UTXO, error)
	GetUTXO(ctx context.Context, outpoint model.Outpoint) (*model.UTXO, error)
}
