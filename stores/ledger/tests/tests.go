// Package tests holds the conformance suite every ledger.Store backend must pass.
package tests

import (
	"context"
	"slices"
	"testing"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// tx1 creates 10 for addr1 and 5 for addr3
	tx1 = &model.Transaction{
		ID:      "tx1",
		Outputs: []model.Output{{Address: "addr1", Value: 10}, {Address: "addr3", Value: 5}},
	}

	// tx2 moves tx1:0 to addr2
	tx2 = &model.Transaction{
		ID:      "tx2",
		Inputs:  []model.Input{{TxID: "tx1", Index: 0}},
		Outputs: []model.Output{{Address: "addr2", Value: 10}},
	}

	// tx3 splits tx2:0 between addr1 and addr3
	tx3 = &model.Transaction{
		ID:      "tx3",
		Inputs:  []model.Input{{TxID: "tx2", Index: 0}},
		Outputs: []model.Output{{Address: "addr1", Value: 4}, {Address: "addr3", Value: 6}},
	}

	block1 = model.NewBlock(1, tx1)
	block2 = model.NewBlock(2, tx2)
	block3 = model.NewBlock(3, tx3)
)

// ApplyBlock writes block through unit the same way the ledger service does, without validation.
func ApplyBlock(ctx context.Context, unit ledger.UnitOfWork, block *model.Block) error {
	supply, err := unit.GetSupply(ctx)
	if err != nil {
		return err
	}

	for _, tx := range block.Transactions {
		if tx.IsValueCreation() {
			created, _ := tx.OutputSum()
			supply += created
		}
	}

	if err = unit.InsertBlock(ctx, block.ID, block.Height, supply); err != nil {
		return err
	}

	for i, tx := range block.Transactions {
		if err := unit.InsertTransaction(ctx, block.ID, block.Height, i, tx); err != nil {
			return err
		}

		for _, in := range tx.Inputs {
			if err := unit.Spend(ctx, in.Outpoint(), tx.ID); err != nil {
				return err
			}
		}

		for idx := range tx.Outputs {
			//nolint:gosec // test blocks have few outputs
			if err := unit.CreateUTXO(ctx, model.NewUTXO(tx, uint32(idx), block.Height)); err != nil {
				return err
			}
		}
	}

	return nil
}

// RollbackTo reverts the ledger to height in the order the ledger service uses.
func RollbackTo(ctx context.Context, unit ledger.UnitOfWork, height uint32) error {
	if _, err := unit.UnspendAbove(ctx, height); err != nil {
		return err
	}

	if _, err := unit.DeleteUTXOsAbove(ctx, height); err != nil {
		return err
	}

	if _, err := unit.DeleteTransactionsAbove(ctx, height); err != nil {
		return err
	}

	_, err := unit.DeleteBlocksAbove(ctx, height)

	return err
}

func apply(t *testing.T, store ledger.Store, blocks ...*model.Block) {
	t.Helper()

	ctx := context.Background()

	for _, block := range blocks {
		require.NoError(t, store.Update(ctx, func(unit ledger.UnitOfWork) error {
			return ApplyBlock(ctx, unit, block)
		}))
	}
}

func balance(t *testing.T, store ledger.Store, address string) uint64 {
	t.Helper()

	b, err := store.GetBalance(context.Background(), address)
	require.NoError(t, err)

	return b
}

func Empty(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	height, err := store.GetBestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), height)

	assert.Equal(t, uint64(0), balance(t, store, "nobody"))

	utxos, err := store.GetUTXOsByAddress(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, utxos)
	assert.Empty(t, utxos)

	_, err = store.GetUTXO(ctx, model.Outpoint{TxID: "tx1", Index: 0})
	assert.True(t, errors.Is(err, errors.ErrUtxoNotFound))

	_, err = store.GetBlockByHeight(ctx, 1)
	assert.True(t, errors.Is(err, errors.ErrBlockNotFound))

	status, _, err := store.Health(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
}

func ApplyAndQuery(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	apply(t, store, block1)

	height, err := store.GetBestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), height)

	assert.Equal(t, uint64(10), balance(t, store, "addr1"))
	assert.Equal(t, uint64(5), balance(t, store, "addr3"))

	utxo, err := store.GetUTXO(ctx, model.Outpoint{TxID: "tx1", Index: 1})
	require.NoError(t, err)
	assert.Equal(t, &model.UTXO{TxID: "tx1", Index: 1, Address: "addr3", Value: 5, CreatedAtHeight: 1}, utxo)

	utxos, err := store.GetUTXOsByAddress(ctx, "addr1")
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, "tx1", utxos[0].TxID)
	assert.Equal(t, uint32(0), utxos[0].Index)

	block, err := store.GetBlockByHeight(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, block1.ID, block.ID)
	assert.Equal(t, uint32(1), block.Height)
	assert.Equal(t, []string{"tx1"}, block.TxIDs)
}

func Spend(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	apply(t, store, block1, block2)

	assert.Equal(t, uint64(0), balance(t, store, "addr1"))
	assert.Equal(t, uint64(10), balance(t, store, "addr2"))

	spent, err := store.GetUTXO(ctx, model.Outpoint{TxID: "tx1", Index: 0})
	require.NoError(t, err)
	assert.True(t, spent.Spent)
	assert.Equal(t, "tx2", spent.SpentInTx)

	utxos, err := store.GetUTXOsByAddress(ctx, "addr1")
	require.NoError(t, err)
	assert.Empty(t, utxos)

	err = store.Update(ctx, func(unit ledger.UnitOfWork) error {
		_, err := unit.GetUnspent(ctx, model.Outpoint{TxID: "tx1", Index: 0})
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUtxoNotFound))
}

func SpendConflict(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	apply(t, store, block1)

	txA := &model.Transaction{ID: "txA", Inputs: []model.Input{{TxID: "tx1", Index: 0}}, Outputs: []model.Output{{Address: "a", Value: 10}}}
	txB := &model.Transaction{ID: "txB", Inputs: []model.Input{{TxID: "tx1", Index: 0}}, Outputs: []model.Output{{Address: "b", Value: 10}}}

	err := store.Update(ctx, func(unit ledger.UnitOfWork) error {
		return ApplyBlock(ctx, unit, model.NewBlock(2, txA, txB))
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUtxoSpent))
	assert.True(t, errors.IsConflictError(err))

	// nothing of the failed unit is visible
	height, err := store.GetBestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), height)
	assert.Equal(t, uint64(10), balance(t, store, "addr1"))
	assert.Equal(t, uint64(0), balance(t, store, "a"))
}

func DuplicateBlock(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	apply(t, store, block1)

	// same height, different id
	other := model.NewBlock(1, &model.Transaction{ID: "other", Outputs: []model.Output{{Address: "x", Value: 1}}})

	err := store.Update(ctx, func(unit ledger.UnitOfWork) error {
		return unit.InsertBlock(ctx, other.ID, other.Height, 1)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBlockExists))

	// same id, different height
	err = store.Update(ctx, func(unit ledger.UnitOfWork) error {
		return unit.InsertBlock(ctx, block1.ID, 2, 15)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBlockExists))
}

func DuplicateTransaction(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	apply(t, store, block1)

	replay := model.NewBlock(2, tx1)

	err := store.Update(ctx, func(unit ledger.UnitOfWork) error {
		return ApplyBlock(ctx, unit, replay)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTxInvalid))

	height, err := store.GetBestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), height)
}

func ReadYourWrites(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	err := store.Update(ctx, func(unit ledger.UnitOfWork) error {
		if err := ApplyBlock(ctx, unit, block1); err != nil {
			return err
		}

		height, err := unit.GetBestHeight(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), height)

		utxo, err := unit.GetUnspent(ctx, model.Outpoint{TxID: "tx1", Index: 0})
		require.NoError(t, err)
		assert.Equal(t, uint64(10), utxo.Value)

		return nil
	})
	require.NoError(t, err)

	height, err := store.GetBestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), height)
}

func ErrorLeavesNoState(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	boom := errors.NewProcessingError("boom")

	err := store.Update(ctx, func(unit ledger.UnitOfWork) error {
		if err := ApplyBlock(ctx, unit, block1); err != nil {
			return err
		}

		return boom
	})
	require.ErrorIs(t, err, boom)

	height, err := store.GetBestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), height)
	assert.Equal(t, uint64(0), balance(t, store, "addr1"))

	_, err = store.GetBlockByHeight(ctx, 1)
	assert.True(t, errors.Is(err, errors.ErrBlockNotFound))
}

func PanicRollsBack(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	require.Panics(t, func() {
		_ = store.Update(ctx, func(unit ledger.UnitOfWork) error {
			if err := ApplyBlock(ctx, unit, block1); err != nil {
				return err
			}

			panic("halfway")
		})
	})

	height, err := store.GetBestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), height)

	// the store is still usable
	apply(t, store, block1)
	assert.Equal(t, uint64(10), balance(t, store, "addr1"))
}

func Rollback(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	apply(t, store, block1, block2, block3)

	assert.Equal(t, uint64(4), balance(t, store, "addr1"))
	assert.Equal(t, uint64(0), balance(t, store, "addr2"))
	assert.Equal(t, uint64(11), balance(t, store, "addr3"))

	// warm the block cache so the rollback has to purge it
	_, err := store.GetBlockByHeight(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, func(unit ledger.UnitOfWork) error {
		return RollbackTo(ctx, unit, 1)
	}))

	height, err := store.GetBestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), height)

	assert.Equal(t, uint64(10), balance(t, store, "addr1"))
	assert.Equal(t, uint64(0), balance(t, store, "addr2"))
	assert.Equal(t, uint64(5), balance(t, store, "addr3"))

	// reverted, not deleted
	utxo, err := store.GetUTXO(ctx, model.Outpoint{TxID: "tx1", Index: 0})
	require.NoError(t, err)
	assert.False(t, utxo.Spent)
	assert.Empty(t, utxo.SpentInTx)

	// deleted, not reverted
	_, err = store.GetUTXO(ctx, model.Outpoint{TxID: "tx2", Index: 0})
	assert.True(t, errors.Is(err, errors.ErrUtxoNotFound))

	_, err = store.GetBlockByHeight(ctx, 2)
	assert.True(t, errors.Is(err, errors.ErrBlockNotFound))

	// a different block can take height 2 and re-spend the restored output
	txAlt := &model.Transaction{ID: "txAlt", Inputs: []model.Input{{TxID: "tx1", Index: 0}}, Outputs: []model.Output{{Address: "addr4", Value: 10}}}
	apply(t, store, model.NewBlock(2, txAlt))

	assert.Equal(t, uint64(0), balance(t, store, "addr1"))
	assert.Equal(t, uint64(10), balance(t, store, "addr4"))
}

func RollbackAndReapply(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	apply(t, store, block1, block2, block3)

	before := map[string]uint64{}
	for _, addr := range []string{"addr1", "addr2", "addr3"} {
		before[addr] = balance(t, store, addr)
	}

	require.NoError(t, store.Update(ctx, func(unit ledger.UnitOfWork) error {
		return RollbackTo(ctx, unit, 0)
	}))

	for addr := range before {
		assert.Equal(t, uint64(0), balance(t, store, addr))
	}

	apply(t, store, block1, block2, block3)

	for addr, b := range before {
		assert.Equal(t, b, balance(t, store, addr), addr)
	}
}

func RollbackToCurrentIsNoop(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	apply(t, store, block1, block2)

	require.NoError(t, store.Update(ctx, func(unit ledger.UnitOfWork) error {
		return RollbackTo(ctx, unit, 2)
	}))

	height, err := store.GetBestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), height)
	assert.Equal(t, uint64(10), balance(t, store, "addr2"))
}

func Supply(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	supplyOf := func() uint64 {
		var supply uint64

		require.NoError(t, store.Update(ctx, func(unit ledger.UnitOfWork) error {
			var err error
			supply, err = unit.GetSupply(ctx)

			return err
		}))

		return supply
	}

	assert.Equal(t, uint64(0), supplyOf())

	apply(t, store, block1, block2)

	// tx2 only moves value
	assert.Equal(t, uint64(15), supplyOf())

	block, err := store.GetBlockByHeight(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), block.Supply)

	mint := &model.Transaction{ID: "mint", Outputs: []model.Output{{Address: "addr5", Value: model.MaxValue - 15}}}
	apply(t, store, model.NewBlock(3, mint))

	assert.Equal(t, uint64(model.MaxValue), supplyOf())
	assert.Equal(t, uint64(model.MaxValue-15), balance(t, store, "addr5"))

	require.NoError(t, store.Update(ctx, func(unit ledger.UnitOfWork) error {
		return RollbackTo(ctx, unit, 1)
	}))

	assert.Equal(t, uint64(15), supplyOf())
}

// NulInKeys stores an address and transaction ids that extend others with a NUL byte.
// Lookups of the shorter strings must not see the records of the longer ones.
func NulInKeys(t *testing.T, store ledger.Store) {
	ctx := context.Background()

	short := &model.Transaction{ID: "a", Outputs: []model.Output{{Address: "a", Value: 5}}}
	long := &model.Transaction{ID: "a\x00bcdefghijklmno", Outputs: []model.Output{{Address: "a\x00bcdefghijklmno", Value: 7}}}

	apply(t, store, model.NewBlock(1, short, long))

	assert.Equal(t, uint64(5), balance(t, store, "a"))
	assert.Equal(t, uint64(7), balance(t, store, "a\x00bcdefghijklmno"))

	utxos, err := store.GetUTXOsByAddress(ctx, "a")
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, "a", utxos[0].TxID)

	// the spender in block 2 has an id that extends the spender in block 3
	spendLong := &model.Transaction{ID: "s\x00a", Inputs: []model.Input{{TxID: long.ID, Index: 0}}, Outputs: []model.Output{{Address: "c", Value: 7}}}
	spendShort := &model.Transaction{ID: "s", Inputs: []model.Input{{TxID: "a", Index: 0}}, Outputs: []model.Output{{Address: "c", Value: 5}}}

	apply(t, store, model.NewBlock(2, spendLong), model.NewBlock(3, spendShort))
	assert.Equal(t, uint64(12), balance(t, store, "c"))

	// rolling back block 3 restores a:0 only, the long output stays spent by block 2
	require.NoError(t, store.Update(ctx, func(unit ledger.UnitOfWork) error {
		return RollbackTo(ctx, unit, 2)
	}))

	assert.Equal(t, uint64(5), balance(t, store, "a"))
	assert.Equal(t, uint64(0), balance(t, store, "a\x00bcdefghijklmno"))
	assert.Equal(t, uint64(7), balance(t, store, "c"))

	utxo, err := store.GetUTXO(ctx, model.Outpoint{TxID: long.ID, Index: 0})
	require.NoError(t, err)
	assert.True(t, utxo.Spent)
	assert.Equal(t, spendLong.ID, utxo.SpentInTx)
}

// StoreTestCase names a backend and how to build a fresh, empty instance of it.
// Skip lists suite tests the backend cannot run, postgres for example rejects NUL in text.
type StoreTestCase struct {
	Name        string
	CreateStore func(t *testing.T) ledger.Store
	Skip        []string
}

// RunAll runs the whole conformance suite against tc, one fresh store per test.
func RunAll(t *testing.T, tc StoreTestCase) {
	suite := []struct {
		name string
		fn   func(t *testing.T, store ledger.Store)
	}{
		{"Empty", Empty},
		{"ApplyAndQuery", ApplyAndQuery},
		{"Spend", Spend},
		{"SpendConflict", SpendConflict},
		{"DuplicateBlock", DuplicateBlock},
		{"DuplicateTransaction", DuplicateTransaction},
		{"ReadYourWrites", ReadYourWrites},
		{"ErrorLeavesNoState", ErrorLeavesNoState},
		{"PanicRollsBack", PanicRollsBack},
		{"Rollback", Rollback},
		{"RollbackAndReapply", RollbackAndReapply},
		{"RollbackToCurrentIsNoop", RollbackToCurrentIsNoop},
		{"Supply", Supply},
		{"NulInKeys", NulInKeys},
	}

	for _, s := range suite {
		t.Run(tc.Name+"/"+s.name, func(t *testing.T) {
			if slices.Contains(tc.Skip, s.name) {
				t.Skipf("%s does not support %s", tc.Name, s.name)
			}

			store := tc.CreateStore(t)

			t.Cleanup(func() {
				_ = store.Close()
			})

			s.fn(t, store)
		})
	}
}
