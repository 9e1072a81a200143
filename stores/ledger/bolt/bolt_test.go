package bolt

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger/tests"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/bsv-blockchain/utxoindexer/util/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func TestBoltConformance(t *testing.T) {
	tests.RunAll(t, tests.StoreTestCase{
		Name: "bolt",
		CreateStore: func(t *testing.T) ledger.Store {
			storeURL, err := url.Parse("bolt:///ledger.db")
			require.NoError(t, err)

			s, err := New(context.Background(), ulogger.TestLogger{}, test.CreateBaseTestSettings(t), storeURL)
			require.NoError(t, err)

			return s
		},
	})
}

func TestOpenLockedFileTimesOut(t *testing.T) {
	ctx := context.Background()
	tSettings := test.CreateBaseTestSettings(t)
	tSettings.LedgerStore.BoltTimeout = 50 * time.Millisecond

	storeURL, err := url.Parse("bolt:///locked.db")
	require.NoError(t, err)

	s, err := New(ctx, ulogger.TestLogger{}, tSettings, storeURL)
	require.NoError(t, err)

	defer func() {
		_ = s.Close()
	}()

	_, err = os.Stat(filepath.Join(tSettings.DataFolder, "locked.db"))
	require.NoError(t, err)

	// bolt holds an exclusive file lock while open
	_, err = New(ctx, ulogger.TestLogger{}, tSettings, storeURL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStorageUnavailable))
}

func TestIndexesFollowSpendAndRollback(t *testing.T) {
	ctx := context.Background()

	storeURL, err := url.Parse("bolt://")
	require.NoError(t, err)

	s, err := New(ctx, ulogger.TestLogger{}, test.CreateBaseTestSettings(t), storeURL)
	require.NoError(t, err)

	defer func() {
		_ = s.Close()
	}()

	tx1 := &model.Transaction{ID: "tx1", Outputs: []model.Output{{Address: "addr1", Value: 10}}}
	tx2 := &model.Transaction{ID: "tx2", Inputs: []model.Input{{TxID: "tx1", Index: 0}}, Outputs: []model.Output{{Address: "addr1", Value: 10}}}

	for _, block := range []*model.Block{model.NewBlock(1, tx1), model.NewBlock(2, tx2)} {
		require.NoError(t, s.Update(ctx, func(unit ledger.UnitOfWork) error {
			return tests.ApplyBlock(ctx, unit, block)
		}))
	}

	utxos, err := s.GetUTXOsByAddress(ctx, "addr1")
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, model.Outpoint{TxID: "tx2", Index: 0}, utxos[0].Outpoint())

	count := func(bucket []byte) (n int) {
		require.NoError(t, s.db.View(func(tx *bolt.Tx) error {
			n = tx.Bucket(bucket).Stats().KeyN
			return nil
		}))

		return n
	}

	assert.Equal(t, 1, count(bucketSpentBy))
	assert.Equal(t, 1, count(bucketAddress))
	assert.Equal(t, 2, count(bucketCreatedAt))

	require.NoError(t, s.Update(ctx, func(unit ledger.UnitOfWork) error {
		return tests.RollbackTo(ctx, unit, 1)
	}))

	assert.Equal(t, 0, count(bucketSpentBy))
	assert.Equal(t, 1, count(bucketAddress))
	assert.Equal(t, 1, count(bucketCreatedAt))
	assert.Equal(t, 1, count(bucketTransactions))
	assert.Equal(t, 1, count(bucketBlockIDs))

	utxos, err = s.GetUTXOsByAddress(ctx, "addr1")
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, model.Outpoint{TxID: "tx1", Index: 0}, utxos[0].Outpoint())
}

func TestOutpointKeys(t *testing.T) {
	mustParse := func(k []byte) model.Outpoint {
		o, err := parseOutpointKey(k)
		require.NoError(t, err)

		return o
	}

	o := model.Outpoint{TxID: "a\x00b", Index: 258}
	assert.Equal(t, o, mustParse(outpointKey(o)))

	u := &model.UTXO{TxID: "tx9", Index: 3, Address: "addr", CreatedAtHeight: 7}

	fromAddress, err := outpointFromAddressKey(addressPrefix("addr"), addressKey(u))
	require.NoError(t, err)
	assert.Equal(t, u.Outpoint(), fromAddress)

	assert.Equal(t, u.Outpoint(), mustParse(createdAtKey(u)[4:]))
	assert.Equal(t, u.Outpoint(), mustParse(spentByKey("tx10", u.Outpoint())[len(spentByPrefix("tx10")):]))

	_, err = parseOutpointKey([]byte{0x05, 'a'})
	assert.True(t, errors.Is(err, errors.ErrStorageError))

	_, err = outpointFromAddressKey(addressPrefix("addr"), addressPrefix("addr"))
	assert.True(t, errors.Is(err, errors.ErrStorageError))
}

func TestKeyPrefixesDoNotOverlap(t *testing.T) {
	short := &model.UTXO{TxID: "tx1", Address: "a", CreatedAtHeight: 1}
	long := &model.UTXO{TxID: "tx2", Address: "a\x00bcdefghijklmno", CreatedAtHeight: 1}

	assert.True(t, hasPrefix(addressKey(short), addressPrefix("a")))
	assert.False(t, hasPrefix(addressKey(long), addressPrefix("a")))

	assert.False(t, hasPrefix(spentByKey("s\x00a", short.Outpoint()), spentByPrefix("s")))
	assert.True(t, hasPrefix(spentByKey("s", short.Outpoint()), spentByPrefix("s")))
}

func TestUnspendAboveChecksSpender(t *testing.T) {
	ctx := context.Background()

	storeURL, err := url.Parse("bolt://")
	require.NoError(t, err)

	s, err := New(ctx, ulogger.TestLogger{}, test.CreateBaseTestSettings(t), storeURL)
	require.NoError(t, err)

	defer func() {
		_ = s.Close()
	}()

	tx1 := &model.Transaction{ID: "tx1", Outputs: []model.Output{{Address: "addr1", Value: 10}}}
	txA := &model.Transaction{ID: "txA", Inputs: []model.Input{{TxID: "tx1", Index: 0}}, Outputs: []model.Output{{Address: "addr2", Value: 10}}}
	txB := &model.Transaction{ID: "txB", Outputs: []model.Output{{Address: "addr3", Value: 1}}}

	for _, block := range []*model.Block{model.NewBlock(1, tx1), model.NewBlock(2, txA), model.NewBlock(3, txB)} {
		require.NoError(t, s.Update(ctx, func(unit ledger.UnitOfWork) error {
			return tests.ApplyBlock(ctx, unit, block)
		}))
	}

	// an index entry claiming txB spent tx1:0, which txA did
	require.NoError(t, s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSpentBy).Put(spentByKey("txB", model.Outpoint{TxID: "tx1", Index: 0}), []byte{})
	}))

	err = s.Update(ctx, func(unit ledger.UnitOfWork) error {
		return tests.RollbackTo(ctx, unit, 2)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStorageError))

	utxo, err := s.GetUTXO(ctx, model.Outpoint{TxID: "tx1", Index: 0})
	require.NoError(t, err)
	assert.True(t, utxo.Spent)
	assert.Equal(t, "txA", utxo.SpentInTx)

	height, err := s.GetBestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), height)
}
