package bolt

import (
	"context"
	"encoding/json"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	bolt "go.etcd.io/bbolt"
)

// unit is the ledger.UnitOfWork of a single bbolt read-write transaction.
type unit struct {
	tx *bolt.Tx
}

func (u *unit) GetBestHeight(_ context.Context) (uint32, error) {
	return bestHeight(u.tx), nil
}

func (u *unit) GetUnspent(_ context.Context, outpoint model.Outpoint) (*model.UTXO, error) {
	utxo, err := getUTXO(u.tx, outpoint)
	if err != nil {
		return nil, err
	}

	if utxo == nil || utxo.Spent {
		return nil, errors.New(errors.ERR_UTXO_NOT_FOUND, "[GetUnspent] utxo %s not found or spent", outpoint)
	}

	prometheusBoltGet.Inc()

	return utxo, nil
}

func (u *unit) GetSupply(_ context.Context) (uint64, error) {
	best := bestHeight(u.tx)
	if best == 0 {
		return 0, nil
	}

	block, err := getBlock(u.tx, best)
	if err != nil || block == nil {
		return 0, err
	}

	return block.Supply, nil
}

func (u *unit) InsertBlock(_ context.Context, blockID string, height uint32, supply uint64) error {
	blocks := u.tx.Bucket(bucketBlocks)
	blockIDs := u.tx.Bucket(bucketBlockIDs)

	if blocks.Get(heightKey(height)) != nil || blockIDs.Get([]byte(blockID)) != nil {
		return errors.NewBlockExistsError("[InsertBlock] block %s or height %d already exists", blockID, height)
	}

	if err := u.putJSON(blocks, heightKey(height), &model.BlockRecord{ID: blockID, Height: height, TxIDs: []string{}, Supply: supply}); err != nil {
		return err
	}

	return u.put(blockIDs, []byte(blockID), heightKey(height))
}

func (u *unit) InsertTransaction(_ context.Context, blockID string, height uint32, position int, tx *model.Transaction) error {
	transactions := u.tx.Bucket(bucketTransactions)

	if transactions.Get([]byte(tx.ID)) != nil {
		return errors.NewInvalidTxError(tx.ID, "transaction already exists in the ledger")
	}

	block, err := getBlock(u.tx, height)
	if err != nil {
		return err
	}

	if block == nil || block.ID != blockID {
		return errors.NewStorageError("[InsertTransaction] block %s is not stored at height %d", blockID, height)
	}

	for len(block.TxIDs) <= position {
		block.TxIDs = append(block.TxIDs, "")
	}

	block.TxIDs[position] = tx.ID

	if err = u.putJSON(u.tx.Bucket(bucketBlocks), heightKey(height), block); err != nil {
		return err
	}

	return u.putJSON(transactions, []byte(tx.ID), &txRecord{BlockID: blockID, Height: height, Position: position})
}

func (u *unit) Spend(_ context.Context, outpoint model.Outpoint, spendingTxID string) error {
	utxo, err := getUTXO(u.tx, outpoint)
	if err != nil {
		return err
	}

	if utxo == nil || utxo.Spent {
		return errors.NewUtxoSpentError("[Spend] utxo %s is not unspent, cannot be spent by %s", outpoint, spendingTxID)
	}

	if err = u.delete(u.tx.Bucket(bucketAddress), addressKey(utxo)); err != nil {
		return err
	}

	utxo.Spent = true
	utxo.SpentInTx = spendingTxID

	if err = u.putJSON(u.tx.Bucket(bucketUtxos), outpointKey(outpoint), utxo); err != nil {
		return err
	}

	if err = u.put(u.tx.Bucket(bucketSpentBy), spentByKey(spendingTxID, outpoint), nil); err != nil {
		return err
	}

	prometheusBoltSpend.Inc()

	return nil
}

func (u *unit) CreateUTXO(_ context.Context, utxo *model.UTXO) error {
	if utxo.Value > model.MaxValue {
		return errors.NewInvalidTxError(utxo.TxID, "output %d value %d exceeds the maximum of %d", utxo.Index, utxo.Value, uint64(model.MaxValue))
	}

	utxos := u.tx.Bucket(bucketUtxos)
	key := outpointKey(utxo.Outpoint())

	if utxos.Get(key) != nil {
		return errors.NewInvalidTxError(utxo.TxID, "output %d already exists", utxo.Index)
	}

	if u.tx.Bucket(bucketTransactions).Get([]byte(utxo.TxID)) == nil {
		return errors.NewStorageError("[CreateUTXO] transaction %s of utxo %s is not stored", utxo.TxID, utxo.Outpoint())
	}

	record := *utxo
	record.Spent = false
	record.SpentInTx = ""

	if err := u.putJSON(utxos, key, &record); err != nil {
		return err
	}

	if err := u.put(u.tx.Bucket(bucketAddress), addressKey(&record), nil); err != nil {
		return err
	}

	if err := u.put(u.tx.Bucket(bucketCreatedAt), createdAtKey(&record), nil); err != nil {
		return err
	}

	prometheusBoltCreate.Inc()

	return nil
}

func (u *unit) UnspendAbove(_ context.Context, height uint32) (int64, error) {
	txIDs, err := u.txIDsAbove(height)
	if err != nil {
		return 0, err
	}

	var affected int64

	spentBy := u.tx.Bucket(bucketSpentBy)

	for _, txID := range txIDs {
		prefix := spentByPrefix(txID)

		var keys [][]byte

		c := spentBy.Cursor()
		for k, _ := c.Seek(prefix); hasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}

		for _, k := range keys {
			outpoint, err := parseOutpointKey(k[len(prefix):])
			if err != nil {
				return 0, err
			}

			utxo, err := getUTXO(u.tx, outpoint)
			if err != nil {
				return 0, err
			}

			// outputs created above height are deleted instead
			if utxo == nil || utxo.CreatedAtHeight > height {
				continue
			}

			if !utxo.Spent || utxo.SpentInTx != txID {
				return 0, errors.NewStorageError("[UnspendAbove] spent-by index of %s points to %s, which is not spent by it", txID, outpoint)
			}

			utxo.Spent = false
			utxo.SpentInTx = ""

			if err = u.putJSON(u.tx.Bucket(bucketUtxos), outpointKey(outpoint), utxo); err != nil {
				return 0, err
			}

			if err = u.put(u.tx.Bucket(bucketAddress), addressKey(utxo), nil); err != nil {
				return 0, err
			}

			if err = u.delete(spentBy, k); err != nil {
				return 0, err
			}

			affected++
		}
	}

	prometheusBoltUnspend.Add(float64(affected))

	return affected, nil
}

func (u *unit) DeleteUTXOsAbove(_ context.Context, height uint32) (int64, error) {
	if height == ^uint32(0) {
		return 0, nil
	}

	createdAt := u.tx.Bucket(bucketCreatedAt)

	// collect first, bbolt cursors must not be used across deletes
	var keys [][]byte

	c := createdAt.Cursor()
	for k, _ := c.Seek(heightKey(height + 1)); k != nil; k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}

	for _, k := range keys {
		outpoint, err := parseOutpointKey(k[4:])
		if err != nil {
			return 0, err
		}

		utxo, err := getUTXO(u.tx, outpoint)
		if err != nil {
			return 0, err
		}

		if utxo != nil {
			if utxo.Spent {
				err = u.delete(u.tx.Bucket(bucketSpentBy), spentByKey(utxo.SpentInTx, outpoint))
			} else {
				err = u.delete(u.tx.Bucket(bucketAddress), addressKey(utxo))
			}

			if err != nil {
				return 0, err
			}

			if err = u.delete(u.tx.Bucket(bucketUtxos), outpointKey(outpoint)); err != nil {
				return 0, err
			}
		}

		if err = u.delete(createdAt, k); err != nil {
			return 0, err
		}
	}

	prometheusBoltDelete.Add(float64(len(keys)))

	return int64(len(keys)), nil
}

func (u *unit) DeleteTransactionsAbove(_ context.Context, height uint32) (int64, error) {
	txIDs, err := u.txIDsAbove(height)
	if err != nil {
		return 0, err
	}

	transactions := u.tx.Bucket(bucketTransactions)

	for _, txID := range txIDs {
		if err = u.delete(transactions, []byte(txID)); err != nil {
			return 0, err
		}
	}

	return int64(len(txIDs)), nil
}

func (u *unit) DeleteBlocksAbove(_ context.Context, height uint32) (int64, error) {
	blocks, err := u.blocksAbove(height)
	if err != nil {
		return 0, err
	}

	for _, block := range blocks {
		if err = u.delete(u.tx.Bucket(bucketBlocks), heightKey(block.Height)); err != nil {
			return 0, err
		}

		if err = u.delete(u.tx.Bucket(bucketBlockIDs), []byte(block.ID)); err != nil {
			return 0, err
		}
	}

	return int64(len(blocks)), nil
}

func (u *unit) blocksAbove(height uint32) ([]*model.BlockRecord, error) {
	if height == ^uint32(0) {
		return nil, nil
	}

	var blocks []*model.BlockRecord

	c := u.tx.Bucket(bucketBlocks).Cursor()
	for k, v := c.Seek(heightKey(height + 1)); k != nil; k, v = c.Next() {
		var block model.BlockRecord
		if err := json.Unmarshal(v, &block); err != nil {
			return nil, errors.NewStorageError("failed to decode block at height %d", parseHeight(k), err)
		}

		blocks = append(blocks, &block)
	}

	return blocks, nil
}

func (u *unit) txIDsAbove(height uint32) ([]string, error) {
	blocks, err := u.blocksAbove(height)
	if err != nil {
		return nil, err
	}

	var txIDs []string
	for _, block := range blocks {
		txIDs = append(txIDs, block.TxIDs...)
	}

	return txIDs, nil
}

func (u *unit) putJSON(b *bolt.Bucket, key []byte, v interface{}) error {
	value, err := json.Marshal(v)
	if err != nil {
		return errors.NewProcessingError("failed to encode %T", v, err)
	}

	return u.put(b, key, value)
}

func (u *unit) put(b *bolt.Bucket, key, value []byte) error {
	if value == nil {
		value = []byte{}
	}

	if err := b.Put(key, value); err != nil {
		prometheusBoltErrors.WithLabelValues("put", "bucket").Inc()
		return errors.NewStorageError("failed to write key %x", key, err)
	}

	return nil
}

func (u *unit) delete(b *bolt.Bucket, key []byte) error {
	if err := b.Delete(key); err != nil {
		prometheusBoltErrors.WithLabelValues("delete", "bucket").Inc()
		return errors.NewStorageError("failed to delete key %x", key, err)
	}

	return nil
}
