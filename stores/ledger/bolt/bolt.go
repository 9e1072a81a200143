// Package bolt implements the ledger store on an embedded bbolt file.
//
// Records are kept as JSON values in one bucket per record set, next to index buckets
// whose keys carry all the information and whose values are empty. Update maps onto a
// single bbolt read-write transaction, which bbolt serializes across writers.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"math/bits"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/bsv-blockchain/utxoindexer/settings"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	bolt "go.etcd.io/bbolt"
)

type Store struct {
	logger ulogger.Logger
	db     *bolt.DB
	path   string
}

// New opens (or creates) the bolt file named by the path of storeURL inside the data folder.
func New(_ context.Context, logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (*Store, error) {
	initPrometheusMetrics()

	logger = logger.New("boltLedger")

	name := strings.TrimPrefix(storeURL.Path, "/")
	if name == "" {
		name = "ledger.db"
	}

	folder := tSettings.DataFolder
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, errors.NewStorageUnavailableError("failed to create data folder %s", folder, err)
	}

	path := filepath.Join(folder, name)

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: tSettings.LedgerStore.BoltTimeout})
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to open bolt db %s", path, err)
	}

	if err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		_ = db.Close()
		return nil, errors.NewStorageError("failed to create bolt buckets", err)
	}

	logger.Infof("Using bolt DB: %s", path)

	return &Store{
		logger: logger,
		db:     db,
		path:   path,
	}, nil
}

func (s *Store) Health(_ context.Context, checkLiveness bool) (int, string, error) {
	details := fmt.Sprintf("bolt DB at %s", s.path)

	if checkLiveness {
		return http.StatusOK, details, nil
	}

	if err := s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketBlocks) == nil {
			return errors.NewStorageError("bucket %s missing", bucketBlocks)
		}

		return nil
	}); err != nil {
		return http.StatusFailedDependency, details, errors.NewStorageUnavailableError("bolt ledger health check failed", err)
	}

	return http.StatusOK, details, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Update(ctx context.Context, fn func(unit ledger.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return errors.NewContextCanceledError("[Update] context done before the unit started", err)
	}

	var fnErr error

	// bbolt rolls the transaction back when fn returns an error or panics
	err := s.db.Update(func(tx *bolt.Tx) error {
		fnErr = fn(&unit{tx: tx})
		return fnErr
	})

	if fnErr != nil {
		return fnErr
	}

	if err != nil {
		prometheusBoltErrors.WithLabelValues("Update", "commit").Inc()
		return errors.NewStorageError("[Update] failed to commit bolt transaction", err)
	}

	prometheusBoltCommit.Inc()

	return nil
}

func (s *Store) GetBestHeight(_ context.Context) (height uint32, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		height = bestHeight(tx)
		return nil
	})

	return height, err
}

func (s *Store) GetUTXO(_ context.Context, outpoint model.Outpoint) (utxo *model.UTXO, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		utxo, err = getUTXO(tx, outpoint)
		return err
	})
	if err != nil {
		return nil, err
	}

	if utxo == nil {
		return nil, errors.New(errors.ERR_UTXO_NOT_FOUND, "[GetUTXO] utxo %s not found", outpoint)
	}

	prometheusBoltGet.Inc()

	return utxo, nil
}

func (s *Store) GetUTXOsByAddress(_ context.Context, address string) ([]*model.UTXO, error) {
	utxos := make([]*model.UTXO, 0)

	err := s.db.View(func(tx *bolt.Tx) error {
		return forEachUnspent(tx, address, func(u *model.UTXO) error {
			utxos = append(utxos, u)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	prometheusBoltGet.Inc()

	return utxos, nil
}

func (s *Store) GetBalance(_ context.Context, address string) (uint64, error) {
	var balance uint64

	err := s.db.View(func(tx *bolt.Tx) error {
		return forEachUnspent(tx, address, func(u *model.UTXO) error {
			var carry uint64

			// cannot happen while the ledger supply stays within model.MaxValue
			if balance, carry = bits.Add64(balance, u.Value, 0); carry != 0 {
				return errors.NewStorageError("[GetBalance] balance of %s overflows", address)
			}

			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	prometheusBoltBalance.Inc()

	return balance, nil
}

func (s *Store) GetBlockByHeight(_ context.Context, height uint32) (block *model.BlockRecord, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		block, err = getBlock(tx, height)
		return err
	})
	if err != nil {
		return nil, err
	}

	if block == nil {
		return nil, errors.NewBlockNotFoundError("[GetBlockByHeight] no block at height %d", height)
	}

	return block, nil
}

func bestHeight(tx *bolt.Tx) uint32 {
	k, _ := tx.Bucket(bucketBlocks).Cursor().Last()
	if k == nil {
		return 0
	}

	return parseHeight(k)
}

// getUTXO returns nil without error when the outpoint is unknown.
func getUTXO(tx *bolt.Tx, outpoint model.Outpoint) (*model.UTXO, error) {
	v := tx.Bucket(bucketUtxos).Get(outpointKey(outpoint))
	if v == nil {
		return nil, nil
	}

	var u model.UTXO
	if err := json.Unmarshal(v, &u); err != nil {
		return nil, errors.NewStorageError("failed to decode utxo %s", outpoint, err)
	}

	return &u, nil
}

func getBlock(tx *bolt.Tx, height uint32) (*model.BlockRecord, error) {
	v := tx.Bucket(bucketBlocks).Get(heightKey(height))
	if v == nil {
		return nil, nil
	}

	var block model.BlockRecord
	if err := json.Unmarshal(v, &block); err != nil {
		return nil, errors.NewStorageError("failed to decode block at height %d", height, err)
	}

	if block.TxIDs == nil {
		block.TxIDs = make([]string, 0)
	}

	return &block, nil
}

// forEachUnspent walks the address index, which holds unspent outputs only, in creation order.
func forEachUnspent(tx *bolt.Tx, address string, fn func(u *model.UTXO) error) error {
	prefix := addressPrefix(address)
	c := tx.Bucket(bucketAddress).Cursor()

	for k, _ := c.Seek(prefix); hasPrefix(k, prefix); k, _ = c.Next() {
		outpoint, err := outpointFromAddressKey(prefix, k)
		if err != nil {
			return err
		}

		u, err := getUTXO(tx, outpoint)
		if err != nil {
			return err
		}

		if u == nil {
			return errors.NewStorageError("address index of %s points to missing utxo %s", address, outpoint)
		}

		if err = fn(u); err != nil {
			return err
		}
	}

	return nil
}
