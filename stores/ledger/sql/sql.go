// Package sql implements the ledger store on PostgreSQL and SQLite.
//
// The store keeps three tables:
//   - blocks: one row per accepted block, unique on height, with the running supply
//   - transactions: one row per accepted transaction, referencing its block
//   - utxos: one row per output, with its spent state and creation height
//
// Block application and rollback run inside a single database transaction opened by
// Update. On postgres the rows read for spending are locked with FOR UPDATE, and the
// unique index on blocks.height makes the loser of two concurrent submissions at the
// same height fail with a BLOCK_EXISTS error.
package sql

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/settings"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/bsv-blockchain/utxoindexer/util"
	"github.com/bsv-blockchain/utxoindexer/util/usql"
)

type Store struct {
	logger     ulogger.Logger
	db         *usql.DB
	engine     util.SQLEngine
	dbTimeout  time.Duration
	blockCache *blockCache
}

func New(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (*Store, error) {
	initPrometheusMetrics()

	logger = logger.New("sqlLedger")

	db, err := util.InitSQLDB(logger, storeURL, tSettings)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to init sql db", err)
	}

	engine := util.SQLEngine(storeURL.Scheme)

	switch engine {
	case util.Postgres:
		if err = createPostgresSchema(ctx, db); err != nil {
			return nil, errors.NewStorageError("failed to create postgres schema", err)
		}

	case util.Sqlite, util.SqliteMemory:
		if err = createSqliteSchema(ctx, db); err != nil {
			return nil, errors.NewStorageError("failed to create sqlite schema", err)
		}

	default:
		return nil, errors.NewConfigurationError("unknown database engine: %s", storeURL.Scheme)
	}

	return newStore(logger, db, engine, tSettings), nil
}

func newStore(logger ulogger.Logger, db *usql.DB, engine util.SQLEngine, tSettings *settings.Settings) *Store {
	return &Store{
		logger:     logger,
		db:         db,
		engine:     engine,
		dbTimeout:  tSettings.LedgerStore.DBTimeout,
		blockCache: newBlockCache(tSettings.LedgerStore.BlockCacheTTL),
	}
}

func (s *Store) GetDB() *usql.DB {
	return s.db
}

func (s *Store) GetDBEngine() util.SQLEngine {
	return s.engine
}

func (s *Store) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	details := fmt.Sprintf("SQL Engine is %s", s.engine)

	if checkLiveness {
		return http.StatusOK, details, nil
	}

	var num int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&num); err != nil {
		return http.StatusFailedDependency, details, errors.NewStorageUnavailableError("sql ledger health check failed", err)
	}

	return http.StatusOK, details, nil
}

func (s *Store) Close() error {
	s.blockCache.stop()
	return s.db.Close()
}

// ResetResponseCache drops every cached block lookup.
func (s *Store) ResetResponseCache() {
	s.blockCache.deleteAll()
}

func (s *Store) Update(ctx context.Context, fn func(unit ledger.UnitOfWork) error) error {
	ctx, cancelTimeout := context.WithTimeout(ctx, s.dbTimeout)
	defer cancelTimeout()

	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		prometheusLedgerErrors.WithLabelValues("Update", "begin").Inc()
		return errors.NewStorageUnavailableError("[Update] failed to begin transaction", err)
	}

	// a no-op once the transaction has been committed, otherwise it discards every write of the unit
	defer func() {
		_ = txn.Rollback()
	}()

	u := &unit{
		engine: s.engine,
		txn:    txn,
	}

	if err = fn(u); err != nil {
		return err
	}

	if err = txn.Commit(); err != nil {
		prometheusLedgerErrors.WithLabelValues("Update", "commit").Inc()
		return errors.NewStorageError("[Update] failed to commit transaction", err)
	}

	prometheusLedgerCommit.Inc()

	if u.blocksDeleted {
		s.ResetResponseCache()
	}

	return nil
}

func createPostgresSchema(ctx context.Context, db *usql.DB) error {
	if _, err := db.ExecContext(ctx, `
      CREATE TABLE IF NOT EXISTS blocks (
	     id          TEXT PRIMARY KEY
	    ,height      BIGINT NOT NULL
	    ,supply      BIGINT NOT NULL DEFAULT 0 CHECK (supply >= 0)
	    ,inserted_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	  );
	`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create blocks table", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS ux_blocks_height ON blocks (height);`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create ux_blocks_height index", err)
	}

	if _, err := db.ExecContext(ctx, `
      CREATE TABLE IF NOT EXISTS transactions (
	     id       TEXT PRIMARY KEY
	    ,block_id TEXT NOT NULL REFERENCES blocks(id)
	    ,position BIGINT NOT NULL
	  );
	`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create transactions table", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_transactions_block_id ON transactions (block_id, position);`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create idx_transactions_block_id index", err)
	}

	// spent_in_tx is NULL for unspent outputs
	if _, err := db.ExecContext(ctx, `
      CREATE TABLE IF NOT EXISTS utxos (
	     tx_id             TEXT NOT NULL REFERENCES transactions(id)
	    ,output_index      BIGINT NOT NULL
	    ,address           TEXT NOT NULL
	    ,value             BIGINT NOT NULL CHECK (value >= 0)
	    ,spent             BOOLEAN NOT NULL DEFAULT FALSE
	    ,spent_in_tx       TEXT REFERENCES transactions(id)
	    ,created_at_height BIGINT NOT NULL
	    ,PRIMARY KEY (tx_id, output_index)
	    ,CHECK (spent = (spent_in_tx IS NOT NULL))
	  );
	`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create utxos table", err)
	}

	return createUtxoIndexes(ctx, db)
}

func createSqliteSchema(ctx context.Context, db *usql.DB) error {
	if _, err := db.ExecContext(ctx, `
      CREATE TABLE IF NOT EXISTS blocks (
	     id          TEXT PRIMARY KEY
	    ,height      BIGINT NOT NULL
	    ,supply      BIGINT NOT NULL DEFAULT 0 CHECK (supply >= 0)
	    ,inserted_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	  );
	`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create blocks table", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS ux_blocks_height ON blocks (height);`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create ux_blocks_height index", err)
	}

	if _, err := db.ExecContext(ctx, `
      CREATE TABLE IF NOT EXISTS transactions (
	     id       TEXT PRIMARY KEY
	    ,block_id TEXT NOT NULL REFERENCES blocks(id)
	    ,position BIGINT NOT NULL
	  );
	`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create transactions table", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_transactions_block_id ON transactions (block_id, position);`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create idx_transactions_block_id index", err)
	}

	if _, err := db.ExecContext(ctx, `
      CREATE TABLE IF NOT EXISTS utxos (
	     tx_id             TEXT NOT NULL REFERENCES transactions(id)
	    ,output_index      BIGINT NOT NULL
	    ,address           TEXT NOT NULL
	    ,value             BIGINT NOT NULL CHECK (value >= 0)
	    ,spent             BOOLEAN NOT NULL DEFAULT FALSE
	    ,spent_in_tx       TEXT REFERENCES transactions(id)
	    ,created_at_height BIGINT NOT NULL
	    ,PRIMARY KEY (tx_id, output_index)
	    ,CHECK (spent = (spent_in_tx IS NOT NULL))
	  );
	`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create utxos table", err)
	}

	return createUtxoIndexes(ctx, db)
}

// createUtxoIndexes creates the secondary lookups used by balance queries and rollbacks.
// The statements are valid on both engines.
func createUtxoIndexes(ctx context.Context, db *usql.DB) error {
	indexes := []struct {
		name string
		ddl  string
	}{
		{"idx_utxos_address_unspent", `CREATE INDEX IF NOT EXISTS idx_utxos_address_unspent ON utxos (address) WHERE spent = FALSE;`},
		{"idx_utxos_spent_in_tx", `CREATE INDEX IF NOT EXISTS idx_utxos_spent_in_tx ON utxos (spent_in_tx) WHERE spent_in_tx IS NOT NULL;`},
		{"idx_utxos_created_at_height", `CREATE INDEX IF NOT EXISTS idx_utxos_created_at_height ON utxos (created_at_height);`},
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx.ddl); err != nil {
			_ = db.Close()
			return errors.NewStorageError("could not create %s index", idx.name, err)
		}
	}

	return nil
}
