package ledger

import (
	"context"
	"strconv"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/bsv-blockchain/utxoindexer/services/validator"
	"github.com/bsv-blockchain/utxoindexer/settings"
	ledgerstore "github.com/bsv-blockchain/utxoindexer/stores/ledger"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/bsv-blockchain/utxoindexer/util/health"
	"github.com/bsv-blockchain/utxoindexer/util/tracing"
)

// Ledger owns the store handle. Writers coordinate through store units of work only,
// there is no in-process locking.
type Ledger struct {
	logger    ulogger.Logger
	settings  *settings.Settings
	store     ledgerstore.Store
	validator validator.Interface
}

func New(logger ulogger.Logger, tSettings *settings.Settings, store ledgerstore.Store, opts ...validator.Option) *Ledger {
	initPrometheusMetrics()

	return &Ledger{
		logger:    logger,
		settings:  tSettings,
		store:     store,
		validator: validator.New(logger, opts...),
	}
}

func (l *Ledger) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	checks := []health.Check{
		{Name: "LedgerStore", Check: l.store.Health},
	}

	return health.CheckAll(ctx, checkLiveness, checks)
}

func (l *Ledger) SubmitBlock(ctx context.Context, block *model.Block) (height uint32, err error) {
	if block == nil {
		return 0, errors.NewInvalidArgumentError("[SubmitBlock] block is required")
	}

	ctx, _, deferFn := tracing.Tracer("ledger").Start(ctx, "SubmitBlock",
		tracing.WithTag("height", strconv.FormatUint(uint64(block.Height), 10)),
		tracing.WithHistogram(prometheusSubmitBlock),
		tracing.WithLogMessage(l.logger, "[SubmitBlock][%s] submitting block at height %d with %d transactions", block.ID, block.Height, len(block.Transactions)),
	)

	defer func() {
		deferFn(err)
	}()

	// validation reads through the unit so the checked outputs cannot be spent by another
	// writer before the block is applied
	err = l.store.Update(ctx, func(unit ledgerstore.UnitOfWork) error {
		current, err := unit.GetBestHeight(ctx)
		if err != nil {
			return err
		}

		if err = l.validator.Validate(ctx, block, current, unit.GetUnspent); err != nil {
			return err
		}

		supply, err := unit.GetSupply(ctx)
		if err != nil {
			return err
		}

		if supply, err = validator.CheckSupply(block, supply); err != nil {
			return err
		}

		return apply(ctx, unit, block, supply)
	})
	if err != nil {
		prometheusBlocksRejected.WithLabelValues(reason(err)).Inc()

		if errors.IsStateError(err) && !errors.IsConflictError(err) {
			l.logger.Errorf("[SubmitBlock][%s] failed to apply block at height %d: %v", block.ID, block.Height, err)
		}

		return 0, err
	}

	prometheusBlocksAccepted.Inc()
	prometheusBlockTxs.Observe(float64(len(block.Transactions)))

	return block.Height, nil
}

func (l *Ledger) RollbackTo(ctx context.Context, height int64) (newHeight uint32, err error) {
	ctx, _, deferFn := tracing.Tracer("ledger").Start(ctx, "RollbackTo",
		tracing.WithTag("height", strconv.FormatInt(height, 10)),
		tracing.WithHistogram(prometheusRollbackTo),
		tracing.WithLogMessage(l.logger, "[RollbackTo] rolling back to height %d", height),
	)

	defer func() {
		deferFn(err)
	}()

	var res rollbackResult

	err = l.store.Update(ctx, func(unit ledgerstore.UnitOfWork) error {
		current, err := unit.GetBestHeight(ctx)
		if err != nil {
			return err
		}

		if height < 0 || height > int64(current) {
			return errors.NewInvalidRollbackTargetError(height, current)
		}

		newHeight = uint32(height)

		if newHeight == current {
			return nil
		}

		res, err = rollback(ctx, unit, newHeight)

		return err
	})
	if err != nil {
		if errors.IsStateError(err) {
			l.logger.Errorf("[RollbackTo] failed to roll back to height %d: %v", height, err)
		}

		return 0, err
	}

	if res.deletedBlock > 0 {
		prometheusRollbacks.Inc()
		prometheusRolledBackTxs.Observe(float64(res.deletedTxs))

		l.logger.Infof("[RollbackTo] removed %d blocks, %d transactions and %d utxos, restored %d spent utxos",
			res.deletedBlock, res.deletedTxs, res.deletedUTXOs, res.unspent)
	}

	return newHeight, nil
}

func (l *Ledger) QueryBalance(ctx context.Context, address string) (uint64, error) {
	prometheusBalanceQueries.Inc()

	return l.store.GetBalance(ctx, address)
}

func (l *Ledger) GetBestHeight(ctx context.Context) (uint32, error) {
	return l.store.GetBestHeight(ctx)
}

func (l *Ledger) GetBlock(ctx context.Context, height uint32) (*model.BlockRecord, error) {
	return l.store.GetBlockByHeight(ctx, height)
}

func (l *Ledger) GetUTXOs(ctx context.Context, address string) ([]*model.UTXO, error) {
	return l.store.GetUTXOsByAddress(ctx, address)
}

func (l *Ledger) GetUTXO(ctx context.Context, outpoint model.Outpoint) (*model.UTXO, error) {
	return l.store.GetUTXO(ctx, outpoint)
}

// reason is the metrics label of a rejection: the error code name, or UNKNOWN.
func reason(err error) string {
	return errors.CodeOf(err).String()
}
