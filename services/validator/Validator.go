// Package validator decides whether a block may be appended to the ledger.
//
// Validation is read-only: committed outputs are resolved through a LookupFunc, and the
// effects of earlier transactions in the same block are tracked in memory.
package validator

import (
	"context"
	"math/bits"
	"strings"
	"unicode"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/bsv-blockchain/utxoindexer/util/tracing"
)

// LookupFunc resolves a committed unspent output. It returns an ERR_UTXO_NOT_FOUND error,
// or a nil record, when the output does not exist or is spent.
type LookupFunc func(ctx context.Context, outpoint model.Outpoint) (*model.UTXO, error)

type Interface interface {
	Validate(ctx context.Context, block *model.Block, currentHeight uint32, lookup LookupFunc) error
}

type Validator struct {
	logger  ulogger.Logger
	options *Options
}

func New(logger ulogger.Logger, opts ...Option) *Validator {
	initPrometheusMetrics()

	return &Validator{
		logger:  logger,
		options: ProcessOptions(opts...),
	}
}

// Validate runs the admission checks in order and returns the first failure:
// height contiguity, block id integrity, transaction structure, then per transaction
// input availability and balance.
func (v *Validator) Validate(ctx context.Context, block *model.Block, currentHeight uint32, lookup LookupFunc) (err error) {
	ctx, _, deferFn := tracing.Tracer("validator").Start(ctx, "Validate",
		tracing.WithHistogram(prometheusValidateBlock),
		tracing.WithDebugLogMessage(v.logger, "[Validate][%s] validating block at height %d with %d transactions", block.ID, block.Height, len(block.Transactions)),
	)

	defer func() {
		if err != nil {
			var tErr *errors.Error
			if errors.As(err, &tErr) {
				prometheusInvalidBlocks.WithLabelValues(tErr.Code().String()).Inc()
			}
		}

		deferFn(err)
	}()

	if block.Height != currentHeight+1 || currentHeight == ^uint32(0) {
		return errors.NewInvalidHeightError(currentHeight+1, block.Height)
	}

	if expected := model.ComputeBlockID(block.Height, block.TxIDs()); block.ID != expected {
		return errors.NewInvalidBlockIDError(expected, block.ID)
	}

	if err = checkStructure(block); err != nil {
		return err
	}

	view := newUtxoView(lookup)

	for _, tx := range block.Transactions {
		prometheusValidateTransactions.Inc()

		if err = v.checkTransaction(ctx, view, tx); err != nil {
			return err
		}

		for _, input := range tx.Inputs {
			view.spend(input.Outpoint())
		}

		if v.options.allowIntraBlockSpends {
			view.addOutputs(tx, block.Height)
		}
	}

	return nil
}

// checkTransaction resolves the inputs of tx against view and enforces exact balance for
// transactions that have inputs.
func (v *Validator) checkTransaction(ctx context.Context, view *utxoView, tx *model.Transaction) error {
	var (
		inputSum uint64
		carry    uint64
		seen     = make(map[model.Outpoint]struct{}, len(tx.Inputs))
	)

	for _, input := range tx.Inputs {
		outpoint := input.Outpoint()

		// a repeated input is a spend of an output this transaction already consumed
		if _, ok := seen[outpoint]; ok {
			return errors.NewUtxoNotFoundError(tx.ID, input.TxID, input.Index)
		}

		seen[outpoint] = struct{}{}

		utxo, err := view.fetch(ctx, outpoint)
		if err != nil {
			return errors.NewProcessingError("[checkTransaction][%s] failed to look up %s", tx.ID, outpoint, err)
		}

		if utxo == nil {
			return errors.NewUtxoNotFoundError(tx.ID, input.TxID, input.Index)
		}

		inputSum, carry = bits.Add64(inputSum, utxo.Value, carry)
		if carry != 0 {
			return errors.NewInvalidTxError(tx.ID, "input total overflows")
		}
	}

	if tx.IsValueCreation() {
		return nil
	}

	// checkStructure has already rejected overflowing outputs
	outputSum, _ := tx.OutputSum()

	if inputSum != outputSum {
		return errors.NewUnbalancedTxError(tx.ID, inputSum, outputSum)
	}

	return nil
}

// CheckSupply returns the supply after block, given the supply before it. Only value-creation
// transactions add to the supply, balanced transactions move value without changing the
// total. Keeping the supply at or below model.MaxValue bounds every address balance and
// every stored sum.
func CheckSupply(block *model.Block, supply uint64) (uint64, error) {
	for _, tx := range block.Transactions {
		if !tx.IsValueCreation() {
			continue
		}

		created, ok := tx.OutputSum()
		if !ok {
			return 0, errors.NewInvalidTxError(tx.ID, "output total is too high")
		}

		next, carry := bits.Add64(supply, created, 0)
		if carry != 0 || next > model.MaxValue {
			return 0, errors.NewInvalidTxError(tx.ID, "creating %d would take the ledger supply of %d over %d", created, supply, uint64(model.MaxValue))
		}

		supply = next
	}

	return supply, nil
}

// checkStructure rejects transactions that cannot be stored, independent of ledger state.
func checkStructure(block *model.Block) error {
	ids := make(map[string]struct{}, len(block.Transactions))

	for position, tx := range block.Transactions {
		if tx == nil {
			return errors.NewInvalidTxError("", "transaction %d is missing", position)
		}

		if tx.ID == "" {
			return errors.NewInvalidTxError(tx.ID, "transaction %d has an empty id", position)
		}

		if hasControl(tx.ID) {
			return errors.NewInvalidTxError(tx.ID, "transaction %d id contains control characters", position)
		}

		if _, ok := ids[tx.ID]; ok {
			return errors.NewInvalidTxError(tx.ID, "duplicate transaction id in block")
		}

		ids[tx.ID] = struct{}{}

		for index, input := range tx.Inputs {
			if input.TxID == "" || hasControl(input.TxID) {
				return errors.NewInvalidTxError(tx.ID, "input %d references an invalid transaction id %q", index, input.TxID)
			}
		}

		for index, output := range tx.Outputs {
			if hasControl(output.Address) {
				return errors.NewInvalidTxError(tx.ID, "output %d address %q contains control characters", index, output.Address)
			}

			if output.Value > model.MaxValue {
				return errors.NewInvalidTxError(tx.ID, "output %d value %d is too high", index, output.Value)
			}
		}

		sum, ok := tx.OutputSum()
		if !ok || sum > model.MaxValue {
			return errors.NewInvalidTxError(tx.ID, "output total is too high")
		}
	}

	return nil
}

func hasControl(s string) bool {
	return strings.ContainsFunc(s, unicode.IsControl)
}
