package validator

import (
	"context"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
)

// utxoView overlays the effects of the transactions already checked in a block on top of
// the committed ledger. Outputs spent by an earlier transaction are hidden from later ones,
// and outputs created earlier in the block become spendable.
type utxoView struct {
	lookup  LookupFunc
	created map[model.Outpoint]*model.UTXO
	spent   map[model.Outpoint]struct{}
}

func newUtxoView(lookup LookupFunc) *utxoView {
	return &utxoView{
		lookup:  lookup,
		created: make(map[model.Outpoint]*model.UTXO),
		spent:   make(map[model.Outpoint]struct{}),
	}
}

// fetch returns nil without error when the output does not exist or is already spent.
func (v *utxoView) fetch(ctx context.Context, outpoint model.Outpoint) (*model.UTXO, error) {
	if _, ok := v.spent[outpoint]; ok {
		return nil, nil
	}

	if utxo, ok := v.created[outpoint]; ok {
		return utxo, nil
	}

	utxo, err := v.lookup(ctx, outpoint)
	if err != nil {
		if errors.Is(err, errors.ErrUtxoNotFound) {
			return nil, nil
		}

		return nil, err
	}

	if utxo == nil || utxo.Spent {
		return nil, nil
	}

	return utxo, nil
}

func (v *utxoView) spend(outpoint model.Outpoint) {
	v.spent[outpoint] = struct{}{}
}

func (v *utxoView) addOutputs(tx *model.Transaction, height uint32) {
	for i := range tx.Outputs {
		utxo := model.NewUTXO(tx, uint32(i), height)
		v.created[utxo.Outpoint()] = utxo
	}
}
