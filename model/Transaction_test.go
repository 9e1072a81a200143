package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionOutputSum(t *testing.T) {
	tx := &Transaction{ID: "tx", Outputs: []Output{{Value: 4}, {Value: 6}}}

	sum, ok := tx.OutputSum()
	assert.True(t, ok)
	assert.Equal(t, uint64(10), sum)

	overflow := &Transaction{ID: "big", Outputs: []Output{{Value: math.MaxUint64}, {Value: 1}}}
	_, ok = overflow.OutputSum()
	assert.False(t, ok)
}

func TestIsValueCreation(t *testing.T) {
	assert.True(t, (&Transaction{ID: "genesis"}).IsValueCreation())
	assert.False(t, (&Transaction{ID: "spend", Inputs: []Input{{TxID: "genesis"}}}).IsValueCreation())
}

func TestNewUTXO(t *testing.T) {
	tx := &Transaction{ID: "tx1", Outputs: []Output{{Address: "a", Value: 1}, {Address: "b", Value: 2}}}

	u := NewUTXO(tx, 1, 7)
	assert.Equal(t, &UTXO{TxID: "tx1", Index: 1, Address: "b", Value: 2, CreatedAtHeight: 7}, u)
	assert.Equal(t, "tx1:1", u.Outpoint().String())
	assert.Equal(t, u.Outpoint(), Input{TxID: "tx1", Index: 1}.Outpoint())
}
