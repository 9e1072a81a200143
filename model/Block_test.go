package model

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBlockID(t *testing.T) {
	t.Run("single transaction", func(t *testing.T) {
		assert.Equal(t, "d1582b9e2cac15e170c39ef2e85855ffd7e6a820550a8ca16a2f016d366503dc", ComputeBlockID(1, []string{"tx1"}))
	})

	t.Run("matches sha256 of height and ids", func(t *testing.T) {
		sum := sha256.Sum256([]byte("2tx2tx3"))
		assert.Equal(t, hex.EncodeToString(sum[:]), ComputeBlockID(2, []string{"tx2", "tx3"}))
		assert.Equal(t, "6169350df697acbc8602b808e5b02186d8eba65b86b1c78bdce0f635efbc5fc0", ComputeBlockID(2, []string{"tx2", "tx3"}))
	})

	t.Run("no transactions", func(t *testing.T) {
		assert.Equal(t, "6b86b273ff34fce19d6b804eff5a3f5747ada4eaa22f1d49c01e52ddb7875b4b", ComputeBlockID(1, nil))
	})

	t.Run("order sensitive", func(t *testing.T) {
		a := ComputeBlockID(1, []string{"tx1", "tx2"})
		b := ComputeBlockID(1, []string{"tx2", "tx1"})

		assert.NotEqual(t, a, b)
		assert.Equal(t, "74a9608142770b46c9eec3f39f41b4fb38d8d7f4063ac5676ccc2ed1d670c92b", a)
		assert.Equal(t, "72689ae2637a48e02a801a785e4737625be522f7d49520a7146aecc1f5309c2c", b)
	})

	t.Run("lowercase hex", func(t *testing.T) {
		id := ComputeBlockID(42, []string{"abc"})
		assert.Len(t, id, 64)
		assert.Regexp(t, "^[0-9a-f]{64}$", id)
	})
}

func TestNewBlock(t *testing.T) {
	tx := &Transaction{ID: "tx1", Outputs: []Output{{Address: "addr1", Value: 10}}}

	block := NewBlock(1, tx)
	assert.Equal(t, uint32(1), block.Height)
	assert.Equal(t, []string{"tx1"}, block.TxIDs())
	assert.Equal(t, ComputeBlockID(1, []string{"tx1"}), block.ID)
	assert.Equal(t, block.ID+"@1", block.String())
}

func TestNewBlockFromBytes(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		block := NewBlock(3,
			&Transaction{ID: "tx5", Inputs: []Input{{TxID: "tx1", Index: 0}}, Outputs: []Output{{Address: "a", Value: 4}, {Address: "b", Value: 6}}},
		)

		b, err := block.Bytes()
		require.NoError(t, err)

		decoded, err := NewBlockFromBytes(b)
		require.NoError(t, err)
		assert.Equal(t, block, decoded)
	})

	t.Run("wire field names", func(t *testing.T) {
		decoded, err := NewBlockFromBytes([]byte(`{"id":"x","height":1,"transactions":[{"id":"tx1","inputs":[{"txId":"tx0","index":2}],"outputs":[{"address":"addr1","value":10}]}]}`))
		require.NoError(t, err)

		require.Len(t, decoded.Transactions, 1)
		assert.Equal(t, Input{TxID: "tx0", Index: 2}, decoded.Transactions[0].Inputs[0])
		assert.Equal(t, Output{Address: "addr1", Value: 10}, decoded.Transactions[0].Outputs[0])
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := NewBlockFromBytes([]byte(`{"height":"one"}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	})

	t.Run("negative value rejected", func(t *testing.T) {
		_, err := NewBlockFromBytes([]byte(`{"id":"x","height":1,"transactions":[{"id":"tx1","outputs":[{"address":"a","value":-1}]}]}`))
		require.Error(t, err)
	})
}
