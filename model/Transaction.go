package model

import (
	"math"
	"math/bits"
	"strconv"
)

// MaxValue is the largest output value that can be stored in a signed 64 bit column.
const MaxValue = math.MaxInt64

type Output struct {
	Address string `json:"address"`
	Value   uint64 `json:"value"`
}

// Input references an output of an earlier transaction. Its value is resolved at validation time.
type Input struct {
	TxID  string `json:"txId"`
	Index uint32 `json:"index"`
}

func (i Input) Outpoint() Outpoint {
	return Outpoint{TxID: i.TxID, Index: i.Index}
}

type Transaction struct {
	ID      string   `json:"id"`
	Inputs  []Input  `json:"inputs"`
	Outputs []Output `json:"outputs"`
}

// IsValueCreation reports whether tx has no inputs and is therefore exempt from balance checks.
func (tx *Transaction) IsValueCreation() bool {
	return len(tx.Inputs) == 0
}

// OutputSum returns the sum of all output values. ok is false on overflow.
func (tx *Transaction) OutputSum() (sum uint64, ok bool) {
	var carry uint64

	for _, out := range tx.Outputs {
		sum, carry = bits.Add64(sum, out.Value, 0)
		if carry != 0 {
			return 0, false
		}
	}

	return sum, true
}

// Outpoint identifies an output by owning transaction id and position.
type Outpoint struct {
	TxID  string `json:"txId"`
	Index uint32 `json:"index"`
}

func (o Outpoint) String() string {
	return o.TxID + ":" + strconv.FormatUint(uint64(o.Index), 10)
}
