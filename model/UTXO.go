package model

// UTXO is the persisted projection of an output. Spent is true iff SpentInTx is set.
type UTXO struct {
	TxID            string `json:"txId"`
	Index           uint32 `json:"index"`
	Address         string `json:"address"`
	Value           uint64 `json:"value"`
	Spent           bool   `json:"spent"`
	SpentInTx       string `json:"spentInTx,omitempty"`
	CreatedAtHeight uint32 `json:"createdAtHeight"`
}

func (u *UTXO) Outpoint() Outpoint {
	return Outpoint{TxID: u.TxID, Index: u.Index}
}

// NewUTXO creates the unspent record for output index of tx accepted at height.
func NewUTXO(tx *Transaction, index uint32, height uint32) *UTXO {
	out := tx.Outputs[index]

	return &UTXO{
		TxID:            tx.ID,
		Index:           index,
		Address:         out.Address,
		Value:           out.Value,
		CreatedAtHeight: height,
	}
}
