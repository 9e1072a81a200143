package errors

import (
	"encoding/json"
	"fmt"
)

// InvalidHeightErrData is attached to ERR_BLOCK_INVALID_HEIGHT errors.
type InvalidHeightErrData struct {
	Expected uint32 `json:"expected"`
	Got      uint32 `json:"got"`
}

func (e *InvalidHeightErrData) Error() string {
	return fmt.Sprintf("invalid height: expected %d, got %d", e.Expected, e.Got)
}

func (e *InvalidHeightErrData) EncodeErrorData() []byte {
	return encodeData(e)
}

func (e *InvalidHeightErrData) GetData(key string) interface{} {
	switch key {
	case "expected":
		return e.Expected
	case "got":
		return e.Got
	}

	return nil
}

// SetData is a no-op, typed error data is fixed at construction.
func (e *InvalidHeightErrData) SetData(string, interface{}) {}

// InvalidBlockIDErrData is attached to ERR_BLOCK_INVALID_ID errors.
type InvalidBlockIDErrData struct {
	Expected string `json:"expected"`
	Got      string `json:"got"`
}

func (e *InvalidBlockIDErrData) Error() string {
	return fmt.Sprintf("invalid block id: expected %s, got %s", e.Expected, e.Got)
}

func (e *InvalidBlockIDErrData) EncodeErrorData() []byte {
	return encodeData(e)
}

func (e *InvalidBlockIDErrData) GetData(key string) interface{} {
	switch key {
	case "expected":
		return e.Expected
	case "got":
		return e.Got
	}

	return nil
}

func (e *InvalidBlockIDErrData) SetData(string, interface{}) {}

// UtxoNotFoundErrData identifies the output an input tried to spend.
type UtxoNotFoundErrData struct {
	SpendingTxID string `json:"spendingTxId"`
	TxID         string `json:"txId"`
	Index        uint32 `json:"index"`
}

func (e *UtxoNotFoundErrData) Error() string {
	return fmt.Sprintf("utxo %s:%d not found or already spent (input of %s)", e.TxID, e.Index, e.SpendingTxID)
}

func (e *UtxoNotFoundErrData) EncodeErrorData() []byte {
	return encodeData(e)
}

func (e *UtxoNotFoundErrData) GetData(key string) interface{} {
	switch key {
	case "spendingTxId":
		return e.SpendingTxID
	case "txId":
		return e.TxID
	case "index":
		return e.Index
	}

	return nil
}

func (e *UtxoNotFoundErrData) SetData(string, interface{}) {}

// UnbalancedTxErrData is attached to ERR_TX_UNBALANCED errors.
type UnbalancedTxErrData struct {
	TxID      string `json:"txId"`
	InputSum  uint64 `json:"inputSum"`
	OutputSum uint64 `json:"outputSum"`
}

func (e *UnbalancedTxErrData) Error() string {
	return fmt.Sprintf("unbalanced transaction %s: inputs %d, outputs %d", e.TxID, e.InputSum, e.OutputSum)
}

func (e *UnbalancedTxErrData) EncodeErrorData() []byte {
	return encodeData(e)
}

func (e *UnbalancedTxErrData) GetData(key string) interface{} {
	switch key {
	case "txId":
		return e.TxID
	case "inputSum":
		return e.InputSum
	case "outputSum":
		return e.OutputSum
	}

	return nil
}

func (e *UnbalancedTxErrData) SetData(string, interface{}) {}

// InvalidTxErrData is attached to structural ERR_TX_INVALID errors.
type InvalidTxErrData struct {
	TxID   string `json:"txId"`
	Reason string `json:"reason"`
}

func (e *InvalidTxErrData) Error() string {
	return fmt.Sprintf("invalid transaction %q: %s", e.TxID, e.Reason)
}

func (e *InvalidTxErrData) EncodeErrorData() []byte {
	return encodeData(e)
}

func (e *InvalidTxErrData) GetData(key string) interface{} {
	switch key {
	case "txId":
		return e.TxID
	case "reason":
		return e.Reason
	}

	return nil
}

func (e *InvalidTxErrData) SetData(string, interface{}) {}

// InvalidRollbackTargetErrData is attached to ERR_ROLLBACK_TARGET_INVALID errors.
type InvalidRollbackTargetErrData struct {
	Target  int64  `json:"target"`
	Current uint32 `json:"current"`
}

func (e *InvalidRollbackTargetErrData) Error() string {
	return fmt.Sprintf("invalid rollback target %d, current height %d", e.Target, e.Current)
}

func (e *InvalidRollbackTargetErrData) EncodeErrorData() []byte {
	return encodeData(e)
}

func (e *InvalidRollbackTargetErrData) GetData(key string) interface{} {
	switch key {
	case "target":
		return e.Target
	case "current":
		return e.Current
	}

	return nil
}

func (e *InvalidRollbackTargetErrData) SetData(string, interface{}) {}

func NewInvalidHeightError(expected, got uint32) error {
	data := &InvalidHeightErrData{Expected: expected, Got: got}
	return NewWithData(ERR_BLOCK_INVALID_HEIGHT, data, data.Error())
}

func NewInvalidBlockIDError(expected, got string) error {
	data := &InvalidBlockIDErrData{Expected: expected, Got: got}
	return NewWithData(ERR_BLOCK_INVALID_ID, data, data.Error())
}

func NewUtxoNotFoundError(spendingTxID, txID string, index uint32) error {
	data := &UtxoNotFoundErrData{SpendingTxID: spendingTxID, TxID: txID, Index: index}
	return NewWithData(ERR_UTXO_NOT_FOUND, data, data.Error())
}

func NewUnbalancedTxError(txID string, inputSum, outputSum uint64) error {
	data := &UnbalancedTxErrData{TxID: txID, InputSum: inputSum, OutputSum: outputSum}
	return NewWithData(ERR_TX_UNBALANCED, data, data.Error())
}

func NewInvalidTxError(txID, reason string, params ...interface{}) error {
	data := &InvalidTxErrData{TxID: txID, Reason: fmt.Sprintf(reason, params...)}
	return NewWithData(ERR_TX_INVALID, data, data.Error())
}

func NewInvalidRollbackTargetError(target int64, current uint32) error {
	data := &InvalidRollbackTargetErrData{Target: target, Current: current}
	return NewWithData(ERR_ROLLBACK_TARGET_INVALID, data, data.Error())
}

func encodeData(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte{}
	}

	return data
}
