package errors

import (
	"encoding/json"
	"fmt"
)

// ErrDataI is typed error detail. It travels with an *Error through the HTTP API as JSON,
// see GetErrorData for the decoding side.
type ErrDataI interface {
	EncodeErrorData() []byte
	Error() string
	GetData(key string) interface{}
	SetData(key string, value interface{})
}

// ErrData is the untyped fallback for codes without their own data type.
type ErrData map[string]interface{}

func (e *ErrData) Error() string {
	return fmt.Sprintf("%v", *e)
}

func (e *ErrData) SetData(key string, value interface{}) {
	if e == nil {
		return
	}

	if *e == nil {
		*e = ErrData{}
	}

	(*e)[key] = value
}

func (e *ErrData) GetData(key string) interface{} {
	if e == nil {
		return nil
	}

	return (*e)[key]
}

func (e *ErrData) EncodeErrorData() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return []byte{}
	}

	return data
}

// GetErrorData decodes the JSON data of an error with the given code into its typed form.
func GetErrorData(code ERR, dataBytes []byte) (ErrDataI, error) {
	var errData ErrDataI

	switch code {
	case ERR_BLOCK_INVALID_HEIGHT:
		errData = &InvalidHeightErrData{}
	case ERR_BLOCK_INVALID_ID:
		errData = &InvalidBlockIDErrData{}
	case ERR_UTXO_NOT_FOUND:
		errData = &UtxoNotFoundErrData{}
	case ERR_TX_UNBALANCED:
		errData = &UnbalancedTxErrData{}
	case ERR_TX_INVALID:
		errData = &InvalidTxErrData{}
	case ERR_ROLLBACK_TARGET_INVALID:
		errData = &InvalidRollbackTargetErrData{}
	default:
		errData = &ErrData{}
	}

	if err := json.Unmarshal(dataBytes, errData); err != nil {
		return errData, err
	}

	return errData, nil
}
