package errors

import "strings"

// ERR is the error code carried by every *Error.
type ERR int32

const (
	ERR_UNKNOWN          ERR = 0
	ERR_INVALID_ARGUMENT ERR = 1
	ERR_NOT_FOUND        ERR = 2
	ERR_PROCESSING       ERR = 3
	ERR_CONFIGURATION    ERR = 4
	ERR_CONTEXT_CANCELED ERR = 5
	ERR_ERROR            ERR = 9
	// block errors
	ERR_BLOCK_NOT_FOUND      ERR = 10
	ERR_BLOCK_INVALID_HEIGHT ERR = 11
	ERR_BLOCK_INVALID_ID     ERR = 12
	ERR_BLOCK_EXISTS         ERR = 13
	// transaction errors
	ERR_TX_INVALID    ERR = 30
	ERR_TX_UNBALANCED ERR = 31
	ERR_TX_NOT_FOUND  ERR = 32
	// utxo errors
	ERR_UTXO_NOT_FOUND ERR = 40
	ERR_UTXO_SPENT     ERR = 41
	// ledger errors
	ERR_ROLLBACK_TARGET_INVALID ERR = 50
	// service errors
	ERR_SERVICE_UNAVAILABLE ERR = 60
	ERR_SERVICE_ERROR       ERR = 61
	// storage errors
	ERR_STORAGE_UNAVAILABLE ERR = 70
	ERR_STORAGE_ERROR       ERR = 71
)

var ERR_name = map[int32]string{
	0:  "ERR_UNKNOWN",
	1:  "ERR_INVALID_ARGUMENT",
	2:  "ERR_NOT_FOUND",
	3:  "ERR_PROCESSING",
	4:  "ERR_CONFIGURATION",
	5:  "ERR_CONTEXT_CANCELED",
	9:  "ERR_ERROR",
	10: "ERR_BLOCK_NOT_FOUND",
	11: "ERR_BLOCK_INVALID_HEIGHT",
	12: "ERR_BLOCK_INVALID_ID",
	13: "ERR_BLOCK_EXISTS",
	30: "ERR_TX_INVALID",
	31: "ERR_TX_UNBALANCED",
	32: "ERR_TX_NOT_FOUND",
	40: "ERR_UTXO_NOT_FOUND",
	41: "ERR_UTXO_SPENT",
	50: "ERR_ROLLBACK_TARGET_INVALID",
	60: "ERR_SERVICE_UNAVAILABLE",
	61: "ERR_SERVICE_ERROR",
	70: "ERR_STORAGE_UNAVAILABLE",
	71: "ERR_STORAGE_ERROR",
}

var ERR_value = func() map[string]int32 {
	m := make(map[string]int32, len(ERR_name))
	for k, v := range ERR_name {
		m[v] = k
	}

	return m
}()

// String returns the code name without the ERR_ prefix, e.g. "UTXO_NOT_FOUND".
func (x ERR) String() string {
	name, ok := ERR_name[int32(x)]
	if !ok {
		return "INVALID_CODE"
	}

	return strings.TrimPrefix(name, "ERR_")
}

func (x ERR) Enum() *ERR {
	p := new(ERR)
	*p = x

	return p
}
