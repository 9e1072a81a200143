package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_NewCustomError tests the creation of custom errors.
func Test_NewCustomError(t *testing.T) {
	err := New(ERR_NOT_FOUND, "resource not found")
	require.NotNil(t, err)
	require.Equal(t, ERR_NOT_FOUND, err.Code())
	require.Equal(t, "resource not found", err.Message())

	secondErr := New(ERR_INVALID_ARGUMENT, "[SubmitBlock][%s] failed to decode block", "_test_string_", err)
	thirdErr := New(ERR_UTXO_SPENT, "[SubmitBlock][%s] failed to spend", "_test_string_", secondErr)
	anotherErr := New(ERR_UTXO_SPENT, "another spend error")
	fourthErr := New(ERR_SERVICE_ERROR, "older error", thirdErr)
	fifthErr := New(ERR_STORAGE_ERROR, "storage failed", fourthErr)

	require.True(t, anotherErr.Is(thirdErr))
	require.True(t, fourthErr.Is(New(ERR_UTXO_SPENT, "")))
	require.True(t, fourthErr.Is(ErrUtxoSpent))

	require.True(t, fourthErr.Is(err))
	require.True(t, fifthErr.Is(thirdErr))
	require.True(t, fifthErr.Is(err))

	require.False(t, anotherErr.Is(fourthErr))
	require.False(t, fifthErr.Is(ErrBlockNotFound))
}

func Test_FmtErrorCustomError(t *testing.T) {
	err := New(ERR_NOT_FOUND, "resource not found")

	fmtError := fmt.Errorf("error: %w", err)
	require.True(t, errors.Is(fmtError, ErrNotFound))

	wrapped := New(ERR_STORAGE_ERROR, "wrapping", fmtError)
	require.True(t, Is(wrapped, ErrStorageError))
	require.True(t, Is(wrapped, ErrNotFound))
}

func Test_MessageFormatting(t *testing.T) {
	err := New(ERR_PROCESSING, "failed to process %s at %d", "block", 7)
	assert.Equal(t, "failed to process block at 7", err.Message())
	assert.Equal(t, "PROCESSING (3): failed to process block at 7", err.Error())

	wrapped := New(ERR_STORAGE_ERROR, "query failed", sql.ErrNoRows)
	assert.Equal(t, "STORAGE_ERROR (71): query failed -> sql: no rows in result set", wrapped.Error())
	assert.True(t, errors.Is(wrapped, sql.ErrNoRows))
}

func Test_InvalidCode(t *testing.T) {
	err := New(ERR(9999), "whatever")
	assert.Equal(t, "invalid error code", err.Message())
	assert.Equal(t, "INVALID_CODE", err.Code().String())
}

func Test_NilError(t *testing.T) {
	var err *Error

	assert.Equal(t, "<nil>", err.Error())
	assert.Equal(t, ERR_UNKNOWN, err.Code())
	assert.Nil(t, err.Unwrap())
	assert.False(t, err.Is(ErrNotFound))
}

func Test_AsData(t *testing.T) {
	t.Run("invalid height", func(t *testing.T) {
		err := NewInvalidHeightError(1, 2)

		var data *InvalidHeightErrData
		require.True(t, AsData(err, &data))
		assert.Equal(t, uint32(1), data.Expected)
		assert.Equal(t, uint32(2), data.Got)
		assert.True(t, Is(err, ErrBlockInvalidHeight))
	})

	t.Run("wrapped utxo not found", func(t *testing.T) {
		err := New(ERR_PROCESSING, "submit failed", NewUtxoNotFoundError("tx3", "tx1", 0))

		var data *UtxoNotFoundErrData
		require.True(t, AsData(err, &data))
		assert.Equal(t, "tx3", data.SpendingTxID)
		assert.Equal(t, "tx1", data.TxID)
		assert.Equal(t, uint32(0), data.Index)

		var unbalanced *UnbalancedTxErrData
		assert.False(t, AsData(err, &unbalanced))
	})

	t.Run("As finds data", func(t *testing.T) {
		err := NewUnbalancedTxError("tx2", 10, 9)

		var data *UnbalancedTxErrData
		require.True(t, As(err, &data))
		assert.Equal(t, uint64(10), data.InputSum)
		assert.Equal(t, uint64(9), data.OutputSum)
		assert.Equal(t, "tx2", data.GetData("txId"))
	})
}

func Test_GetErrorData(t *testing.T) {
	original := &UnbalancedTxErrData{TxID: "tx2", InputSum: 10, OutputSum: 11}

	decoded, err := GetErrorData(ERR_TX_UNBALANCED, original.EncodeErrorData())
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	generic, err := GetErrorData(ERR_ERROR, []byte(`{"key":"value"}`))
	require.NoError(t, err)
	assert.Equal(t, "value", generic.GetData("key"))
}

func Test_SetData(t *testing.T) {
	err := New(ERR_ERROR, "with data")
	err.SetData("height", 7)

	assert.Equal(t, 7, err.GetData("height"))
	assert.Nil(t, err.GetData("missing"))
}

func Test_Join(t *testing.T) {
	assert.Nil(t, Join(nil, nil))
	assert.Equal(t, "a, b", Join(errors.New("a"), nil, errors.New("b")).Error())
}

func Test_Classification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		conflict   bool
	}{
		{"nil", nil, false, false},
		{"invalid height", NewInvalidHeightError(1, 3), true, false},
		{"invalid id", NewInvalidBlockIDError("a", "b"), true, false},
		{"utxo not found", NewUtxoNotFoundError("tx3", "tx1", 0), true, false},
		{"unbalanced", NewUnbalancedTxError("tx2", 10, 11), true, false},
		{"invalid tx", NewInvalidTxError("", "empty id"), true, false},
		{"rollback target", NewInvalidRollbackTargetError(5, 3), true, false},
		{"block exists", NewBlockExistsError("block %d exists", 1), false, true},
		{"utxo spent", NewUtxoSpentError("spent"), false, true},
		{"storage", NewStorageError("db gone"), false, false},
		{"plain", errors.New("plain"), false, false},
		{"wrapped validation", fmt.Errorf("ctx: %w", NewInvalidHeightError(1, 3)), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.conflict, IsConflictError(tt.err))
			assert.Equal(t, tt.err != nil && !tt.validation, IsStateError(tt.err))
		})
	}
}

func Test_CodeOf(t *testing.T) {
	assert.Equal(t, ERR_UNKNOWN, CodeOf(nil))
	assert.Equal(t, ERR_UNKNOWN, CodeOf(errors.New("plain")))
	assert.Equal(t, ERR_TX_UNBALANCED, CodeOf(NewUnbalancedTxError("tx2", 10, 9)))
	assert.Equal(t, ERR_STORAGE_ERROR, CodeOf(fmt.Errorf("context: %w", NewStorageError("query failed", ErrNotFound))))
}
