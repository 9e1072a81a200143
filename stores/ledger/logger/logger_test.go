package logger

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger/sql"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger/tests"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/bsv-blockchain/utxoindexer/util/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingStore(t *testing.T) {
	ctx := context.Background()

	storeURL, err := url.Parse("sqlitememory:///logger")
	require.NoError(t, err)

	inner, err := sql.New(ctx, ulogger.TestLogger{}, test.CreateBaseTestSettings(t), storeURL)
	require.NoError(t, err)

	var buf bytes.Buffer

	s := New(ulogger.New("ledger", ulogger.WithWriter(&buf), ulogger.WithPrettyLogs(false)), inner)

	block := model.NewBlock(1, &model.Transaction{ID: "tx1", Outputs: []model.Output{{Address: "addr1", Value: 10}}})

	require.NoError(t, s.Update(ctx, func(unit ledger.UnitOfWork) error {
		return tests.ApplyBlock(ctx, unit, block)
	}))

	balance, err := s.GetBalance(ctx, "addr1")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance)

	require.NoError(t, s.Close())

	out := buf.String()
	assert.True(t, strings.Contains(out, "[LedgerStore][logger][Update]"), out)
	assert.True(t, strings.Contains(out, "[LedgerStore][logger][GetBalance] address addr1 balance 10"), out)
	assert.True(t, strings.Contains(out, "logger_test.go"), out)
}
