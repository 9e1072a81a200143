package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/bsv-blockchain/utxoindexer/util/test"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://indexer.test:8090/api/v1"

func newMockedClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClientWithURL(ulogger.TestLogger{}, baseURL, time.Second)
	require.NoError(t, err)

	c.backoff = time.Millisecond

	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	return c
}

func TestNewClient(t *testing.T) {
	tSettings := test.CreateBaseTestSettings(t)

	tSettings.Indexer.ClientURL = ""
	_, err := NewClient(ulogger.TestLogger{}, tSettings)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))

	tSettings.Indexer.ClientURL = "not a url"
	_, err = NewClient(ulogger.TestLogger{}, tSettings)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))

	tSettings.Indexer.ClientURL = "http://localhost:8090/"
	c, err := NewClient(ulogger.TestLogger{}, tSettings)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8090", c.baseURL)
}

func TestSubmitBlock(t *testing.T) {
	c := newMockedClient(t)
	ctx := context.Background()

	block := model.NewBlock(1, &model.Transaction{ID: "tx1", Outputs: []model.Output{{Address: "addr1", Value: 50}}})

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/blocks",
		func(req *http.Request) (*http.Response, error) {
			var received model.Block
			if err := decodeRequest(req, &received); err != nil {
				return nil, err
			}

			if received.ID != block.ID {
				return httpmock.NewStringResponse(http.StatusBadRequest, `{"status":400,"code":12,"error":"BLOCK_INVALID_ID (12): wrong id"}`), nil
			}

			return httpmock.NewJsonResponse(http.StatusOK, &model.SubmitBlockResponse{ID: block.ID, Height: 1})
		})

	height, err := c.SubmitBlock(ctx, block)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), height)

	t.Run("rejected", func(t *testing.T) {
		other := *block
		other.ID = "wrong"

		_, err := c.SubmitBlock(ctx, &other)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrBlockInvalidID))
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("nil block", func(t *testing.T) {
		_, err := c.SubmitBlock(ctx, nil)
		assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	})

	t.Run("not retried", func(t *testing.T) {
		httpmock.RegisterResponder(http.MethodPost, baseURL+"/blocks",
			httpmock.NewStringResponder(http.StatusServiceUnavailable, "busy"))

		before := httpmock.GetTotalCallCount()

		_, err := c.SubmitBlock(ctx, block)
		require.Error(t, err)
		assert.Equal(t, before+1, httpmock.GetTotalCallCount())
	})
}

func TestQueryBalance(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/balance/addr1",
		httpmock.NewStringResponder(http.StatusOK, `{"address":"addr1","balance":75}`))

	balance, err := c.QueryBalance(context.Background(), "addr1")
	require.NoError(t, err)
	assert.Equal(t, uint64(75), balance)
}

func TestQueryBalanceRetriesWhileUnavailable(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/balance/addr1",
		httpmock.ResponderFromMultipleResponses([]*http.Response{
			httpmock.NewStringResponse(http.StatusServiceUnavailable, "starting"),
			httpmock.NewStringResponse(http.StatusOK, `{"address":"addr1","balance":5}`),
		}))

	balance, err := c.QueryBalance(context.Background(), "addr1")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), balance)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestRollbackTo(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/rollback",
		func(req *http.Request) (*http.Response, error) {
			switch req.URL.Query().Get("height") {
			case "2":
				return httpmock.NewStringResponse(http.StatusOK, `{"height":2}`), nil
			default:
				return httpmock.NewStringResponse(http.StatusBadRequest,
					`{"status":400,"code":50,"error":"ROLLBACK_TARGET_INVALID (50): invalid rollback target"}`), nil
			}
		})

	height, err := c.RollbackTo(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), height)

	_, err = c.RollbackTo(context.Background(), -1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRollbackTargetInvalid))
}

func TestQueries(t *testing.T) {
	c := newMockedClient(t)
	ctx := context.Background()

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/height",
		httpmock.NewStringResponder(http.StatusOK, `{"height":4}`))
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/block/1/json",
		httpmock.NewStringResponder(http.StatusOK, `{"id":"b1","height":1,"txIds":["tx1"]}`))
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/block/9/json",
		httpmock.NewStringResponder(http.StatusNotFound, `{"status":404,"code":10,"error":"BLOCK_NOT_FOUND (10): no block at height 9"}`))
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/utxos/addr1/json",
		httpmock.NewStringResponder(http.StatusOK, `{"address":"addr1","balance":30,"utxos":[{"txId":"tx1","index":0,"address":"addr1","value":30,"spent":false,"createdAtHeight":1}]}`))
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/utxo/tx1/0/json",
		httpmock.NewStringResponder(http.StatusOK, `{"txId":"tx1","index":0,"address":"addr1","value":30,"spent":true,"spentInTx":"tx2","createdAtHeight":1}`))

	height, err := c.GetBestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), height)

	block, err := c.GetBlock(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "b1", block.ID)

	_, err = c.GetBlock(ctx, 9)
	assert.True(t, errors.Is(err, errors.ErrBlockNotFound))

	utxos, err := c.GetUTXOs(ctx, "addr1")
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, uint64(30), utxos[0].Value)

	utxo, err := c.GetUTXO(ctx, model.Outpoint{TxID: "tx1", Index: 0})
	require.NoError(t, err)
	assert.True(t, utxo.Spent)
	assert.Equal(t, "tx2", utxo.SpentInTx)
}

func TestHealth(t *testing.T) {
	c := newMockedClient(t)
	ctx := context.Background()

	httpmock.RegisterResponder(http.MethodGet, "http://indexer.test:8090/alive",
		httpmock.NewStringResponder(http.StatusOK, "alive"))
	httpmock.RegisterResponder(http.MethodGet, "http://indexer.test:8090/health",
		httpmock.NewStringResponder(http.StatusServiceUnavailable, `{"status":"503"}`))

	status, details, err := c.Health(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", details)

	status, _, err = c.Health(ctx, false)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}
