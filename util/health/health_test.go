package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(message string) func(context.Context, bool) (int, string, error) {
	return func(context.Context, bool) (int, string, error) {
		return http.StatusOK, message, nil
	}
}

func TestCheckAll(t *testing.T) {
	ctx := context.Background()

	t.Run("all healthy", func(t *testing.T) {
		status, details, err := CheckAll(ctx, false, []Check{
			{Name: "LedgerStore", Check: ok("SQL Engine is sqlite")},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"status":200,"dependencies":[{"resource":"LedgerStore","status":200,"message":"SQL Engine is sqlite"}]}`, details)
	})

	t.Run("one failing", func(t *testing.T) {
		status, details, err := CheckAll(ctx, false, []Check{
			{Name: "LedgerStore", Check: ok("fine")},
			{Name: "Other", Check: func(context.Context, bool) (int, string, error) {
				return http.StatusFailedDependency, "down", errors.NewStorageUnavailableError("connection refused")
			}},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Contains(t, details, "connection refused")
	})

	t.Run("nested reports", func(t *testing.T) {
		_, inner, err := CheckAll(ctx, false, []Check{{Name: "LedgerStore", Check: ok("fine")}})
		require.NoError(t, err)

		_, outer, err := CheckAll(ctx, false, []Check{{Name: "Ledger", Check: ok(inner)}})
		require.NoError(t, err)

		var r report
		require.NoError(t, json.Unmarshal([]byte(outer), &r))
		require.Len(t, r.Dependencies, 1)
		assert.JSONEq(t, inner, string(r.Dependencies[0].Dependencies))
	})

	t.Run("no checks", func(t *testing.T) {
		status, details, err := CheckAll(ctx, true, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"status":200,"dependencies":[]}`, details)
	})
}

func TestCheckHTTPServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/alive" {
			_, _ = w.Write([]byte("alive"))
			return
		}

		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	status, _, err := CheckHTTPServer(server.URL+"/", "/alive")(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	status, _, err = CheckHTTPServer(server.URL, "health")(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}
