package factory

import (
	"context"
	"net/url"
	"testing"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger/bolt"
	storelogger "github.com/bsv-blockchain/utxoindexer/stores/ledger/logger"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger/sql"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/bsv-blockchain/utxoindexer/util/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		url     string
		check   func(t *testing.T, store interface{})
		errorIs error
	}{
		{
			url: "sqlitememory:///factory",
			check: func(t *testing.T, store interface{}) {
				_, ok := store.(*sql.Store)
				assert.True(t, ok)
			},
		},
		{
			url: "sqlite:///factory",
			check: func(t *testing.T, store interface{}) {
				_, ok := store.(*sql.Store)
				assert.True(t, ok)
			},
		},
		{
			url: "bolt:///factory.db",
			check: func(t *testing.T, store interface{}) {
				_, ok := store.(*bolt.Store)
				assert.True(t, ok)
			},
		},
		{
			url: "sqlitememory:///factory?logging=true",
			check: func(t *testing.T, store interface{}) {
				_, ok := store.(*storelogger.Store)
				assert.True(t, ok)
			},
		},
		{
			url:     "memcached://localhost",
			errorIs: errors.ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			tSettings := test.CreateBaseTestSettings(t)

			storeURL, err := url.Parse(tt.url)
			require.NoError(t, err)

			tSettings.LedgerStore.StoreURL = storeURL

			store, err := NewStore(ctx, ulogger.TestLogger{}, tSettings, "test")
			if tt.errorIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.errorIs))

				return
			}

			require.NoError(t, err)

			defer func() {
				_ = store.Close()
			}()

			tt.check(t, store)

			height, err := store.GetBestHeight(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint32(0), height)
		})
	}
}

func TestNewStoreWithoutURL(t *testing.T) {
	tSettings := test.CreateBaseTestSettings(t)
	tSettings.LedgerStore.StoreURL = nil

	_, err := NewStore(context.Background(), ulogger.TestLogger{}, tSettings, "test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}
