package util

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoHTTPRequestGET(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"height": 3}`))
	}))
	defer server.Close()

	response, err := DoHTTPRequest(context.Background(), nil, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"height": 3}`, string(response))
}

func TestDoHTTPRequestPOST(t *testing.T) {
	requestBody := []byte(`{"id": "b1"}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, requestBody, body)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"created": true}`))
	}))
	defer server.Close()

	response, err := DoHTTPRequest(context.Background(), nil, http.MethodPost, server.URL, requestBody)
	require.NoError(t, err)
	assert.Equal(t, `{"created": true}`, string(response))
}

func TestDoHTTPRequestCodedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":400,"code":11,"error":"BLOCK_INVALID_HEIGHT (11): invalid height: expected 2, got 5"}`))
	}))
	defer server.Close()

	_, err := DoHTTPRequest(context.Background(), nil, http.MethodPost, server.URL, []byte(`{}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBlockInvalidHeight))
	assert.Equal(t, "BLOCK_INVALID_HEIGHT (11): invalid height: expected 2, got 5", err.Error())
}

func TestDoHTTPRequestCodedErrorData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":400,"code":11,"error":"BLOCK_INVALID_HEIGHT (11): invalid height: expected 2, got 5","data":{"expected":2,"got":5}}`))
	}))
	defer server.Close()

	_, err := DoHTTPRequest(context.Background(), nil, http.MethodPost, server.URL, []byte(`{}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBlockInvalidHeight))

	var data *errors.InvalidHeightErrData
	require.True(t, errors.AsData(err, &data))
	assert.Equal(t, uint32(2), data.Expected)
	assert.Equal(t, uint32(5), data.Got)
	assert.Equal(t, "BLOCK_INVALID_HEIGHT (11): invalid height: expected 2, got 5", err.Error())
}

func TestDoHTTPRequestPlainErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{"not found", http.StatusNotFound, errors.ErrNotFound},
		{"unavailable", http.StatusServiceUnavailable, errors.ErrServiceUnavailable},
		{"server error", http.StatusInternalServerError, errors.ErrServiceError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("oops"))
			}))
			defer server.Close()

			_, err := DoHTTPRequest(context.Background(), nil, http.MethodGet, server.URL, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expected))
		})
	}
}

func TestDoHTTPRequestHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	_, err := DoHTTPRequest(context.Background(), nil, http.MethodGet, server.URL, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned HTML")
}

func TestDoHTTPRequestWithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := DoHTTPRequest(ctx, nil, http.MethodGet, server.URL, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrContextCanceled))
}

func TestDoHTTPRequestConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := DoHTTPRequest(context.Background(), nil, http.MethodGet, url, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrServiceUnavailable))
}
