// Package client talks to a running indexer over its HTTP API. Client implements
// ledger.Interface, so callers can swap an in-process ledger for a remote one.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/bsv-blockchain/utxoindexer/services/ledger"
	"github.com/bsv-blockchain/utxoindexer/settings"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/bsv-blockchain/utxoindexer/util"
	"github.com/bsv-blockchain/utxoindexer/util/retry"
)

var _ ledger.Interface = (*Client)(nil)

type Client struct {
	logger     ulogger.Logger
	baseURL    string
	httpClient *http.Client
	retries    int
	backoff    time.Duration
}

// NewClient connects to the indexer at the indexer_clientURL setting.
func NewClient(logger ulogger.Logger, tSettings *settings.Settings) (*Client, error) {
	if tSettings.Indexer.ClientURL == "" {
		return nil, errors.NewConfigurationError("no indexer_clientURL setting found")
	}

	return NewClientWithURL(logger, tSettings.Indexer.ClientURL, tSettings.Indexer.ClientTimeout)
}

// NewClientWithURL connects to the indexer at baseURL, including any API prefix.
func NewClientWithURL(logger ulogger.Logger, baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.NewConfigurationError("invalid indexer url %q", baseURL, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, errors.NewConfigurationError("invalid indexer url %q: scheme and host are required", baseURL)
	}

	return &Client{
		logger:     logger.New("indexerClient"),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retries:    3,
		backoff:    100 * time.Millisecond,
	}, nil
}

// Health asks the indexer for liveness (/alive) or readiness (/health).
func (c *Client) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	path := "/health"
	if checkLiveness {
		path = "/alive"
	}

	b, err := util.DoHTTPRequest(ctx, c.httpClient, http.MethodGet, c.rootURL()+path, nil)
	if err != nil {
		return http.StatusServiceUnavailable, "", err
	}

	return http.StatusOK, string(b), nil
}

func (c *Client) SubmitBlock(ctx context.Context, block *model.Block) (uint32, error) {
	if block == nil {
		return 0, errors.NewInvalidArgumentError("block is nil")
	}

	blockBytes, err := block.Bytes()
	if err != nil {
		return 0, errors.NewProcessingError("failed to encode block %s", block.ID, err)
	}

	// not retried, a lost response would turn a retry into a height mismatch
	b, err := util.DoHTTPRequest(ctx, c.httpClient, http.MethodPost, c.baseURL+"/blocks", blockBytes)
	if err != nil {
		return 0, err
	}

	var resp model.SubmitBlockResponse
	if err = decode(b, &resp); err != nil {
		return 0, err
	}

	return resp.Height, nil
}

func (c *Client) RollbackTo(ctx context.Context, height int64) (uint32, error) {
	b, err := util.DoHTTPRequest(ctx, c.httpClient, http.MethodPost,
		c.baseURL+"/rollback?height="+strconv.FormatInt(height, 10), nil)
	if err != nil {
		return 0, err
	}

	var resp model.HeightResponse
	if err = decode(b, &resp); err != nil {
		return 0, err
	}

	return resp.Height, nil
}

func (c *Client) QueryBalance(ctx context.Context, address string) (uint64, error) {
	var resp model.BalanceResponse
	if err := c.get(ctx, "/balance/"+url.PathEscape(address), &resp); err != nil {
		return 0, err
	}

	return resp.Balance, nil
}

func (c *Client) GetBestHeight(ctx context.Context) (uint32, error) {
	var resp model.HeightResponse
	if err := c.get(ctx, "/height", &resp); err != nil {
		return 0, err
	}

	return resp.Height, nil
}

func (c *Client) GetBlock(ctx context.Context, height uint32) (*model.BlockRecord, error) {
	var block model.BlockRecord
	if err := c.get(ctx, fmt.Sprintf("/block/%d/json", height), &block); err != nil {
		return nil, err
	}

	return &block, nil
}

func (c *Client) GetUTXOs(ctx context.Context, address string) ([]*model.UTXO, error) {
	var resp model.UTXOsResponse
	if err := c.get(ctx, "/utxos/"+url.PathEscape(address)+"/json", &resp); err != nil {
		return nil, err
	}

	if resp.UTXOs == nil {
		resp.UTXOs = make([]*model.UTXO, 0)
	}

	return resp.UTXOs, nil
}

func (c *Client) GetUTXO(ctx context.Context, outpoint model.Outpoint) (*model.UTXO, error) {
	var utxo model.UTXO
	if err := c.get(ctx, fmt.Sprintf("/utxo/%s/%d/json", url.PathEscape(outpoint.TxID), outpoint.Index), &utxo); err != nil {
		return nil, err
	}

	return &utxo, nil
}

// get performs an idempotent request, retrying while the indexer is unreachable.
func (c *Client) get(ctx context.Context, path string, v interface{}) error {
	b, err := retry.Retry(ctx, c.logger, func() ([]byte, error) {
		return util.DoHTTPRequest(ctx, c.httpClient, http.MethodGet, c.baseURL+path, nil)
	},
		retry.WithRetryCount(c.retries),
		retry.WithExponentialBackoff(),
		retry.WithBackoffDurationType(c.backoff),
		retry.WithMaxBackoff(2*time.Second),
		retry.WithMessage(fmt.Sprintf("[Client] GET %s failed, retrying", path)),
		retry.WithShouldRetry(func(err error) bool {
			return errors.Is(err, errors.ErrServiceUnavailable)
		}),
	)
	if err != nil {
		return err
	}

	return decode(b, v)
}

// rootURL strips the API prefix, /alive and /health are served at the root.
func (c *Client) rootURL() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL
	}

	u.Path = ""

	return u.String()
}

func decode(b []byte, v interface{}) error {
	if err := json.Unmarshal(b, v); err != nil {
		return errors.NewProcessingError("failed to decode indexer response", err)
	}

	return nil
}
