package util

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bsv-blockchain/utxoindexer/errors"
)

// DefaultHTTPTimeout applies when neither the client nor the context set a deadline.
const DefaultHTTPTimeout = 60 * time.Second

// httpErrorResponse mirrors the JSON error body of the indexer API.
type httpErrorResponse struct {
	Status int32           `json:"status"`
	Code   int32           `json:"code"`
	Err    string          `json:"error"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// DoHTTPRequest performs an HTTP request and returns the response body. A request body
// is sent as JSON. Error responses carrying a coded error body are turned back into the
// coded error, so errors.Is works across the wire; other failures become service errors.
func DoHTTPRequest(ctx context.Context, client *http.Client, method, url string, requestBody []byte) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	if _, ok := ctx.Deadline(); !ok && client.Timeout == 0 {
		var cancelFn context.CancelFunc

		ctx, cancelFn = context.WithTimeout(ctx, DefaultHTTPTimeout)
		defer cancelFn()
	}

	var body io.Reader
	if requestBody != nil {
		body = bytes.NewReader(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("failed to create http request", err)
	}

	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewContextCanceledError("http request [%s %s] cancelled", method, url, err)
		}

		return nil, errors.NewServiceUnavailableError("http request [%s %s] failed", method, url, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewServiceError("http request [%s %s] failed to read body", method, url, err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
			return nil, errors.NewServiceError("http request [%s %s] returned HTML - assume bad URL", method, url)
		}

		return b, nil
	}

	return nil, decodeHTTPError(method, url, resp.StatusCode, b)
}

func decodeHTTPError(method, url string, statusCode int, b []byte) error {
	var errResp httpErrorResponse
	if err := json.Unmarshal(b, &errResp); err == nil && errResp.Err != "" {
		code := errors.ERR(errResp.Code)

		// the body carries the rendered error, drop its code prefix
		msg := strings.TrimPrefix(errResp.Err, fmt.Sprintf("%s (%d): ", code, code))

		if len(errResp.Data) > 0 {
			if data, err := errors.GetErrorData(code, errResp.Data); err == nil {
				// data already rendered in the message
				msg = strings.SplitN(msg, ", data: ", 2)[0]
				return errors.NewWithData(code, data, "%s", msg)
			}
		}

		return errors.New(code, "%s", msg)
	}

	if statusCode == http.StatusNotFound {
		return errors.NewNotFoundError("http request [%s %s] returned status code [%d]", method, url, statusCode)
	}

	if statusCode == http.StatusServiceUnavailable {
		return errors.NewServiceUnavailableError("http request [%s %s] returned status code [%d] with body [%s]", method, url, statusCode, string(b))
	}

	return errors.NewServiceError("http request [%s %s] returned status code [%d] with body [%s]", method, url, statusCode, string(b))
}
