package health

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bsv-blockchain/utxoindexer/util"
)

// CheckHTTPServer returns a Check that GETs address+healthPath and passes on any 2xx.
func CheckHTTPServer(address string, healthPath string) func(context.Context, bool) (int, string, error) {
	target := strings.TrimSuffix(address, "/") + "/" + strings.TrimPrefix(healthPath, "/")
	client := &http.Client{Timeout: 2 * time.Second}

	return func(ctx context.Context, _ bool) (int, string, error) {
		if _, err := util.DoHTTPRequest(ctx, client, http.MethodGet, target, nil); err != nil {
			return http.StatusServiceUnavailable, fmt.Sprintf("HTTP server at %s not healthy", address), err
		}

		return http.StatusOK, fmt.Sprintf("HTTP server at %s is healthy", address), nil
	}
}
