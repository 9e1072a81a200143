package httpimpl

import (
	"encoding/json"
	"net/http"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/labstack/echo/v4"
)

// errorResponse is the body of every error returned by the API.
type errorResponse struct {
	Status int32           `json:"status"`
	Code   int32           `json:"code"`
	Err    string          `json:"error"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// sendError writes err as an errorResponse with the given HTTP status.
func sendError(c echo.Context, status int, code int32, err error) error {
	e := &errorResponse{
		Status: int32(status),
		Code:   code,
		Err:    err.Error(),
	}

	var tErr *errors.Error
	if errors.As(err, &tErr) && tErr.Data() != nil {
		if data := tErr.Data().EncodeErrorData(); len(data) > 0 {
			e.Data = data
		}
	}

	return c.JSON(status, e)
}

// sendLedgerError maps a ledger error onto its HTTP status: client errors are 400,
// missing records 404, store conflicts 409 and everything else 500. Only the last
// group is logged.
func (h *HTTP) sendLedgerError(c echo.Context, err error) error {
	var (
		status = http.StatusInternalServerError
		code   = int32(errors.CodeOf(err))
	)

	switch {
	case errors.Is(err, errors.ErrNotFound), errors.Is(err, errors.ErrBlockNotFound), errors.Is(err, errors.ErrTxNotFound):
		status = http.StatusNotFound
	case errors.IsValidationError(err):
		status = http.StatusBadRequest
	case errors.IsConflictError(err):
		status = http.StatusConflict
	default:
		h.logger.Errorf("[Indexer][%s %s] request failed: %v", c.Request().Method, c.Path(), err)
	}

	return sendError(c, status, code, err)
}
