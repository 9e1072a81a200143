package httpimpl

import (
	"net/http"
	"strconv"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/labstack/echo/v4"
)

// Rollback reverts the ledger to the height given in the height query or form value.
func (h *HTTP) Rollback(c echo.Context) error {
	heightStr := c.QueryParam("height")
	if heightStr == "" {
		heightStr = c.FormValue("height")
	}

	if heightStr == "" {
		return h.sendLedgerError(c, errors.NewInvalidArgumentError("height is required"))
	}

	target, err := strconv.ParseInt(heightStr, 10, 64)
	if err != nil {
		return h.sendLedgerError(c, errors.NewInvalidArgumentError("height %q is not a number", heightStr, err))
	}

	height, err := h.ledger.RollbackTo(c.Request().Context(), target)
	if err != nil {
		return h.sendLedgerError(c, err)
	}

	prometheusIndexerHTTPRollback.WithLabelValues("OK", "200").Inc()

	return c.JSON(http.StatusOK, &model.HeightResponse{Height: height})
}
