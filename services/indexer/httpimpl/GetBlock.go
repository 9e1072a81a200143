package httpimpl

import (
	"net/http"
	"strconv"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/labstack/echo/v4"
)

// GetBlock returns the stored record of the block at :height.
func (h *HTTP) GetBlock(c echo.Context) error {
	height, err := strconv.ParseUint(c.Param("height"), 10, 32)
	if err != nil {
		return h.sendLedgerError(c, errors.NewInvalidArgumentError("invalid height %q", c.Param("height"), err))
	}

	block, err := h.ledger.GetBlock(c.Request().Context(), uint32(height))
	if err != nil {
		return h.sendLedgerError(c, err)
	}

	prometheusIndexerHTTPGetBlock.WithLabelValues("OK", "200").Inc()

	return c.JSON(http.StatusOK, block)
}
