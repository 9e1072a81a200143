package httpimpl

import (
	"net/http"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/labstack/echo/v4"
)

// GetBalance returns the sum of the unspent outputs of :address. Unknown addresses have 0.
func (h *HTTP) GetBalance(c echo.Context) error {
	address := c.Param("address")
	if address == "" {
		return h.sendLedgerError(c, errors.NewInvalidArgumentError("address is required"))
	}

	balance, err := h.ledger.QueryBalance(c.Request().Context(), address)
	if err != nil {
		return h.sendLedgerError(c, err)
	}

	prometheusIndexerHTTPGetBalance.WithLabelValues("OK", "200").Inc()

	return c.JSON(http.StatusOK, &model.BalanceResponse{Address: address, Balance: balance})
}
