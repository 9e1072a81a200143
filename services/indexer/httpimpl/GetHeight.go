package httpimpl

import (
	"net/http"

	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/labstack/echo/v4"
)

func (h *HTTP) GetHeight(c echo.Context) error {
	height, err := h.ledger.GetBestHeight(c.Request().Context())
	if err != nil {
		return h.sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, &model.HeightResponse{Height: height})
}
