package httpimpl

import (
	"math/bits"
	"net/http"
	"strconv"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/labstack/echo/v4"
)

// GetUTXOs lists the unspent outputs of :address together with their sum.
func (h *HTTP) GetUTXOs(c echo.Context) error {
	address := c.Param("address")
	if address == "" {
		return h.sendLedgerError(c, errors.NewInvalidArgumentError("address is required"))
	}

	utxos, err := h.ledger.GetUTXOs(c.Request().Context(), address)
	if err != nil {
		return h.sendLedgerError(c, err)
	}

	var balance, carry uint64
	for _, u := range utxos {
		if balance, carry = bits.Add64(balance, u.Value, 0); carry != 0 {
			return h.sendLedgerError(c, errors.NewProcessingError("balance of %s overflows", address))
		}
	}

	prometheusIndexerHTTPGetUTXO.WithLabelValues("OK", "200").Inc()

	return c.JSON(http.StatusOK, &model.UTXOsResponse{Address: address, Balance: balance, UTXOs: utxos})
}

// GetUTXO returns the output :txid::index whether spent or not.
func (h *HTTP) GetUTXO(c echo.Context) error {
	txID := c.Param("txid")
	if txID == "" {
		return h.sendLedgerError(c, errors.NewInvalidArgumentError("txid is required"))
	}

	index, err := strconv.ParseUint(c.Param("index"), 10, 32)
	if err != nil {
		return h.sendLedgerError(c, errors.NewInvalidArgumentError("invalid output index %q", c.Param("index"), err))
	}

	utxo, err := h.ledger.GetUTXO(c.Request().Context(), model.Outpoint{TxID: txID, Index: uint32(index)})
	if err != nil {
		if errors.Is(err, errors.ErrUtxoNotFound) {
			return sendError(c, http.StatusNotFound, int32(errors.ERR_UTXO_NOT_FOUND), err)
		}

		return h.sendLedgerError(c, err)
	}

	prometheusIndexerHTTPGetUTXO.WithLabelValues("OK", "200").Inc()

	return c.JSON(http.StatusOK, utxo)
}
