package httpimpl

import (
	"io"
	"net/http"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/bsv-blockchain/utxoindexer/util/tracing"
	"github.com/labstack/echo/v4"
)

// SubmitBlock accepts a JSON encoded block and applies it to the ledger.
// A rejected block leaves the ledger untouched and is answered with 400.
func (h *HTTP) SubmitBlock(c echo.Context) error {
	ctx, _, endSpan := tracing.Tracer("indexer").Start(c.Request().Context(), "SubmitBlock",
		tracing.WithDebugLogMessage(h.logger, "[SubmitBlock_http] called"),
	)
	defer endSpan()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return h.sendLedgerError(c, errors.NewInvalidArgumentError("failed to read request body", err))
	}

	block, err := model.NewBlockFromBytes(body)
	if err != nil {
		return h.sendLedgerError(c, err)
	}

	height, err := h.ledger.SubmitBlock(ctx, block)
	if err != nil {
		return h.sendLedgerError(c, err)
	}

	prometheusIndexerHTTPSubmitBlock.WithLabelValues("OK", "200").Inc()

	return c.JSON(http.StatusOK, &model.SubmitBlockResponse{ID: block.ID, Height: height})
}
