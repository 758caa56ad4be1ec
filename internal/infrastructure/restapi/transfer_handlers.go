package restapi

import (
	"fmt"
	"net/http"
	"strings"

	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/pkg/format"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// bindTransfer parses the body and resolves the asset view and fee estimate.
// It writes the error response itself and returns ok=false on failure.
func (h *Handler) bindTransfer(c *gin.Context) (req transferRequest, amount decimal.Decimal, view entity.AssetView, fee entity.FeeEstimate, ok bool) {
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return req, amount, view, fee, false
	}

	amount = decimal.Zero
	if raw := strings.TrimSpace(req.Amount); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid amount: " + raw})
			return req, amount, view, fee, false
		}
		amount = v
	}

	view, found := h.wallet.Asset(req.Asset)
	if !found {
		c.JSON(http.StatusNotFound, errorResponse{Error: "asset " + strings.ToLower(req.Asset) + " is not enabled"})
		return req, amount, view, fee, false
	}

	var feeAmount *decimal.Decimal
	if amount.IsPositive() {
		feeAmount = &amount
	}
	fee = h.estimateFee(c.Request.Context(), req.Network, view.Denomination, feeAmount)
	return req, amount, view, fee, true
}

// ValidateTransferHandler проверяет перевод без отправки. Невалидный перевод
// возвращается с кодом 422 и списком кодов ошибок.
func (h *Handler) ValidateTransferHandler(c *gin.Context) {
	req, amount, view, fee, ok := h.bindTransfer(c)
	if !ok {
		return
	}

	result := h.transfers.Validate(req.Recipient, amount, view, req.Network, fee)
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, validateResponse{ValidationResult: result, Fee: newFeeResponse(fee)})
}

// MaxAmountHandler возвращает максимальную сумму для выбранной сети.
func (h *Handler) MaxAmountHandler(c *gin.Context) {
	req, _, view, fee, ok := h.bindTransfer(c)
	if !ok {
		return
	}

	m := h.transfers.ComposeMaxAmount(view, req.Network, fee)
	c.JSON(http.StatusOK, maxAmountResponse{
		Amount:          m.Amount,
		AmountFormatted: format.TokenAmount(m.Amount, view.Denomination),
		FeeDeducted:     m.FeeDeducted,
		Fee:             newFeeResponse(fee),
	})
}

// SubmitTransferHandler валидирует и отправляет перевод. Ошибка отправки
// возвращается с кодом 502, повторная отправка остается за клиентом.
func (h *Handler) SubmitTransferHandler(c *gin.Context) {
	req, amount, view, fee, ok := h.bindTransfer(c)
	if !ok {
		return
	}

	intent, result := h.transfers.BuildIntent(req.Recipient, amount, view, req.Network, fee)
	if !result.Valid {
		c.JSON(http.StatusUnprocessableEntity, validateResponse{ValidationResult: result, Fee: newFeeResponse(fee)})
		return
	}

	res, err := h.transfers.Submit(c.Request.Context(), intent)
	if err != nil {
		c.JSON(http.StatusBadGateway, errorResponse{Error: fmt.Sprintf("transfer was not sent: %v", err)})
		return
	}

	c.JSON(http.StatusCreated, submitResponse{
		SubmissionResult: res,
		Network:          intent.NetworkID,
		Denomination:     intent.Denomination,
		Amount:           format.TokenAmount(intent.Amount, intent.Denomination),
		Recipient:        intent.RecipientAddress,
	})
}
