package restapi

import (
	"net/http"
	"strings"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// session находит открытую сессию по :id. Ответ об ошибке пишется здесь же.
func (h *Handler) session(c *gin.Context) (port.TransferSession, bool) {
	if h.sessions == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "transfer sessions are not configured"})
		return nil, false
	}
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "transfer session not found"})
		return nil, false
	}
	return s, true
}

// OpenTransferSessionHandler открывает сессию перевода для актива и сети.
// Оценка комиссии стартует сразу.
func (h *Handler) OpenTransferSessionHandler(c *gin.Context) {
	if h.sessions == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "transfer sessions are not configured"})
		return
	}
	var req sessionOpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	view, found := h.wallet.Asset(req.Asset)
	if !found {
		c.JSON(http.StatusNotFound, errorResponse{Error: "asset " + strings.ToLower(req.Asset) + " is not enabled"})
		return
	}

	s, err := h.sessions.Open(view, req.Network)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(s.Status()))
}

// GetTransferSessionHandler возвращает состояние сессии.
func (h *Handler) GetTransferSessionHandler(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s.Status()))
}

// EditTransferSessionHandler записывает получателя и сумму и перепроверяет перевод.
func (h *Handler) EditTransferSessionHandler(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req sessionEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	amount := decimal.Zero
	if raw := strings.TrimSpace(req.Amount); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid amount: " + raw})
			return
		}
		amount = v
	}

	if _, err := s.Edit(req.Recipient, amount); err != nil {
		resp := newSessionResponse(s.Status())
		resp.Error = err.Error()
		c.JSON(http.StatusConflict, resp)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s.Status()))
}

// RetryFeeHandler запускает повторную оценку комиссии.
func (h *Handler) RetryFeeHandler(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.RetryFee()
	c.JSON(http.StatusAccepted, newSessionResponse(s.Status()))
}

// SubmitTransferSessionHandler отправляет готовый перевод. Сессия не в
// состоянии ready дает 409, ошибка wallet core дает 502 и состояние failed.
func (h *Handler) SubmitTransferSessionHandler(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if _, err := s.Submit(c.Request.Context()); err != nil {
		resp := newSessionResponse(s.Status())
		resp.Error = err.Error()
		status := http.StatusConflict
		if resp.State == entity.TransferFailed {
			status = http.StatusBadGateway
		}
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(s.Status()))
}

// ResumeTransferSessionHandler возвращает неудавшуюся сессию в ready.
func (h *Handler) ResumeTransferSessionHandler(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Resume(); err != nil {
		resp := newSessionResponse(s.Status())
		resp.Error = err.Error()
		c.JSON(http.StatusConflict, resp)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s.Status()))
}

// CloseTransferSessionHandler закрывает сессию.
func (h *Handler) CloseTransferSessionHandler(c *gin.Context) {
	if h.sessions == nil || !h.sessions.Close(c.Param("id")) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "transfer session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
