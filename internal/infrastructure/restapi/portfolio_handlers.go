package restapi

import (
	"context"
	"net/http"
	"strings"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/pkg/format"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Handler обрабатывает HTTP запросы кошелька: портфель, комиссии, переводы и историю.
type Handler struct {
	wallet    port.WalletService
	transfers port.TransferService
	sessions  port.TransferSessionStore
	fees      port.FeeService
	history   port.HistoryService
	fiat      string
	logger    port.Logger
}

// NewHandler создает новый экземпляр Handler. sessions, fees и history могут быть nil.
func NewHandler(
	wallet port.WalletService,
	transfers port.TransferService,
	sessions port.TransferSessionStore,
	fees port.FeeService,
	history port.HistoryService,
	fiat string,
	l port.Logger,
) *Handler {
	return &Handler{
		wallet:    wallet,
		transfers: transfers,
		sessions:  sessions,
		fees:      fees,
		history:   history,
		fiat:      strings.ToLower(fiat),
		logger:    l.With("component", "restapi"),
	}
}

// GetPortfolioHandler возвращает агрегированный портфель по всем включенным активам.
func (h *Handler) GetPortfolioHandler(c *gin.Context) {
	p := h.wallet.Portfolio()

	response := APIPortfolioResponse{
		Data: portfolioData{
			Fiat:               p.Fiat,
			TotalFiat:          p.TotalFiat,
			TotalFiatFormatted: format.FiatValue(p.TotalFiat, p.Fiat),
			Assets:             make([]assetResponse, 0, len(p.Assets)),
			Version:            p.Version,
		},
		DataGaps: p.Gaps,
	}
	for _, v := range p.Assets {
		response.Data.Assets = append(response.Data.Assets, newAssetResponse(v, p.Fiat))
	}

	// пробелы в данных не считаются ошибкой, только диагностикой
	switch {
	case len(p.Assets) == 0:
		response.StatusMessage = "No assets enabled."
	case len(p.Gaps) > 0:
		response.StatusMessage = "Portfolio retrieved. Some balance records were skipped."
	default:
		response.StatusMessage = "Portfolio retrieved successfully."
	}

	c.JSON(http.StatusOK, response)
}

// GetAssetHandler возвращает представление одного включенного актива.
func (h *Handler) GetAssetHandler(c *gin.Context) {
	denom := c.Param("denomination")
	view, ok := h.wallet.Asset(denom)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "asset " + strings.ToLower(denom) + " is not enabled"})
		return
	}
	c.JSON(http.StatusOK, newAssetResponse(view, h.currency()))
}

// RefreshBalancesHandler перечитывает балансы из wallet core. Ошибка обновления
// возвращается в поле error вместе с предыдущим снапшотом.
func (h *Handler) RefreshBalancesHandler(c *gin.Context) {
	snap, err := h.wallet.RefreshBalances(c.Request.Context())
	resp := refreshResponse{
		Version:     snap.Version,
		RefreshedAt: snap.RefreshedAt,
		Records:     len(snap.Balances),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// SetEnabledAssetsHandler заменяет список включенных активов.
func (h *Handler) SetEnabledAssetsHandler(c *gin.Context) {
	var req enabledAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	snap := h.wallet.SetEnabledAssets(req.Assets)
	c.JSON(http.StatusOK, enabledAssetsResponse{EnabledAssets: snap.EnabledAssets, Version: snap.Version})
}

// GetFeeHandler оценивает комиссию для GET /fees?network=&asset=&amount=.
func (h *Handler) GetFeeHandler(c *gin.Context) {
	network := c.Query("network")
	asset := c.Query("asset")
	if network == "" || asset == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "network and asset are required"})
		return
	}

	var amount *decimal.Decimal
	if raw := strings.TrimSpace(c.Query("amount")); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid amount: " + raw})
			return
		}
		amount = &v
	}

	c.JSON(http.StatusOK, newFeeResponse(h.estimateFee(c.Request.Context(), network, asset, amount)))
}

// ListTransactionsHandler возвращает историю переводов, новые первыми.
func (h *Handler) ListTransactionsHandler(c *gin.Context) {
	resp := transactionsResponse{Data: []transactionResponse{}}
	if h.history == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	views, err := h.history.List(c.Request.Context())
	if err != nil {
		h.logger.Warn("Failed to list transactions", "error", err)
		resp.Error = err.Error()
		c.JSON(http.StatusOK, resp)
		return
	}

	fiat := h.currency()
	for _, v := range views {
		resp.Data = append(resp.Data, transactionResponse{
			TransactionView:       v,
			AmountFormatted:       format.TokenAmount(v.Amount, v.Denomination),
			AmountFiatFormatted:   format.FiatValue(v.AmountFiat, fiat),
			CounterpartyFormatted: format.ShortAddress(v.Counterparty),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) estimateFee(ctx context.Context, network, asset string, amount *decimal.Decimal) entity.FeeEstimate {
	if h.fees == nil {
		return entity.FeeEstimate{}
	}
	return h.fees.Estimate(ctx, entity.FeeRequest{
		NetworkID:    strings.ToLower(strings.TrimSpace(network)),
		Denomination: strings.ToLower(strings.TrimSpace(asset)),
		Amount:       amount,
	})
}

func (h *Handler) currency() string {
	if h.fiat != "" {
		return h.fiat
	}
	return h.wallet.Portfolio().Fiat
}
