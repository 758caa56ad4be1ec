package restapi

import (
	"time"

	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/pkg/format"

	"github.com/shopspring/decimal"
)

// APIPortfolioResponse определяет структуру ответа для эндпоинта портфеля.
type APIPortfolioResponse struct {
	Data          portfolioData    `json:"data"`
	DataGaps      []entity.DataGap `json:"dataGaps,omitempty"`
	StatusMessage string           `json:"statusMessage"`
}

type portfolioData struct {
	Fiat               string          `json:"fiat"`
	TotalFiat          decimal.Decimal `json:"totalFiat"`
	TotalFiatFormatted string          `json:"totalFiatFormatted"`
	Assets             []assetResponse `json:"assets"`
	Version            uint64          `json:"version"`
}

type assetResponse struct {
	Denomination              string            `json:"denomination"`
	Name                      string            `json:"name"`
	DisplaySymbol             string            `json:"displaySymbol"`
	TotalBalance              decimal.Decimal   `json:"totalBalance"`
	TotalBalanceFormatted     string            `json:"totalBalanceFormatted"`
	TotalBalanceFiat          decimal.Decimal   `json:"totalBalanceFiat"`
	TotalBalanceFiatFormatted string            `json:"totalBalanceFiatFormatted"`
	Price                     decimal.Decimal   `json:"price"`
	PriceFormatted            string            `json:"priceFormatted"`
	PriceStale                bool              `json:"priceStale"`
	HasBalance                bool              `json:"hasBalance"`
	PerNetwork                []networkResponse `json:"perNetwork"`
}

type networkResponse struct {
	NetworkID            string          `json:"networkId"`
	Name                 string          `json:"name"`
	Balance              decimal.Decimal `json:"balance"`
	BalanceFormatted     string          `json:"balanceFormatted"`
	BalanceFiat          decimal.Decimal `json:"balanceFiat"`
	BalanceFiatFormatted string          `json:"balanceFiatFormatted"`
	HasBalance           bool            `json:"hasBalance"`
}

func newAssetResponse(v entity.AssetView, fiat string) assetResponse {
	out := assetResponse{
		Denomination:              v.Denomination,
		Name:                      v.Name,
		DisplaySymbol:             v.DisplaySymbol,
		TotalBalance:              v.TotalBalance,
		TotalBalanceFormatted:     format.TokenAmount(v.TotalBalance, v.Denomination),
		TotalBalanceFiat:          v.TotalBalanceFiat,
		TotalBalanceFiatFormatted: format.FiatValue(v.TotalBalanceFiat, fiat),
		Price:                     v.Price,
		PriceFormatted:            format.FiatValue(v.Price, fiat),
		PriceStale:                v.PriceStale,
		HasBalance:                v.HasBalance,
		PerNetwork:                make([]networkResponse, 0, len(v.PerNetwork)),
	}
	if out.DisplaySymbol == "" {
		out.DisplaySymbol = format.DisplaySymbol(v.Denomination)
	}
	for _, nv := range v.PerNetwork {
		out.PerNetwork = append(out.PerNetwork, networkResponse{
			NetworkID:            nv.NetworkID,
			Name:                 nv.Name,
			Balance:              nv.Balance,
			BalanceFormatted:     format.TokenAmount(nv.Balance, v.Denomination),
			BalanceFiat:          nv.BalanceFiat,
			BalanceFiatFormatted: format.FiatValue(nv.BalanceFiat, fiat),
			HasBalance:           nv.HasBalance,
		})
	}
	return out
}

type refreshResponse struct {
	Version     uint64    `json:"version"`
	RefreshedAt time.Time `json:"refreshedAt"`
	Records     int       `json:"records"`
	Error       string    `json:"error,omitempty"`
}

type enabledAssetsRequest struct {
	Assets []string `json:"assets" binding:"required"`
}

type enabledAssetsResponse struct {
	EnabledAssets []string `json:"enabledAssets"`
	Version       uint64   `json:"version"`
}

type feeResponse struct {
	Status          entity.FeeStatus `json:"status"`
	Fee             *decimal.Decimal `json:"fee,omitempty"`
	FeeDenomination string           `json:"feeDenomination,omitempty"`
	FeeFormatted    string           `json:"feeFormatted,omitempty"`
	Error           string           `json:"error,omitempty"`
	EstimatedAt     time.Time        `json:"estimatedAt"`
}

func newFeeResponse(est entity.FeeEstimate) feeResponse {
	out := feeResponse{
		Status:          est.Status(),
		Fee:             est.Fee,
		FeeDenomination: est.FeeDenomination,
		Error:           est.Error,
		EstimatedAt:     est.EstimatedAt,
	}
	if est.Fee != nil {
		out.FeeFormatted = format.TokenAmount(*est.Fee, est.FeeDenomination)
	}
	return out
}

// transferRequest is the body shared by the transfer endpoints.
type transferRequest struct {
	Asset     string `json:"asset" binding:"required"`
	Network   string `json:"network" binding:"required"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type validateResponse struct {
	entity.ValidationResult
	Fee feeResponse `json:"fee"`
}

type maxAmountResponse struct {
	Amount          decimal.Decimal `json:"amount"`
	AmountFormatted string          `json:"amountFormatted"`
	FeeDeducted     bool            `json:"feeDeducted"`
	Fee             feeResponse     `json:"fee"`
}

type submitResponse struct {
	entity.SubmissionResult
	Network      string `json:"network"`
	Denomination string `json:"denomination"`
	Amount       string `json:"amountFormatted"`
	Recipient    string `json:"recipient"`
}

type transactionResponse struct {
	entity.TransactionView
	AmountFormatted       string `json:"amountFormatted"`
	AmountFiatFormatted   string `json:"amountFiatFormatted"`
	CounterpartyFormatted string `json:"counterpartyFormatted"`
}

type transactionsResponse struct {
	Data  []transactionResponse `json:"data"`
	Error string                `json:"error,omitempty"`
}

type sessionOpenRequest struct {
	Asset   string `json:"asset" binding:"required"`
	Network string `json:"network" binding:"required"`
}

type sessionEditRequest struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type sessionResponse struct {
	ID              string                   `json:"id"`
	Denomination    string                   `json:"denomination"`
	Network         string                   `json:"network"`
	State           entity.TransferState     `json:"state"`
	Recipient       string                   `json:"recipient"`
	Amount          decimal.Decimal          `json:"amount"`
	AmountFormatted string                   `json:"amountFormatted"`
	Fee             feeResponse              `json:"fee"`
	Validation      entity.ValidationResult  `json:"validation"`
	Result          *entity.SubmissionResult `json:"result,omitempty"`
	Error           string                   `json:"error,omitempty"`
}

func newSessionResponse(st entity.TransferSessionStatus) sessionResponse {
	return sessionResponse{
		ID:              st.ID,
		Denomination:    st.Denomination,
		Network:         st.NetworkID,
		State:           st.State,
		Recipient:       st.Recipient,
		Amount:          st.Amount,
		AmountFormatted: format.TokenAmount(st.Amount, st.Denomination),
		Fee:             newFeeResponse(st.Fee),
		Validation:      st.Validation,
		Result:          st.Result,
		Error:           st.Error,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}
