package entity

import "github.com/shopspring/decimal"

// SimplePriceResponse is the body of CoinGecko /simple/price:
// coin id -> vs currency -> price. Prices decode exactly into decimals.
type SimplePriceResponse map[string]map[string]decimal.Decimal

// APIError is the error body CoinGecko returns on 4xx/5xx.
type APIError struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Error string `json:"error"`
}

// Message returns the most specific error text in the body.
func (e APIError) Message() string {
	if e.Status.ErrorMessage != "" {
		return e.Status.ErrorMessage
	}
	return e.Error
}
