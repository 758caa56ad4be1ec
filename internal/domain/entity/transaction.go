package entity

import "github.com/shopspring/decimal"

// TransactionRecord is a historical transfer reported by the wallet core.
// Timestamp is in milliseconds since the Unix epoch.
type TransactionRecord struct {
	From            string `json:"from"`
	To              string `json:"to"`
	Amount          string `json:"amount"`
	Denomination    string `json:"denomination"`
	Network         string `json:"network"`
	Timestamp       int64  `json:"timestamp"`
	TransactionHash string `json:"transactionHash"`
}

// Direction tells whether a transaction left or entered the wallet.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// TransactionView is a history entry enriched with fiat value and direction.
type TransactionView struct {
	ID           string          `json:"id"`
	Direction    Direction       `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	AmountFiat   decimal.Decimal `json:"amountFiat"`
	Denomination string          `json:"denomination"`
	Name         string          `json:"name"`
	Counterparty string          `json:"counterparty"`
	Network      string          `json:"network"`
	NetworkName  string          `json:"networkName"`
	Timestamp    int64           `json:"timestamp"`
}
