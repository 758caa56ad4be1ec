// Package walletcore contains clients for the wallet-core collaborator that
// owns keys, signing and broadcast.
package walletcore

import (
	"time"

	"wallet_engine/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type balancesResponse struct {
	Balances []entity.BalanceRecord `json:"balances"`
}

type transactionsResponse struct {
	Transactions []entity.TransactionRecord `json:"transactions"`
}

type addressesResponse struct {
	Addresses map[string]string `json:"addresses"`
}

// transferRequest mirrors sendTransfer(network, accountIndex, amount, recipientAddress, denomination).
type transferRequest struct {
	IntentID         string `json:"intentId"`
	Network          string `json:"network"`
	AccountIndex     int    `json:"accountIndex"`
	Amount           string `json:"amount"`
	RecipientAddress string `json:"recipientAddress"`
	Denomination     string `json:"denomination"`
}

type transferResponse struct {
	TransactionHash string    `json:"transactionHash"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

type quoteRequest struct {
	Network      string `json:"network"`
	Denomination string `json:"denomination"`
	Amount       string `json:"amount,omitempty"`
}

type quoteResponse struct {
	Fee             decimal.Decimal `json:"fee"`
	FeeDenomination string          `json:"feeDenomination"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Snapshot is the on-disk fixture format read by the file client.
type Snapshot struct {
	Balances     []entity.BalanceRecord     `json:"balances"`
	Transactions []entity.TransactionRecord `json:"transactions"`
	Addresses    map[string]string          `json:"addresses"`
	// Fees are fixed quotes per network id, used by QuoteTransfer.
	Fees map[string]SnapshotFee `json:"fees,omitempty"`
}

// SnapshotFee is a fixed fee quote in a fixture.
type SnapshotFee struct {
	Fee             decimal.Decimal `json:"fee"`
	FeeDenomination string          `json:"feeDenomination"`
}
