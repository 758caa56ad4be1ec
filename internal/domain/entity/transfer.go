package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferIntent is a fully validated, ready-to-sign description of an outgoing
// transfer. It is created once per send action and never reused.
type TransferIntent struct {
	ID               string          `json:"id"`
	NetworkID        string          `json:"networkId"`
	Denomination     string          `json:"denomination"`
	Amount           decimal.Decimal `json:"amount"`
	RecipientAddress string          `json:"recipientAddress"`
	AccountIndex     int             `json:"accountIndex"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// SubmissionResult is returned by the wallet core after signing and broadcast.
type SubmissionResult struct {
	IntentID        string    `json:"intentId"`
	TransactionHash string    `json:"transactionHash"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// MaxAmount is the largest sendable amount for a network selection.
type MaxAmount struct {
	Amount      decimal.Decimal `json:"amount"`
	FeeDeducted bool            `json:"feeDeducted"`
}

// TransferState is a step of a single transfer attempt.
type TransferState string

const (
	TransferIdle       TransferState = "idle"
	TransferValidating TransferState = "validating"
	TransferInvalid    TransferState = "invalid"
	TransferEstimating TransferState = "estimating"
	TransferReady      TransferState = "ready"
	TransferSubmitting TransferState = "submitting"
	TransferConfirmed  TransferState = "confirmed"
	TransferFailed     TransferState = "failed"
)

// TransferSessionStatus is a point-in-time view of a server-side transfer session.
type TransferSessionStatus struct {
	ID           string            `json:"id"`
	Denomination string            `json:"denomination"`
	NetworkID    string            `json:"networkId"`
	State        TransferState     `json:"state"`
	Recipient    string            `json:"recipient"`
	Amount       decimal.Decimal   `json:"amount"`
	Fee          FeeEstimate       `json:"fee"`
	Validation   ValidationResult  `json:"validation"`
	Result       *SubmissionResult `json:"result,omitempty"`
	Error        string            `json:"error,omitempty"`
}
