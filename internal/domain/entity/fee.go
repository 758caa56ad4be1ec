package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeRequest describes a single fee quote request sent to a fee oracle.
type FeeRequest struct {
	NetworkID    string
	Denomination string
	Amount       *decimal.Decimal // nil when no amount has been entered yet
}

// Fee is a raw quote returned by a fee oracle.
type Fee struct {
	Amount       decimal.Decimal
	Denomination string
}

// FeeStatus is the derived state of a FeeEstimate.
type FeeStatus string

const (
	FeeStatusPending FeeStatus = "pending"
	FeeStatusReady   FeeStatus = "ready"
	FeeStatusFailed  FeeStatus = "failed"
)

// FeeEstimate is a point-in-time projection of the network cost of a transfer.
// Exactly one of Fee or Error is meaningful; absence of both means the
// estimate has not been computed yet.
type FeeEstimate struct {
	Fee             *decimal.Decimal `json:"fee,omitempty"`
	FeeDenomination string           `json:"feeDenomination,omitempty"`
	Error           string           `json:"error,omitempty"`
	EstimatedAt     time.Time        `json:"estimatedAt,omitempty"`
}

// Status reports whether the estimate is pending, ready or failed.
func (e FeeEstimate) Status() FeeStatus {
	switch {
	case e.Error != "":
		return FeeStatusFailed
	case e.Fee != nil:
		return FeeStatusReady
	default:
		return FeeStatusPending
	}
}

// FeeIn returns the fee when it is available and expressed in the given denomination.
func (e FeeEstimate) FeeIn(denomination string) (decimal.Decimal, bool) {
	if e.Error != "" || e.Fee == nil || e.FeeDenomination != denomination {
		return decimal.Zero, false
	}
	return *e.Fee, true
}

// NewFeeEstimate builds a ready estimate.
func NewFeeEstimate(fee Fee, at time.Time) FeeEstimate {
	amount := fee.Amount
	return FeeEstimate{Fee: &amount, FeeDenomination: fee.Denomination, EstimatedAt: at}
}

// FailedFeeEstimate builds a failed estimate.
func FailedFeeEstimate(reason string, at time.Time) FeeEstimate {
	if reason == "" {
		reason = "fee unavailable"
	}
	return FeeEstimate{Error: reason, EstimatedAt: at}
}
