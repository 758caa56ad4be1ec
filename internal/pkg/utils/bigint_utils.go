package utils

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatUnits converts an integer amount in the smallest unit (wei, sun,
// satoshi) into a decimal amount of the whole coin.
// Example: amount=1234500000000000000, decimals=18 => 1.2345
func FormatUnits(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// ParseUnits is the inverse of FormatUnits. Amounts with more fraction
// digits than decimals are rejected rather than silently truncated.
func ParseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("negative decimals: %d", decimals)
	}
	shifted := amount.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("amount %s has more than %d fraction digits", amount.String(), decimals)
	}
	return shifted.BigInt(), nil
}
