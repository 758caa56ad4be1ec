package port

import (
	"context"
	"math/big"

	"wallet_engine/internal/domain/entity"
)

// FeeOracle estimates the network cost of a transfer on one or more networks.
type FeeOracle interface {
	EstimateFee(ctx context.Context, req entity.FeeRequest) (entity.Fee, error)
	// AmountSensitive reports whether the fee depends on the transfer amount.
	AmountSensitive(networkID, denomination string) bool
}

// FeeOracleRegistry routes a network to the oracle responsible for it.
type FeeOracleRegistry interface {
	Oracle(networkID string) (FeeOracle, bool)
}

// FeeService computes fee estimates. Failures are returned inside the
// estimate, never as a zero fee.
type FeeService interface {
	Estimate(ctx context.Context, req entity.FeeRequest) entity.FeeEstimate
	AmountSensitive(networkID, denomination string) bool
}

// GasPriceClient is an EVM node connection used for gas-based fee quotes.
type GasPriceClient interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	Close()
}

// GasPriceClientProvider hands out cached node connections per network.
type GasPriceClientProvider interface {
	GetClient(networkID string) (GasPriceClient, error)
}
