package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/infrastructure/configloader"
	"wallet_engine/internal/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const weiDecimals = 18

// evmFeeOracle quotes gasPrice * gasLimit in the network's native coin.
type evmFeeOracle struct {
	provider       port.GasPriceClientProvider
	catalog        port.Catalog
	nativeGasLimit uint64
	tokenGasLimit  uint64
	logger         *zap.Logger
}

// NewEVMFeeOracle creates a gas-price based fee oracle.
func NewEVMFeeOracle(provider port.GasPriceClientProvider, catalog port.Catalog, limits configloader.EVMFeeConfig, logger *zap.Logger) port.FeeOracle {
	return &evmFeeOracle{
		provider:       provider,
		catalog:        catalog,
		nativeGasLimit: limits.NativeGasLimit,
		tokenGasLimit:  limits.TokenGasLimit,
		logger:         logger.Named("EVMFeeOracle"),
	}
}

func (o *evmFeeOracle) EstimateFee(ctx context.Context, req entity.FeeRequest) (entity.Fee, error) {
	network, ok := o.catalog.Network(req.NetworkID)
	if !ok {
		return entity.Fee{}, fmt.Errorf("unknown network %s", req.NetworkID)
	}
	client, err := o.provider.GetClient(network.ID)
	if err != nil {
		return entity.Fee{}, err
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return entity.Fee{}, fmt.Errorf("failed to get gas price: %w", err)
	}

	gasLimit := o.tokenGasLimit
	if strings.EqualFold(req.Denomination, network.NativeDenomination) {
		gasLimit = o.nativeGasLimit
	}
	feeWei := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit))
	fee := utils.FormatUnits(feeWei, weiDecimals)

	o.logger.Debug("EVM fee estimated",
		zap.String("network", network.ID),
		zap.String("denomination", req.Denomination),
		zap.String("gasPriceWei", gasPrice.String()),
		zap.Uint64("gasLimit", gasLimit),
		zap.String("fee", fee.String()))

	return entity.Fee{Amount: fee, Denomination: network.NativeDenomination}, nil
}

// AmountSensitive is false: gas does not depend on the value transferred.
func (o *evmFeeOracle) AmountSensitive(string, string) bool { return false }

type staticFee struct {
	fee             decimal.Decimal
	feeDenomination string
}

// staticFeeOracle serves configured fees. An entry without a denomination
// applies to every denomination on its network.
type staticFeeOracle struct {
	fees map[string]staticFee // key: network|denomination
}

// NewStaticFeeOracle parses the configured static fees.
func NewStaticFeeOracle(entries []configloader.StaticFeeConfig) (port.FeeOracle, error) {
	fees := make(map[string]staticFee, len(entries))
	for i, e := range entries {
		amount, err := decimal.NewFromString(strings.TrimSpace(e.Fee))
		if err != nil {
			return nil, fmt.Errorf("fees.static[%d]: invalid fee %q: %w", i, e.Fee, err)
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("fees.static[%d]: negative fee %q", i, e.Fee)
		}
		fees[staticKey(e.Network, e.Denomination)] = staticFee{fee: amount, feeDenomination: strings.ToLower(e.FeeDenomination)}
	}
	return &staticFeeOracle{fees: fees}, nil
}

func staticKey(network, denomination string) string {
	return strings.ToLower(network) + "|" + strings.ToLower(denomination)
}

func (o *staticFeeOracle) EstimateFee(ctx context.Context, req entity.FeeRequest) (entity.Fee, error) {
	if err := ctx.Err(); err != nil {
		return entity.Fee{}, err
	}
	f, ok := o.fees[staticKey(req.NetworkID, req.Denomination)]
	if !ok {
		f, ok = o.fees[staticKey(req.NetworkID, "")]
	}
	if !ok {
		return entity.Fee{}, fmt.Errorf("no static fee for %s on %s", req.Denomination, req.NetworkID)
	}
	return entity.Fee{Amount: f.fee, Denomination: f.feeDenomination}, nil
}

func (o *staticFeeOracle) AmountSensitive(string, string) bool { return false }

// networks returns the network ids the oracle has fees for.
func (o *staticFeeOracle) networks() []string {
	seen := make(map[string]struct{})
	var out []string
	for key := range o.fees {
		network := key[:strings.IndexByte(key, '|')]
		if _, ok := seen[network]; ok {
			continue
		}
		seen[network] = struct{}{}
		out = append(out, network)
	}
	return out
}

// walletCoreFeeOracle asks the wallet core for a quote. Used for networks
// whose fee depends on the amount, e.g. UTXO selection on bitcoin.
type walletCoreFeeOracle struct {
	core port.WalletCore
}

// NewWalletCoreFeeOracle creates an oracle delegating to the wallet core.
func NewWalletCoreFeeOracle(core port.WalletCore) port.FeeOracle {
	return &walletCoreFeeOracle{core: core}
}

func (o *walletCoreFeeOracle) EstimateFee(ctx context.Context, req entity.FeeRequest) (entity.Fee, error) {
	return o.core.QuoteTransfer(ctx, req)
}

func (o *walletCoreFeeOracle) AmountSensitive(string, string) bool { return true }
