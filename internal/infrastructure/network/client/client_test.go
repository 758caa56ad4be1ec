package client

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/infrastructure/catalog"
	"wallet_engine/internal/infrastructure/configloader"
	"wallet_engine/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGasClient struct {
	price  *big.Int
	err    error
	closed atomic.Bool
}

func (c *fakeGasClient) SuggestGasPrice(context.Context) (*big.Int, error) {
	return c.price, c.err
}

func (c *fakeGasClient) Close() { c.closed.Store(true) }

type fakeCore struct {
	port.WalletCore
	fee entity.Fee
}

func (c fakeCore) QuoteTransfer(context.Context, entity.FeeRequest) (entity.Fee, error) {
	return c.fee, nil
}

func testConfig() *configloader.Config {
	cfg, err := configloader.Parse([]byte(`
networks:
  - id: ethereum
    rpcURLs: ["http://primary.invalid", "http://fallback.invalid"]
  - id: polygon
fees:
  walletCoreNetworks: [segwit, unknownnet]
  static:
    - network: tron
      denomination: usdt
      fee: "1.1"
      feeDenomination: trx
    - network: tron
      fee: "0"
      feeDenomination: trx
`))
	if err != nil {
		panic(err)
	}
	return cfg
}

func testCatalog(t *testing.T) port.Catalog {
	t.Helper()
	c, err := catalog.New(catalog.BuiltinNetworks(), catalog.BuiltinAssets(), logger.Nop())
	require.NoError(t, err)
	return c
}

func TestEVMClientProviderCachesClients(t *testing.T) {
	var dials atomic.Int32
	gas := &fakeGasClient{price: big.NewInt(1)}
	provider := NewEVMClientProviderWithDialer(testConfig(), zap.NewNop(),
		func(n configloader.NetworkConfig, _, rpcTimeout time.Duration) (port.GasPriceClient, error) {
			dials.Add(1)
			assert.Equal(t, "ethereum", n.ID)
			assert.Equal(t, 10*time.Second, rpcTimeout)
			return gas, nil
		})

	c1, err := provider.GetClient("Ethereum")
	require.NoError(t, err)
	c2, err := provider.GetClient("ethereum")
	require.NoError(t, err)
	assert.Same(t, c1, c2)
	assert.Equal(t, int32(1), dials.Load())

	_, err = provider.GetClient("polygon")
	assert.Error(t, err, "network without RPC URLs has no client")

	provider.(*evmClientProvider).Close()
	assert.True(t, gas.closed.Load())
}

func TestEVMClientProviderDoesNotCacheFailures(t *testing.T) {
	var dials atomic.Int32
	provider := NewEVMClientProviderWithDialer(testConfig(), zap.NewNop(),
		func(configloader.NetworkConfig, time.Duration, time.Duration) (port.GasPriceClient, error) {
			if dials.Add(1) == 1 {
				return nil, errors.New("dial refused")
			}
			return &fakeGasClient{price: big.NewInt(1)}, nil
		})

	_, err := provider.GetClient("ethereum")
	require.Error(t, err)
	_, err = provider.GetClient("ethereum")
	require.NoError(t, err)
}

func TestNewEVMClientRequiresRPC(t *testing.T) {
	_, err := NewEVMClient(configloader.NetworkConfig{NetworkDescriptor: entity.NetworkDescriptor{ID: "ethereum"}}, time.Second, time.Second)
	assert.Error(t, err)
}

type staticProvider struct{ client port.GasPriceClient }

func (p staticProvider) GetClient(string) (port.GasPriceClient, error) { return p.client, nil }

func TestEVMFeeOracle(t *testing.T) {
	// 20 gwei
	gas := &fakeGasClient{price: big.NewInt(20_000_000_000)}
	oracle := NewEVMFeeOracle(staticProvider{gas}, testCatalog(t), configloader.EVMFeeConfig{NativeGasLimit: 21000, TokenGasLimit: 65000}, zap.NewNop())

	fee, err := oracle.EstimateFee(context.Background(), entity.FeeRequest{NetworkID: "ethereum", Denomination: "usdt"})
	require.NoError(t, err)
	assert.Equal(t, "eth", fee.Denomination)
	assert.True(t, decimal.RequireFromString("0.0013").Equal(fee.Amount), fee.Amount.String())

	fee, err = oracle.EstimateFee(context.Background(), entity.FeeRequest{NetworkID: "ethereum", Denomination: "eth"})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.00042").Equal(fee.Amount), fee.Amount.String())

	assert.False(t, oracle.AmountSensitive("ethereum", "usdt"))

	_, err = oracle.EstimateFee(context.Background(), entity.FeeRequest{NetworkID: "nowhere", Denomination: "usdt"})
	assert.Error(t, err)

	gas.err = errors.New("node down")
	_, err = oracle.EstimateFee(context.Background(), entity.FeeRequest{NetworkID: "ethereum", Denomination: "usdt"})
	assert.ErrorContains(t, err, "node down")
}

func TestStaticFeeOracle(t *testing.T) {
	oracle, err := NewStaticFeeOracle(testConfig().Fees.Static)
	require.NoError(t, err)
	ctx := context.Background()

	fee, err := oracle.EstimateFee(ctx, entity.FeeRequest{NetworkID: "tron", Denomination: "usdt"})
	require.NoError(t, err)
	assert.Equal(t, "trx", fee.Denomination)
	assert.True(t, decimal.RequireFromString("1.1").Equal(fee.Amount))

	fee, err = oracle.EstimateFee(ctx, entity.FeeRequest{NetworkID: "TRON", Denomination: "trx"})
	require.NoError(t, err)
	assert.True(t, fee.Amount.IsZero(), "wildcard entry")

	_, err = oracle.EstimateFee(ctx, entity.FeeRequest{NetworkID: "ton", Denomination: "usdt"})
	assert.Error(t, err)

	_, err = NewStaticFeeOracle([]configloader.StaticFeeConfig{{Network: "tron", Fee: "abc", FeeDenomination: "trx"}})
	assert.Error(t, err)
	_, err = NewStaticFeeOracle([]configloader.StaticFeeConfig{{Network: "tron", Fee: "-1", FeeDenomination: "trx"}})
	assert.Error(t, err)
}

func TestBuildFeeRegistry(t *testing.T) {
	cfg := testConfig()
	core := fakeCore{fee: entity.Fee{Amount: decimal.RequireFromString("0.0001"), Denomination: "btc"}}
	provider := staticProvider{&fakeGasClient{price: big.NewInt(1)}}

	registry, err := BuildFeeRegistry(cfg, testCatalog(t), core, provider, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"ethereum", "segwit", "tron"}, registry.List())

	segwit, ok := registry.Oracle("segwit")
	require.True(t, ok)
	assert.True(t, segwit.AmountSensitive("segwit", "btc"))
	fee, err := segwit.EstimateFee(context.Background(), entity.FeeRequest{NetworkID: "segwit", Denomination: "btc"})
	require.NoError(t, err)
	assert.Equal(t, "btc", fee.Denomination)

	_, ok = registry.Oracle("polygon")
	assert.False(t, ok, "EVM network without RPC endpoints")

	_, ok = registry.Oracle("ton")
	assert.False(t, ok)
}
