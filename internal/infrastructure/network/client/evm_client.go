package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/infrastructure/configloader"

	"github.com/ethereum/go-ethereum/ethclient"
)

// EVMClient is a gas-price client for an EVM-compatible chain.
type EVMClient struct {
	ethClient      *ethclient.Client
	networkID      string
	rpcURL         string
	rpcCallTimeout time.Duration
}

// NewEVMClient dials the network's RPC endpoints in order and keeps the first
// one that answers.
func NewEVMClient(network configloader.NetworkConfig, connectionTimeout, rpcCallTimeout time.Duration) (port.GasPriceClient, error) {
	if len(network.RPCURLs) == 0 {
		return nil, fmt.Errorf("no RPC URLs configured for network %s", network.ID)
	}
	var lastErr error

	for _, rpcURL := range network.RPCURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err == nil {
			return &EVMClient{ethClient: client, networkID: network.ID, rpcURL: rpcURL, rpcCallTimeout: rpcCallTimeout}, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", network.ID, lastErr)
}

// SuggestGasPrice returns the node's current gas price in wei.
func (c *EVMClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	price, err := c.ethClient.SuggestGasPrice(callCtx)
	if err != nil {
		return nil, fmt.Errorf("eth_gasPrice on %s: %w", c.networkID, err)
	}
	if price == nil || price.Sign() < 0 {
		return nil, errors.New("node returned an invalid gas price")
	}
	return price, nil
}

func (c *EVMClient) Close() {
	c.ethClient.Close()
}
