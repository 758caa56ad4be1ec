package client

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/infrastructure/configloader"

	"go.uber.org/zap"
)

const (
	defaultProviderConnectionTimeout = 10 * time.Second
)

// DialFunc opens a gas-price client for a network.
type DialFunc func(network configloader.NetworkConfig, connectionTimeout, rpcCallTimeout time.Duration) (port.GasPriceClient, error)

// evmClientProvider implements port.GasPriceClientProvider.
type evmClientProvider struct {
	networks          map[string]configloader.NetworkConfig
	clients           map[string]port.GasPriceClient
	mu                sync.Mutex
	logger            *zap.Logger
	dial              DialFunc
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

// NewEVMClientProvider creates a provider for the EVM networks of cfg that
// have RPC endpoints.
func NewEVMClientProvider(cfg *configloader.Config, logger *zap.Logger) port.GasPriceClientProvider {
	return NewEVMClientProviderWithDialer(cfg, logger, NewEVMClient)
}

// NewEVMClientProviderWithDialer is NewEVMClientProvider with a custom dialer.
func NewEVMClientProviderWithDialer(cfg *configloader.Config, logger *zap.Logger, dial DialFunc) port.GasPriceClientProvider {
	networks := make(map[string]configloader.NetworkConfig)
	for _, n := range cfg.Networks {
		if len(n.RPCURLs) == 0 {
			continue
		}
		networks[strings.ToLower(n.ID)] = n
	}
	return &evmClientProvider{
		networks:          networks,
		clients:           make(map[string]port.GasPriceClient),
		logger:            logger.Named("EVMClientProvider"),
		dial:              dial,
		connectionTimeout: defaultProviderConnectionTimeout,
		rpcCallTimeout:    cfg.RPCCallTimeout(),
	}
}

// GetClient returns a cached client, dialing on first use. Failed dials are
// not cached so the next estimate tries again.
func (p *evmClientProvider) GetClient(networkID string) (port.GasPriceClient, error) {
	networkID = strings.ToLower(networkID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[networkID]; exists {
		return client, nil
	}

	network, ok := p.networks[networkID]
	if !ok {
		return nil, fmt.Errorf("no RPC endpoints configured for network %s", networkID)
	}

	p.logger.Info("Creating new EVM client", zap.String("network", networkID), zap.Strings("rpc_urls", network.RPCURLs))
	newClient, err := p.dial(network, p.connectionTimeout, p.rpcCallTimeout)
	if err != nil {
		p.logger.Error("Failed to create EVM client", zap.String("network", networkID), zap.Error(err))
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", networkID, err)
	}

	p.clients[networkID] = newClient
	p.logger.Info("Successfully created and cached new EVM client", zap.String("network", networkID))
	return newClient, nil
}

// Close closes every cached client.
func (p *evmClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}
