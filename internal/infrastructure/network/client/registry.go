package client

import (
	"sort"
	"strings"
	"sync"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/infrastructure/configloader"

	"go.uber.org/zap"
)

// FeeOracleRegistry maps network ids to the oracle quoting them.
type FeeOracleRegistry struct {
	oracles map[string]port.FeeOracle
	mu      sync.RWMutex
}

func NewFeeOracleRegistry() *FeeOracleRegistry {
	return &FeeOracleRegistry{
		oracles: make(map[string]port.FeeOracle),
	}
}

// Register adds or replaces the oracle of a network.
func (r *FeeOracleRegistry) Register(networkID string, oracle port.FeeOracle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.oracles[strings.ToLower(networkID)] = oracle
}

// Oracle retrieves the oracle of a network.
func (r *FeeOracleRegistry) Oracle(networkID string) (port.FeeOracle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.oracles[strings.ToLower(networkID)]
	return o, ok
}

// List returns the registered network ids, sorted.
func (r *FeeOracleRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.oracles))
	for id := range r.oracles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BuildFeeRegistry wires an oracle for every catalog network it can serve.
// Precedence: wallet-core networks, then static fees, then EVM gas price.
// Networks left without an oracle report fee unavailable.
func BuildFeeRegistry(
	cfg *configloader.Config,
	catalog port.Catalog,
	core port.WalletCore,
	provider port.GasPriceClientProvider,
	logger *zap.Logger,
) (*FeeOracleRegistry, error) {
	log := logger.Named("FeeRegistry")
	registry := NewFeeOracleRegistry()

	var evmNetworks = make(map[string]bool)
	for _, n := range cfg.Networks {
		if len(n.RPCURLs) > 0 {
			evmNetworks[strings.ToLower(n.ID)] = true
		}
	}

	var evmOracle port.FeeOracle
	if provider != nil {
		evmOracle = NewEVMFeeOracle(provider, catalog, cfg.Fees.EVM, logger)
	}
	for _, n := range catalog.Networks() {
		if n.AddressFormat == entity.AddressFormatEVM && evmNetworks[n.ID] && evmOracle != nil {
			registry.Register(n.ID, evmOracle)
		}
	}

	if len(cfg.Fees.Static) > 0 {
		static, err := NewStaticFeeOracle(cfg.Fees.Static)
		if err != nil {
			return nil, err
		}
		for _, id := range static.(*staticFeeOracle).networks() {
			if _, ok := catalog.Network(id); !ok {
				log.Warn("Static fee for unknown network ignored", zap.String("network", id))
				continue
			}
			registry.Register(id, static)
		}
	}

	if core != nil {
		walletCoreOracle := NewWalletCoreFeeOracle(core)
		for _, id := range cfg.Fees.WalletCoreNetworks {
			if _, ok := catalog.Network(id); !ok {
				log.Warn("Wallet-core fee network is not in the catalog", zap.String("network", id))
				continue
			}
			registry.Register(id, walletCoreOracle)
		}
	}

	for _, n := range catalog.Networks() {
		if _, ok := registry.Oracle(n.ID); !ok {
			log.Warn("No fee oracle for network, fees will be unavailable", zap.String("network", n.ID))
		}
	}
	log.Info("Fee oracles registered", zap.Strings("networks", registry.List()))
	return registry, nil
}

var _ port.FeeOracleRegistry = (*FeeOracleRegistry)(nil)
