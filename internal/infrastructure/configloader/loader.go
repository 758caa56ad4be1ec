package configloader

import (
	"fmt"
	"os"
	"strings"
	"time"

	"wallet_engine/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "config/config.yml"

// Wallet core modes.
const (
	WalletCoreHTTP = "http"
	WalletCoreFile = "file"
)

// Rate feeds.
const (
	FeedCoinGecko = "coingecko"
	FeedStatic    = "static"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port               string   `yaml:"port"`
	ReadTimeout        int      `yaml:"readTimeout"`  // seconds
	WriteTimeout       int      `yaml:"writeTimeout"` // seconds
	IdleTimeout        int      `yaml:"idleTimeout"`  // seconds
	EnablePprof        bool     `yaml:"enablePprof"`
	CORSAllowedOrigins []string `yaml:"corsAllowedOrigins"`
	TransferSessionTTL int      `yaml:"transferSessionTTL"` // minutes
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	APIKey               string `yaml:"apiKey"`
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	RequestsPerMinute    int    `yaml:"requestsPerMinute"`
	MaxIDsPerRequest     int    `yaml:"maxIDsPerRequest"`
}

// PricingConfig holds configuration for the pricing service.
type PricingConfig struct {
	Feed                   string   `yaml:"feed"`
	FiatCurrencies         []string `yaml:"fiatCurrencies"`
	RefreshIntervalSeconds int      `yaml:"refreshIntervalSeconds"`
	CacheTTLMinutes        int      `yaml:"cacheTTLMinutes"`
	// StaticRates are fallback rates per fiat currency and denomination, e.g. usd: {usdt: "1"}.
	StaticRates map[string]map[string]string `yaml:"staticRates"`
	CoinGecko   CoinGeckoConfig              `yaml:"coingecko"`
}

// StaticFeeConfig fixes the fee of a denomination on a network.
type StaticFeeConfig struct {
	Network         string `yaml:"network"`
	Denomination    string `yaml:"denomination"` // empty matches every denomination on the network
	Fee             string `yaml:"fee"`
	FeeDenomination string `yaml:"feeDenomination"`
}

// EVMFeeConfig holds gas limits used to turn a gas price into a fee.
type EVMFeeConfig struct {
	NativeGasLimit uint64 `yaml:"nativeGasLimit"`
	TokenGasLimit  uint64 `yaml:"tokenGasLimit"`
}

// FeesConfig holds fee oracle configuration.
type FeesConfig struct {
	DebounceMillis int               `yaml:"debounceMillis"`
	EVM            EVMFeeConfig      `yaml:"evm"`
	Static         []StaticFeeConfig `yaml:"static"`
	// WalletCoreNetworks are quoted by the wallet core itself (amount-sensitive models).
	WalletCoreNetworks []string `yaml:"walletCoreNetworks"`
}

// WalletCoreConfig describes how to reach the wallet-core collaborator.
type WalletCoreConfig struct {
	Mode                 string `yaml:"mode"`
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	SnapshotPath         string `yaml:"snapshotPath"`
	AccountIndex         int    `yaml:"accountIndex"`
}

// NetworkConfig is a network descriptor plus the RPC endpoints used for fee quotes.
type NetworkConfig struct {
	entity.NetworkDescriptor `yaml:",inline"`
	ChainID                  uint64   `yaml:"chainID"`
	RPCURLs                  []string `yaml:"rpcURLs"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines int `yaml:"max_concurrent_routines"`
	RPCCallTimeoutSeconds int `yaml:"rpc_call_timeout_seconds"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server        ServerConfig             `yaml:"server"`
	Logging       LoggingConfig            `yaml:"logging"`
	FiatCurrency  string                   `yaml:"fiatCurrency"`
	Pricing       PricingConfig            `yaml:"pricing"`
	Fees          FeesConfig               `yaml:"fees"`
	WalletCore    WalletCoreConfig         `yaml:"walletCore"`
	Networks      []NetworkConfig          `yaml:"networks"`
	Assets        []entity.AssetDescriptor `yaml:"assets"`
	EnabledAssets []string                 `yaml:"enabledAssets"`
	Performance   PerformanceConfig        `yaml:"performance"`
}

// Load reads the YAML configuration file from the given path, unmarshals it
// and back-fills defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals raw YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.TransferSessionTTL <= 0 {
		cfg.Server.TransferSessionTTL = 15
	}
	if len(cfg.Server.CORSAllowedOrigins) == 0 {
		cfg.Server.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	cfg.FiatCurrency = strings.ToLower(strings.TrimSpace(cfg.FiatCurrency))
	if cfg.FiatCurrency == "" {
		cfg.FiatCurrency = "usd"
		logrus.Infof("FiatCurrency not set, defaulting to %s", cfg.FiatCurrency)
	}

	if cfg.Pricing.Feed == "" {
		cfg.Pricing.Feed = FeedCoinGecko
		logrus.Infof("Pricing.Feed not set, defaulting to %s", cfg.Pricing.Feed)
	}
	if !containsFold(cfg.Pricing.FiatCurrencies, cfg.FiatCurrency) {
		cfg.Pricing.FiatCurrencies = append(cfg.Pricing.FiatCurrencies, cfg.FiatCurrency)
	}
	if cfg.Pricing.RefreshIntervalSeconds <= 0 {
		cfg.Pricing.RefreshIntervalSeconds = 60
	}
	if cfg.Pricing.CacheTTLMinutes <= 0 {
		cfg.Pricing.CacheTTLMinutes = 10
		logrus.Infof("Pricing.CacheTTLMinutes not set, defaulting to %d minutes", cfg.Pricing.CacheTTLMinutes)
	}
	if cfg.Pricing.CoinGecko.BaseURL == "" {
		cfg.Pricing.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3" // Default public API
	}
	if cfg.Pricing.CoinGecko.RequestTimeoutMillis <= 0 {
		cfg.Pricing.CoinGecko.RequestTimeoutMillis = 10000
	}
	if cfg.Pricing.CoinGecko.RequestsPerMinute <= 0 {
		cfg.Pricing.CoinGecko.RequestsPerMinute = 30 // public tier limit
	}
	if cfg.Pricing.CoinGecko.MaxIDsPerRequest <= 0 {
		cfg.Pricing.CoinGecko.MaxIDsPerRequest = 50
	}

	if cfg.Fees.DebounceMillis <= 0 {
		cfg.Fees.DebounceMillis = 400
	}
	if cfg.Fees.EVM.NativeGasLimit == 0 {
		cfg.Fees.EVM.NativeGasLimit = 21000
	}
	if cfg.Fees.EVM.TokenGasLimit == 0 {
		cfg.Fees.EVM.TokenGasLimit = 65000
	}

	if cfg.WalletCore.Mode == "" {
		cfg.WalletCore.Mode = WalletCoreHTTP
		logrus.Infof("WalletCore.Mode not set, defaulting to %s", cfg.WalletCore.Mode)
	}
	if cfg.WalletCore.BaseURL == "" {
		cfg.WalletCore.BaseURL = "http://127.0.0.1:7070"
	}
	if cfg.WalletCore.RequestTimeoutMillis <= 0 {
		cfg.WalletCore.RequestTimeoutMillis = 15000
	}
	if cfg.WalletCore.SnapshotPath == "" {
		cfg.WalletCore.SnapshotPath = "data/wallet_snapshot.json"
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	switch c.WalletCore.Mode {
	case WalletCoreHTTP, WalletCoreFile:
	default:
		return fmt.Errorf("unknown walletCore.mode %q", c.WalletCore.Mode)
	}
	switch c.Pricing.Feed {
	case FeedCoinGecko, FeedStatic:
	default:
		return fmt.Errorf("unknown pricing.feed %q", c.Pricing.Feed)
	}
	for i, f := range c.Fees.Static {
		if f.Network == "" {
			return fmt.Errorf("fees.static[%d]: network is required", i)
		}
		if f.FeeDenomination == "" {
			return fmt.Errorf("fees.static[%d]: feeDenomination is required", i)
		}
	}
	for _, n := range c.Networks {
		if n.AddressFormat == entity.AddressFormatEVM && len(n.RPCURLs) == 0 {
			logrus.Warnf("Network '%s' has no rpcURLs. EVM fee estimation for this network will fail.", n.ID)
		}
	}
	return nil
}

// RefreshInterval returns the pricing refresh interval.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Pricing.RefreshIntervalSeconds) * time.Second
}

// RPCCallTimeout returns the per-call RPC timeout.
func (c *Config) RPCCallTimeout() time.Duration {
	return time.Duration(c.Performance.RPCCallTimeoutSeconds) * time.Second
}

func containsFold(items []string, s string) bool {
	for _, item := range items {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
