package catalog

import "wallet_engine/internal/domain/entity"

// Predefined network descriptors
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDescriptor{
		ID:                 "ethereum",
		Name:               "Ethereum",
		AddressFormat:      entity.AddressFormatEVM,
		NativeDenomination: "eth",
		Color:              "#627EEA",
		Icon:               "ethereum",
		ExplorerURL:        "https://etherscan.io",
	}
	Polygon = entity.NetworkDescriptor{
		ID:                 "polygon",
		Name:               "Polygon",
		AddressFormat:      entity.AddressFormatEVM,
		NativeDenomination: "pol",
		Color:              "#8247E5",
		Icon:               "polygon",
		ExplorerURL:        "https://polygonscan.com",
	}
	Arbitrum = entity.NetworkDescriptor{
		ID:                 "arbitrum",
		Name:               "Arbitrum One",
		AddressFormat:      entity.AddressFormatEVM,
		NativeDenomination: "eth",
		Color:              "#28A0F0",
		Icon:               "arbitrum",
		ExplorerURL:        "https://arbiscan.io",
	}
	Tron = entity.NetworkDescriptor{
		ID:                 "tron",
		Name:               "Tron",
		AddressFormat:      entity.AddressFormatTron,
		NativeDenomination: "trx",
		Color:              "#FF060A",
		Icon:               "tron",
		ExplorerURL:        "https://tronscan.org",
	}
	Ton = entity.NetworkDescriptor{
		ID:                 "ton",
		Name:               "TON",
		AddressFormat:      entity.AddressFormatAny, // TON-адреса валидирует wallet core
		NativeDenomination: "ton",
		Color:              "#0098EA",
		Icon:               "ton",
		ExplorerURL:        "https://tonviewer.com",
	}
	Segwit = entity.NetworkDescriptor{
		ID:                 "segwit",
		Name:               "Bitcoin",
		AddressFormat:      entity.AddressFormatBitcoin,
		NativeDenomination: "btc",
		Color:              "#F7931A",
		Icon:               "bitcoin",
		ExplorerURL:        "https://mempool.space",
	}
)

// Predefined asset descriptors
var ( //nolint:gochecknoglobals // Global for definitions
	USDT = entity.AssetDescriptor{
		Denomination:      "usdt",
		Name:              "Tether USD",
		DisplaySymbol:     "USD₮",
		SupportedNetworks: []string{Ethereum.ID, Polygon.ID, Arbitrum.ID, Ton.ID, Tron.ID},
		Color:             "#009393",
		Icon:              "usdt",
		PriceFeedID:       "tether",
		Decimals:          6,
	}
	XAUT = entity.AssetDescriptor{
		Denomination:      "xaut",
		Name:              "Tether Gold",
		DisplaySymbol:     "XAU₮",
		SupportedNetworks: []string{Ethereum.ID},
		Color:             "#C8A951",
		Icon:              "xaut",
		PriceFeedID:       "tether-gold",
		Decimals:          6,
	}
	BTC = entity.AssetDescriptor{
		Denomination:      "btc",
		Name:              "Bitcoin",
		DisplaySymbol:     "BTC",
		SupportedNetworks: []string{Segwit.ID},
		Color:             "#F7931A",
		Icon:              "bitcoin",
		PriceFeedID:       "bitcoin",
		Decimals:          8,
	}
)

// BuiltinNetworks returns the networks known without configuration, in display order.
func BuiltinNetworks() []entity.NetworkDescriptor {
	return []entity.NetworkDescriptor{Ethereum, Polygon, Arbitrum, Ton, Tron, Segwit}
}

// BuiltinAssets returns the assets known without configuration, in display order.
func BuiltinAssets() []entity.AssetDescriptor {
	return []entity.AssetDescriptor{USDT, XAUT, BTC}
}
