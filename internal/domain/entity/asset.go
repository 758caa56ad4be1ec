package entity

// AssetDescriptor holds the static definition of a tradable asset.
// Descriptors are loaded once from configuration and never mutated.
type AssetDescriptor struct {
	Denomination      string   `json:"denomination" yaml:"denomination"` // e.g. "usdt", "btc"
	Name              string   `json:"name" yaml:"name"`
	DisplaySymbol     string   `json:"displaySymbol,omitempty" yaml:"displaySymbol,omitempty"`
	SupportedNetworks []string `json:"supportedNetworks" yaml:"supportedNetworks"`
	Color             string   `json:"color,omitempty" yaml:"color,omitempty"`
	Icon              string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	PriceFeedID       string   `json:"priceFeedId,omitempty" yaml:"priceFeedId,omitempty"` // id used by the rate feed, e.g. "tether"
	Decimals          int32    `json:"decimals" yaml:"decimals"`
}

// SupportsNetwork reports whether the asset can be held on the given network.
func (a AssetDescriptor) SupportsNetwork(networkID string) bool {
	for _, id := range a.SupportedNetworks {
		if id == networkID {
			return true
		}
	}
	return false
}
