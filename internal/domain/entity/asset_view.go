package entity

import "github.com/shopspring/decimal"

// AssetView is the aggregated, per-asset presentation of a balance snapshot.
// TotalBalance always equals the exact sum of PerNetwork balances.
type AssetView struct {
	Denomination     string          `json:"denomination"`
	Name             string          `json:"name"`
	DisplaySymbol    string          `json:"displaySymbol"`
	TotalBalance     decimal.Decimal `json:"totalBalance"`
	TotalBalanceFiat decimal.Decimal `json:"totalBalanceFiat"`
	Price            decimal.Decimal `json:"price"`
	// PriceStale is set when Price comes from an expired rate.
	PriceStale       bool            `json:"priceStale"`
	PerNetwork       []NetworkView   `json:"perNetwork"`
	HasBalance       bool            `json:"hasBalance"`
}

// Network returns the view for the given network id.
func (v AssetView) Network(networkID string) (NetworkView, bool) {
	for _, nv := range v.PerNetwork {
		if nv.NetworkID == networkID {
			return nv, true
		}
	}
	return NetworkView{}, false
}

// NetworkView represents the balance of an asset on a single network.
type NetworkView struct {
	NetworkID   string          `json:"networkId"`
	Name        string          `json:"name"`
	Balance     decimal.Decimal `json:"balance"`
	BalanceFiat decimal.Decimal `json:"balanceFiat"`
	HasBalance  bool            `json:"hasBalance"`
}

// Portfolio is the full aggregated wallet view for one fiat currency.
type Portfolio struct {
	Fiat      string          `json:"fiat"`
	Assets    []AssetView     `json:"assets"`
	TotalFiat decimal.Decimal `json:"totalFiat"`
	Gaps      []DataGap       `json:"gaps,omitempty"`
	Version   uint64          `json:"version"`
}
