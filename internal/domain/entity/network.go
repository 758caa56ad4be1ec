package entity

// AddressFormat identifies which address rules apply to a network.
type AddressFormat string

const (
	AddressFormatEVM     AddressFormat = "evm"
	AddressFormatTron    AddressFormat = "tron"
	AddressFormatBitcoin AddressFormat = "bitcoin"
	// AddressFormatAny accepts any non-empty address.
	AddressFormatAny AddressFormat = "any"
)

// NetworkDescriptor holds the static definition of a blockchain network.
// This structure is defined at the domain level to be used across application and infrastructure layers.
type NetworkDescriptor struct {
	ID                 string        `json:"id" yaml:"id"` // Уникальный идентификатор сети (например, "ethereum", "tron")
	Name               string        `json:"name" yaml:"name"`
	AddressFormat      AddressFormat `json:"addressFormat" yaml:"addressFormat"`
	NativeDenomination string        `json:"nativeDenomination" yaml:"nativeDenomination"` // denomination fees are paid in
	Color              string        `json:"color,omitempty" yaml:"color,omitempty"`
	Icon               string        `json:"icon,omitempty" yaml:"icon,omitempty"`
	ExplorerURL        string        `json:"explorerUrl,omitempty" yaml:"explorerUrl,omitempty"`
}
