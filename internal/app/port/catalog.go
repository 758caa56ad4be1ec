package port

import "wallet_engine/internal/domain/entity"

// Catalog provides the validated asset and network descriptors.
type Catalog interface {
	// Asset returns the descriptor for a denomination (case-insensitive).
	Asset(denomination string) (entity.AssetDescriptor, bool)
	Assets() []entity.AssetDescriptor
	// Network возвращает описание сети и true, если найдено, иначе false.
	Network(networkID string) (entity.NetworkDescriptor, bool)
	Networks() []entity.NetworkDescriptor
}

// AddressValidator checks a recipient address against a network's address rules.
type AddressValidator interface {
	ValidateAddress(network entity.NetworkDescriptor, address string) error
}
