package catalog

import (
	"errors"
	"fmt"
	"strings"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/infrastructure/configloader"
	"wallet_engine/internal/pkg/format"
)

var ErrEmptyID = errors.New("descriptor id is empty")

// Catalog is the validated denomination and network lookup built once at startup.
type Catalog struct {
	networks     map[string]entity.NetworkDescriptor
	networkOrder []string
	assets       map[string]entity.AssetDescriptor
	assetOrder   []string
}

// New validates descriptors and builds the lookup maps. Ids are lower-cased.
// Empty or duplicate ids are rejected; asset networks that are not in the
// catalog are dropped with a warning.
func New(networks []entity.NetworkDescriptor, assets []entity.AssetDescriptor, log port.Logger) (*Catalog, error) {
	c := &Catalog{
		networks: make(map[string]entity.NetworkDescriptor, len(networks)),
		assets:   make(map[string]entity.AssetDescriptor, len(assets)),
	}

	for i, n := range networks {
		n.ID = normalize(n.ID)
		if n.ID == "" {
			return nil, fmt.Errorf("network #%d: %w", i, ErrEmptyID)
		}
		if _, dup := c.networks[n.ID]; dup {
			return nil, fmt.Errorf("duplicate network id %q", n.ID)
		}
		if n.AddressFormat == "" {
			n.AddressFormat = entity.AddressFormatAny
		}
		if n.Name == "" {
			n.Name = n.ID
		}
		n.NativeDenomination = normalize(n.NativeDenomination)
		c.networks[n.ID] = n
		c.networkOrder = append(c.networkOrder, n.ID)
	}

	for i, a := range assets {
		a.Denomination = normalize(a.Denomination)
		if a.Denomination == "" {
			return nil, fmt.Errorf("asset #%d: %w", i, ErrEmptyID)
		}
		if _, dup := c.assets[a.Denomination]; dup {
			return nil, fmt.Errorf("duplicate asset denomination %q", a.Denomination)
		}
		if a.DisplaySymbol == "" {
			a.DisplaySymbol = format.DisplaySymbol(a.Denomination)
		}
		if a.Name == "" {
			a.Name = a.DisplaySymbol
		}

		known := make([]string, 0, len(a.SupportedNetworks))
		seen := make(map[string]struct{}, len(a.SupportedNetworks))
		for _, id := range a.SupportedNetworks {
			id = normalize(id)
			if _, ok := c.networks[id]; !ok {
				log.Warn("Asset references unknown network, skipping it", "asset", a.Denomination, "network", id)
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			known = append(known, id)
		}
		a.SupportedNetworks = known

		c.assets[a.Denomination] = a
		c.assetOrder = append(c.assetOrder, a.Denomination)
	}

	log.Info("Catalog initialized", "networks", len(c.networks), "assets", len(c.assets))
	return c, nil
}

// FromConfig builds the catalog from the built-in descriptors overlaid with
// configured ones. A configured descriptor replaces the built-in one with the same id.
func FromConfig(cfg *configloader.Config, log port.Logger) (*Catalog, error) {
	configured := make([]entity.NetworkDescriptor, 0, len(cfg.Networks))
	for _, n := range cfg.Networks {
		configured = append(configured, n.NetworkDescriptor)
	}

	networks, err := overlayNetworks(BuiltinNetworks(), configured)
	if err != nil {
		return nil, err
	}
	assets, err := overlayAssets(BuiltinAssets(), cfg.Assets)
	if err != nil {
		return nil, err
	}
	return New(networks, assets, log)
}

func overlayNetworks(base, override []entity.NetworkDescriptor) ([]entity.NetworkDescriptor, error) {
	out := append([]entity.NetworkDescriptor(nil), base...)
	index := make(map[string]int, len(out))
	for i, n := range out {
		index[normalize(n.ID)] = i
	}
	seen := make(map[string]struct{}, len(override))
	for _, n := range override {
		id := normalize(n.ID)
		if _, dup := seen[id]; dup && id != "" {
			return nil, fmt.Errorf("duplicate network id %q in configuration", id)
		}
		seen[id] = struct{}{}
		if i, ok := index[id]; ok && id != "" {
			out[i] = n
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func overlayAssets(base, override []entity.AssetDescriptor) ([]entity.AssetDescriptor, error) {
	out := append([]entity.AssetDescriptor(nil), base...)
	index := make(map[string]int, len(out))
	for i, a := range out {
		index[normalize(a.Denomination)] = i
	}
	seen := make(map[string]struct{}, len(override))
	for _, a := range override {
		id := normalize(a.Denomination)
		if _, dup := seen[id]; dup && id != "" {
			return nil, fmt.Errorf("duplicate asset denomination %q in configuration", id)
		}
		seen[id] = struct{}{}
		if i, ok := index[id]; ok && id != "" {
			out[i] = a
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Asset returns the descriptor for a denomination.
func (c *Catalog) Asset(denomination string) (entity.AssetDescriptor, bool) {
	if c == nil {
		return entity.AssetDescriptor{}, false
	}
	a, ok := c.assets[normalize(denomination)]
	return a, ok
}

// Assets returns all asset descriptors in configuration order.
func (c *Catalog) Assets() []entity.AssetDescriptor {
	if c == nil {
		return []entity.AssetDescriptor{}
	}
	out := make([]entity.AssetDescriptor, 0, len(c.assetOrder))
	for _, id := range c.assetOrder {
		out = append(out, c.assets[id])
	}
	return out
}

// Network returns the descriptor for a network id.
func (c *Catalog) Network(networkID string) (entity.NetworkDescriptor, bool) {
	if c == nil {
		return entity.NetworkDescriptor{}, false
	}
	n, ok := c.networks[normalize(networkID)]
	return n, ok
}

// Networks returns all network descriptors in configuration order.
func (c *Catalog) Networks() []entity.NetworkDescriptor {
	if c == nil {
		return []entity.NetworkDescriptor{}
	}
	out := make([]entity.NetworkDescriptor, 0, len(c.networkOrder))
	for _, id := range c.networkOrder {
		out = append(out, c.networks[id])
	}
	return out
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

var _ port.Catalog = (*Catalog)(nil)
