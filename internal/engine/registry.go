package engine

import (
	"fmt"
	"sort"

	"frizo/cdp_engine/internal/oracle"
)

// AssetBinding ties one collateral asset to exactly one price source.
type AssetBinding struct {
	Asset  string
	Source oracle.Source
}

// AssetRegistry is the fixed set of collateral assets the engine accepts.
// Built once at construction, read-only afterward.
type AssetRegistry struct {
	sources map[string]oracle.Source
	assets  []string // sorted, for deterministic valuation sums
}

// NewAssetRegistry builds a registry from bindings. Empty asset names, nil
// sources and duplicate assets are construction errors.
func NewAssetRegistry(bindings []AssetBinding) (*AssetRegistry, error) {
	if len(bindings) == 0 {
		return nil, fmt.Errorf("asset registry needs at least one binding")
	}

	registry := &AssetRegistry{
		sources: make(map[string]oracle.Source, len(bindings)),
		assets:  make([]string, 0, len(bindings)),
	}
	for _, binding := range bindings {
		if binding.Asset == "" {
			return nil, fmt.Errorf("asset name must not be empty")
		}
		if binding.Source == nil {
			return nil, fmt.Errorf("asset %s has no price source", binding.Asset)
		}
		if _, exists := registry.sources[binding.Asset]; exists {
			return nil, fmt.Errorf("asset %s bound twice", binding.Asset)
		}
		registry.sources[binding.Asset] = binding.Source
		registry.assets = append(registry.assets, binding.Asset)
	}
	sort.Strings(registry.assets)

	return registry, nil
}

// IsRegistered reports whether asset is an accepted collateral asset.
func (r *AssetRegistry) IsRegistered(asset string) bool {
	_, exists := r.sources[asset]
	return exists
}

// SourceFor returns the price source bound to asset.
func (r *AssetRegistry) SourceFor(asset string) (oracle.Source, error) {
	source, exists := r.sources[asset]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, asset)
	}
	return source, nil
}

// Assets returns the registered assets in sorted order.
func (r *AssetRegistry) Assets() []string {
	assets := make([]string, len(r.assets))
	copy(assets, r.assets)
	return assets
}
