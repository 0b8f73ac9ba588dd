package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"frizo/cdp_engine/internal/ledger"
)

// Valuer converts asset quantities to unit-of-account (USD) value and back,
// using the price source bound to each asset in the registry. A price older
// than maxAge is treated the same as a missing price: the whole operation
// fails, it is never used.
type Valuer struct {
	registry *AssetRegistry
	maxAge   time.Duration
	now      func() time.Time
}

// NewValuer creates a valuer over registry with the given staleness cutoff.
func NewValuer(registry *AssetRegistry, maxAge time.Duration) *Valuer {
	return &Valuer{
		registry: registry,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// price fetches and freshness-checks the current price for asset.
func (v *Valuer) price(asset string) (decimal.Decimal, error) {
	source, err := v.registry.SourceFor(asset)
	if err != nil {
		return decimal.Zero, err
	}

	data, err := source.GetPrice(asset)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, asset, err)
	}
	if data.Price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: %s: non-positive price %s", ErrPriceUnavailable, asset, data.Price.String())
	}
	if v.now().Sub(data.UpdatedAt) > v.maxAge {
		return decimal.Zero, fmt.Errorf("%w: %s: last update %s", ErrStalePrice, asset, data.UpdatedAt.Format(time.RFC3339))
	}

	return data.Price, nil
}

// ValueOf returns the USD value of quantity units of asset.
func (v *Valuer) ValueOf(asset string, quantity decimal.Decimal) (decimal.Decimal, error) {
	price, err := v.price(asset)
	if err != nil {
		return decimal.Zero, err
	}
	return price.Mul(quantity), nil
}

// QuantityFromValue returns how many units of asset are worth usdValue.
func (v *Valuer) QuantityFromValue(asset string, usdValue decimal.Decimal) (decimal.Decimal, error) {
	price, err := v.price(asset)
	if err != nil {
		return decimal.Zero, err
	}
	return usdValue.Div(price), nil
}

// TotalCollateralValue sums the USD value of every registered asset held by
// the position. Zero-balance assets contribute zero without touching their
// price source.
func (v *Valuer) TotalCollateralValue(position *ledger.Position) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, asset := range v.registry.Assets() {
		quantity := position.CollateralOf(asset)
		if quantity.IsZero() {
			continue
		}
		value, err := v.ValueOf(asset, quantity)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(value)
	}
	return total, nil
}
