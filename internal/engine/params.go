package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Params are the engine's risk parameters. Injected once at construction and
// never mutated afterward.
type Params struct {
	// LiquidationThreshold is the fraction of raw collateral value that
	// counts toward safety (0.5 means a position must be 200%
	// overcollateralized).
	LiquidationThreshold decimal.Decimal

	// LiquidationBonus is the extra fraction of seized collateral paid to
	// a liquidator on top of the covered debt value.
	LiquidationBonus decimal.Decimal

	// MinHealthFactor is the ratio below which a position is liquidatable.
	MinHealthFactor decimal.Decimal

	// MaxPriceAge is the oldest price observation the engine will accept.
	MaxPriceAge time.Duration
}

// DefaultParams returns the reference risk parameters: 50% threshold,
// 10% liquidation bonus, minimum health factor 1.0, 3h price staleness cutoff.
func DefaultParams() Params {
	return Params{
		LiquidationThreshold: decimal.NewFromFloat(0.5),
		LiquidationBonus:     decimal.NewFromFloat(0.1),
		MinHealthFactor:      decimal.NewFromInt(1),
		MaxPriceAge:          3 * time.Hour,
	}
}

// Validate rejects parameter sets the engine cannot operate safely with.
func (p Params) Validate() error {
	if p.LiquidationThreshold.LessThanOrEqual(decimal.Zero) || p.LiquidationThreshold.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("liquidation threshold must be in (0, 1], got %s", p.LiquidationThreshold.String())
	}
	if p.LiquidationBonus.IsNegative() {
		return fmt.Errorf("liquidation bonus must not be negative, got %s", p.LiquidationBonus.String())
	}
	if p.MinHealthFactor.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("minimum health factor must be positive, got %s", p.MinHealthFactor.String())
	}
	if p.MaxPriceAge <= 0 {
		return fmt.Errorf("max price age must be positive, got %s", p.MaxPriceAge)
	}
	return nil
}
