package engine

import (
	"github.com/shopspring/decimal"

	"frizo/cdp_engine/internal/ledger"
)

// MaxHealthFactor is the sentinel ratio for debt-free positions. The health
// factor formula divides by debt, so zero-debt accounts are short-circuited
// to "maximally healthy" instead of reproducing a divide-by-zero fault.
var MaxHealthFactor = decimal.NewFromInt(1_000_000_000)

// HealthCalculator derives the scalar safety ratio of a position:
//
//	healthFactor = (totalCollateralValue * liquidationThreshold) / debt
//
// A position is liquidatable once the ratio drops below the configured
// minimum.
type HealthCalculator struct {
	valuer *Valuer
	params Params
}

// NewHealthCalculator creates a calculator over valuer with the given risk
// parameters.
func NewHealthCalculator(valuer *Valuer, params Params) *HealthCalculator {
	return &HealthCalculator{
		valuer: valuer,
		params: params,
	}
}

// HealthFactor computes the position's safety ratio. Zero debt returns
// MaxHealthFactor.
func (h *HealthCalculator) HealthFactor(position *ledger.Position) (decimal.Decimal, error) {
	if position.Debt.IsZero() {
		return MaxHealthFactor, nil
	}

	collateralValue, err := h.valuer.TotalCollateralValue(position)
	if err != nil {
		return decimal.Zero, err
	}

	adjusted := collateralValue.Mul(h.params.LiquidationThreshold)
	return adjusted.Div(position.Debt), nil
}

// IsHealthy reports whether the position's ratio clears the configured
// minimum.
func (h *HealthCalculator) IsHealthy(position *ledger.Position) (bool, error) {
	factor, err := h.HealthFactor(position)
	if err != nil {
		return false, err
	}
	return factor.GreaterThanOrEqual(h.params.MinHealthFactor), nil
}
