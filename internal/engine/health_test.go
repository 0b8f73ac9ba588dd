package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frizo/cdp_engine/internal/ledger"
	"frizo/cdp_engine/internal/oracle"
)

func newTestHealthCalculator(t *testing.T) (*HealthCalculator, *oracle.StaticSource) {
	t.Helper()

	source := oracle.NewStaticSource()
	registry, err := NewAssetRegistry([]AssetBinding{{Asset: "WETH", Source: source}})
	require.NoError(t, err)

	valuer := NewValuer(registry, 3*time.Hour)
	return NewHealthCalculator(valuer, DefaultParams()), source
}

func TestHealthFactor(t *testing.T) {
	calc, source := newTestHealthCalculator(t)
	source.SetPrice("WETH", decimal.NewFromInt(2000))

	t.Run("ZeroDebtIsMaximallyHealthy", func(t *testing.T) {
		position := ledger.NewPosition("alice")
		position.Collateral["WETH"] = decimal.NewFromInt(15)

		factor, err := calc.HealthFactor(position)
		require.NoError(t, err)
		assert.True(t, factor.Equal(MaxHealthFactor))

		healthy, err := calc.IsHealthy(position)
		require.NoError(t, err)
		assert.True(t, healthy)
	})

	t.Run("ExactlyAtMinimum", func(t *testing.T) {
		// 15 WETH * $2000 = $30,000; 50% threshold => max safe debt $15,000
		position := ledger.NewPosition("alice")
		position.Collateral["WETH"] = decimal.NewFromInt(15)
		position.Debt = decimal.NewFromInt(15000)

		factor, err := calc.HealthFactor(position)
		require.NoError(t, err)
		assert.True(t, factor.Equal(decimal.NewFromInt(1)), "got %s", factor.String())

		healthy, err := calc.IsHealthy(position)
		require.NoError(t, err)
		assert.True(t, healthy)
	})

	t.Run("OneUnitOverTheEdge", func(t *testing.T) {
		position := ledger.NewPosition("alice")
		position.Collateral["WETH"] = decimal.NewFromInt(15)
		position.Debt = decimal.NewFromInt(15001)

		factor, err := calc.HealthFactor(position)
		require.NoError(t, err)
		assert.True(t, factor.LessThan(decimal.NewFromInt(1)), "got %s", factor.String())

		healthy, err := calc.IsHealthy(position)
		require.NoError(t, err)
		assert.False(t, healthy)
	})

	t.Run("NoCollateralWithDebt", func(t *testing.T) {
		position := ledger.NewPosition("alice")
		position.Debt = decimal.NewFromInt(100)

		factor, err := calc.HealthFactor(position)
		require.NoError(t, err)
		assert.True(t, factor.IsZero())
	})

	t.Run("PriceUnavailablePropagates", func(t *testing.T) {
		source.Remove("WETH")
		defer source.SetPrice("WETH", decimal.NewFromInt(2000))

		position := ledger.NewPosition("alice")
		position.Collateral["WETH"] = decimal.NewFromInt(15)
		position.Debt = decimal.NewFromInt(100)

		_, err := calc.HealthFactor(position)
		assert.ErrorIs(t, err, ErrPriceUnavailable)
	})
}
