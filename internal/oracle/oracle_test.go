package oracle

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSource(t *testing.T) {
	t.Run("SetAndGet", func(t *testing.T) {
		source := NewStaticSource()
		source.SetPrice("WETH", decimal.NewFromInt(2000))

		data, err := source.GetPrice("WETH")
		require.NoError(t, err)
		assert.True(t, data.Price.Equal(decimal.NewFromInt(2000)))
		assert.WithinDuration(t, time.Now(), data.UpdatedAt, time.Second)
	})

	t.Run("SetPriceAt", func(t *testing.T) {
		source := NewStaticSource()
		observed := time.Now().Add(-90 * time.Minute)
		source.SetPriceAt("WBTC", decimal.NewFromInt(30000), observed)

		data, err := source.GetPrice("WBTC")
		require.NoError(t, err)
		assert.True(t, data.Price.Equal(decimal.NewFromInt(30000)))
		assert.Equal(t, observed, data.UpdatedAt)
	})

	t.Run("MissingAsset", func(t *testing.T) {
		source := NewStaticSource()

		_, err := source.GetPrice("WETH")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no price for asset")
	})

	t.Run("Remove", func(t *testing.T) {
		source := NewStaticSource()
		source.SetPrice("WETH", decimal.NewFromInt(2000))
		source.Remove("WETH")

		_, err := source.GetPrice("WETH")
		assert.Error(t, err)
	})

	t.Run("Overwrite", func(t *testing.T) {
		source := NewStaticSource()
		source.SetPrice("WETH", decimal.NewFromInt(2000))
		source.SetPrice("WETH", decimal.NewFromInt(1800))

		data, err := source.GetPrice("WETH")
		require.NoError(t, err)
		assert.True(t, data.Price.Equal(decimal.NewFromInt(1800)))
	})
}
