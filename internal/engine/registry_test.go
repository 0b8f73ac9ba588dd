package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frizo/cdp_engine/internal/oracle"
)

func TestNewAssetRegistry(t *testing.T) {
	source := oracle.NewStaticSource()

	t.Run("Valid", func(t *testing.T) {
		registry, err := NewAssetRegistry([]AssetBinding{
			{Asset: "WETH", Source: source},
			{Asset: "WBTC", Source: source},
		})
		require.NoError(t, err)

		assert.True(t, registry.IsRegistered("WETH"))
		assert.True(t, registry.IsRegistered("WBTC"))
		assert.False(t, registry.IsRegistered("DOGE"))
		assert.Equal(t, []string{"WBTC", "WETH"}, registry.Assets())
	})

	t.Run("EmptyBindings", func(t *testing.T) {
		_, err := NewAssetRegistry(nil)
		assert.Error(t, err)
	})

	t.Run("EmptyAssetName", func(t *testing.T) {
		_, err := NewAssetRegistry([]AssetBinding{{Asset: "", Source: source}})
		assert.Error(t, err)
	})

	t.Run("NilSource", func(t *testing.T) {
		_, err := NewAssetRegistry([]AssetBinding{{Asset: "WETH", Source: nil}})
		assert.Error(t, err)
	})

	t.Run("DuplicateAsset", func(t *testing.T) {
		_, err := NewAssetRegistry([]AssetBinding{
			{Asset: "WETH", Source: source},
			{Asset: "WETH", Source: source},
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "bound twice")
	})
}

func TestSourceFor(t *testing.T) {
	source := oracle.NewStaticSource()
	registry, err := NewAssetRegistry([]AssetBinding{{Asset: "WETH", Source: source}})
	require.NoError(t, err)

	t.Run("Registered", func(t *testing.T) {
		got, err := registry.SourceFor("WETH")
		require.NoError(t, err)
		assert.Equal(t, oracle.Source(source), got)
	})

	t.Run("Unregistered", func(t *testing.T) {
		_, err := registry.SourceFor("DOGE")
		assert.ErrorIs(t, err, ErrUnsupportedAsset)
	})
}

func TestAssetsIsACopy(t *testing.T) {
	source := oracle.NewStaticSource()
	registry, err := NewAssetRegistry([]AssetBinding{{Asset: "WETH", Source: source}})
	require.NoError(t, err)

	assets := registry.Assets()
	assets[0] = "MUTATED"

	assert.Equal(t, []string{"WETH"}, registry.Assets())
}
