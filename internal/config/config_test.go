package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, []string{"WETH", "WBTC"}, cfg.CollateralAssets)
	assert.Equal(t, 0.5, cfg.LiquidationThreshold)
	assert.Equal(t, 0.1, cfg.LiquidationBonus)
	assert.Equal(t, 1.0, cfg.MinHealthFactor)
	assert.Equal(t, 3*time.Hour, cfg.MaxPriceAge)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("COLLATERAL_ASSETS", "WETH, WSOL ,WETH,")
	t.Setenv("LIQUIDATION_THRESHOLD", "0.75")
	t.Setenv("MAX_PRICE_AGE", "30m")

	cfg := Load()

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "production", cfg.Environment)
	// trimmed and deduplicated
	assert.Equal(t, []string{"WETH", "WSOL"}, cfg.CollateralAssets)
	assert.Equal(t, 0.75, cfg.LiquidationThreshold)
	assert.Equal(t, 30*time.Minute, cfg.MaxPriceAge)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("LIQUIDATION_BONUS", "not-a-number")
	t.Setenv("MAX_PRICE_AGE", "soon")
	t.Setenv("COLLATERAL_ASSETS", " , ,")

	cfg := Load()

	assert.Equal(t, 0.1, cfg.LiquidationBonus)
	assert.Equal(t, 3*time.Hour, cfg.MaxPriceAge)
	assert.Equal(t, []string{"WETH", "WBTC"}, cfg.CollateralAssets)
}

func TestLoadFile(t *testing.T) {
	writeEnvFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), ".env.test")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("AppliesFileValues", func(t *testing.T) {
		// blanked out so the file values apply, restored on cleanup
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("LIQUIDATION_THRESHOLD", "")
		path := writeEnvFile(t, `
# risk overrides
LOG_LEVEL=warn
LIQUIDATION_THRESHOLD="0.6"

MALFORMED LINE WITHOUT EQUALS
`)

		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, 0.6, cfg.LiquidationThreshold)
	})

	t.Run("EnvironmentWinsOverFile", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "error")
		path := writeEnvFile(t, "LOG_LEVEL=warn\n")

		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("MissingFileIsNotAnError", func(t *testing.T) {
		cfg, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist"))
		require.NoError(t, err)
		assert.NotNil(t, cfg)
	})

	t.Run("EmptyPath", func(t *testing.T) {
		cfg, err := LoadFile("")
		require.NoError(t, err)
		assert.NotNil(t, cfg)
	})
}
