package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"

	"frizo/cdp_engine/pkg/utils"
)

// Config holds the application configuration.
type Config struct {
	// Logging configuration
	LogLevel string

	// Application configuration
	Environment string

	// Collateral assets the engine accepts, comma separated in env.
	CollateralAssets []string

	// Risk parameters
	LiquidationThreshold float64
	LiquidationBonus     float64
	MinHealthFactor      float64
	MaxPriceAge          time.Duration
}

// Load loads the configuration from environment variables.
func Load() *Config {
	config := &Config{
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		CollateralAssets:     getEnvAsList("COLLATERAL_ASSETS", []string{"WETH", "WBTC"}),
		LiquidationThreshold: getEnvAsFloat("LIQUIDATION_THRESHOLD", 0.5),
		LiquidationBonus:     getEnvAsFloat("LIQUIDATION_BONUS", 0.1),
		MinHealthFactor:      getEnvAsFloat("MIN_HEALTH_FACTOR", 1.0),
		MaxPriceAge:          getEnvAsDuration("MAX_PRICE_AGE", 3*time.Hour),
	}

	return config
}

// LoadFile loads KEY=VALUE pairs from an env file into the process
// environment, then loads the configuration. Missing files are not an error;
// the environment simply wins as-is.
func LoadFile(path string) (*Config, error) {
	if path != "" && utils.FileExists(path) {
		if err := applyEnvFile(path); err != nil {
			return nil, err
		}
	}
	return Load(), nil
}

// applyEnvFile reads a simple KEY=VALUE env file. Blank lines and #-comments
// are skipped; existing environment variables are not overridden.
func applyEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if key == "" || os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

// getEnvAsFloat gets an environment variable as float with a default value.
func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

// getEnvAsDuration gets an environment variable as duration with a default value.
func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

// getEnvAsList gets a comma-separated environment variable as a deduplicated
// string slice with a default value.
func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" || utils.Contains(items, item) {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return defaultVal
	}
	return items
}
