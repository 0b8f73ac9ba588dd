package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"

	"frizo/cdp_engine/internal/bank"
	"frizo/cdp_engine/internal/config"
	"frizo/cdp_engine/internal/engine"
	"frizo/cdp_engine/internal/logger"
	"frizo/cdp_engine/internal/oracle"
	"frizo/cdp_engine/internal/version"
	"frizo/cdp_engine/pkg/utils"
)

func main() {
	// Command line flags
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		healthCheck = flag.Bool("health-check", false, "Perform health check")
		configFile  = flag.String("config", ".env.local", "Path to configuration file")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	// Handle version flag
	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Handle help flag
	if *showHelp {
		fmt.Printf("CDP Engine %s\n\n", version.Short())
		fmt.Println("Usage:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// Handle health check
	if *healthCheck {
		fmt.Println("OK")
		os.Exit(0)
	}

	// Load configuration (env file first, environment wins)
	cfg, err := config.LoadFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override log level from command line
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.Environment == "production" {
		log = logger.NewJSON(cfg.LogLevel)
	} else {
		log = logger.New(cfg.LogLevel)
	}
	logger.SetDefault(log)

	// Log startup information
	log.Info("Starting CDP Engine",
		"version", version.Short(),
		"environment", cfg.Environment,
		"collateral_assets", strings.Join(cfg.CollateralAssets, ","),
	)

	// Build the engine: one static price source bound to every configured
	// collateral asset, in-memory bank as vault + debt token collaborators.
	prices := oracle.NewStaticSource()
	bindings := utils.Map(cfg.CollateralAssets, func(asset string) engine.AssetBinding {
		return engine.AssetBinding{Asset: asset, Source: prices}
	})
	registry, err := engine.NewAssetRegistry(bindings)
	if err != nil {
		log.Error("Failed to build asset registry", "error", err)
		os.Exit(1)
	}

	params := engine.Params{
		LiquidationThreshold: decimal.NewFromFloat(cfg.LiquidationThreshold),
		LiquidationBonus:     decimal.NewFromFloat(cfg.LiquidationBonus),
		MinHealthFactor:      decimal.NewFromFloat(cfg.MinHealthFactor),
		MaxPriceAge:          cfg.MaxPriceAge,
	}

	settlement := bank.NewBank()
	core, err := engine.NewEngine(registry, settlement, settlement, params, log)
	if err != nil {
		log.Error("Failed to build engine", "error", err)
		os.Exit(1)
	}

	log.Info("CDP Engine is running",
		"assets", strings.Join(core.RegisteredAssets(), ","),
		"liquidation_threshold", params.LiquidationThreshold.String(),
		"liquidation_bonus", params.LiquidationBonus.String(),
		"min_health_factor", params.MinHealthFactor.String(),
		"max_price_age", params.MaxPriceAge.String(),
	)

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	<-quit
	log.Info("Shutting down CDP Engine...")
	log.Info("CDP Engine stopped")
}
