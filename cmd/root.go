package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/trendloom-cli/internal/catalog"
	cfgpkg "github.com/KaramelBytes/trendloom-cli/internal/config"
	"github.com/KaramelBytes/trendloom-cli/internal/dataset"
	"github.com/KaramelBytes/trendloom-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags (override config if set)
	cfgFile     string
	debug       bool
	flagDataDir string
	flagCatalog string
	flagStrict  bool

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "trendloom",
	Short: "TrendLoom CLI: compare climate and economic indicators over time",
	Long: `TrendLoom loads climate and socioeconomic datasets (temperature anomalies, crop yields,
GDP, inflation, disaster damage), normalizes them onto a common scale and aligns them by year
so any two indicators can be compared for a country, globally, or across a world map.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.trendloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding the source files (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "YAML catalog replacing the built-in one (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagStrict, "strict", false, "fail when a source does not match its expected schema")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if f.Changed("catalog") {
		cfg.CatalogFile = flagCatalog
	}
	if f.Changed("strict") {
		cfg.StrictSchema = flagStrict
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logger = logging.Setup(level, cfg.LogFormat, rootCmd.ErrOrStderr())
}

// loadCatalog returns the configured catalog file, or the built-in catalog.
func loadCatalog() (*catalog.Catalog, error) {
	if cfg.CatalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.CatalogFile)
}

// newLoader builds a dataset loader over the configured data directory.
func newLoader() (*dataset.Loader, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	l := dataset.NewLoader(os.DirFS(cfg.DataDir), cat)
	l.Fallback = cfg.ConstantFallback
	l.Strict = cfg.StrictSchema
	l.Logger = logger
	return l, nil
}
