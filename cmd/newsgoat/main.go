package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/NewsGoat/internal/config"
	"github.com/IshaanNene/NewsGoat/internal/engine"
	"github.com/IshaanNene/NewsGoat/internal/storage"
)

var (
	cfgFile     string
	verbose     bool
	metricsFile string
)

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "newsgoat",
		Short: "NewsGoat — news article ingestion, cleaning and dedup",
		Long: `NewsGoat collects news articles from RSS feeds and search backfills,
stores them in a URL-keyed JSON corpus, and cleans, dedups and ages them.

Runs:
  • scrape       daily RSS scrape into the master store
  • search       search-result backfill per outlet
  • clean        admit the master store into the cleaned corpus
  • recompute    refresh article ages in the master store
  • merge-cache  fold old article caches into the master store
  • analyze      report on the cleaned corpus
  • metadata     export the labelling table`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write run counters in Prometheus text format to this file")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(cleanCmd())
	rootCmd.AddCommand(recomputeCmd())
	rootCmd.AddCommand(mergeCacheCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(metadataCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads and validates the effective configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// runEngine builds an engine, runs fn under a context cancelled by SIGINT
// or SIGTERM, and reports the run counters.
func runEngine(fn func(ctx context.Context, eng *engine.Engine) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := engine.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer eng.Close()

	runErr := fn(ctx, eng)

	eng.Metrics().Log("run counters")
	if metricsFile != "" {
		var buf bytes.Buffer
		if err := eng.Metrics().WriteText(&buf); err != nil {
			logger.Warn("metrics render failed", "error", err)
		} else if err := storage.WriteFileAtomic(metricsFile, buf.Bytes()); err != nil {
			logger.Warn("metrics write failed", "path", metricsFile, "error", err)
		}
	}
	return runErr
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("NewsGoat %s\n", config.Version)
		},
	}
}

// configCmd prints the effective configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			fmt.Print(string(out))
			return nil
		},
	}
}

// setupLogger creates a structured logger. --verbose wins over the
// configured level.
func setupLogger(lc config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(lc.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
