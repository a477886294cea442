package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("NEWSGOAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The daily scraper has always been driven by this bare variable.
	if err := v.BindEnv("scrape.days", "NEWSGOAT_SCRAPE_DAYS", "DAYS_TO_SCRAPE"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("newsgoat")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".newsgoat"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Presets named in the file replace the built-in preset of that name;
	// the rest keep their defaults.
	for name, p := range DefaultPresets() {
		if _, ok := cfg.Presets[name]; !ok {
			cfg.Presets[name] = p
		}
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("paths.master", cfg.Paths.Master)
	v.SetDefault("paths.cleaned", cfg.Paths.Cleaned)
	v.SetDefault("paths.removed", cfg.Paths.Removed)
	v.SetDefault("paths.cache", cfg.Paths.Cache)
	v.SetDefault("paths.index", cfg.Paths.Index)
	v.SetDefault("paths.raw_dir", cfg.Paths.RawDir)
	v.SetDefault("paths.metadata", cfg.Paths.Metadata)
	v.SetDefault("paths.sources", cfg.Paths.Sources)

	v.SetDefault("scrape.days", cfg.Scrape.Days)
	v.SetDefault("scrape.preset", cfg.Scrape.Preset)

	v.SetDefault("search.endpoint", cfg.Search.Endpoint)
	v.SetDefault("search.result_xpath", cfg.Search.ResultXPath)
	v.SetDefault("search.num_results", cfg.Search.NumResults)
	v.SetDefault("search.delay", cfg.Search.Delay)
	v.SetDefault("search.preset", cfg.Search.Preset)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)
	v.SetDefault("fetcher.user_agents", cfg.Fetcher.UserAgents)
	v.SetDefault("fetcher.stealth", cfg.Fetcher.Stealth)

	v.SetDefault("pipeline.reference_date", cfg.Pipeline.ReferenceDate)
	v.SetDefault("pipeline.negative_policy", cfg.Pipeline.NegativePolicy)
	v.SetDefault("pipeline.clean_preset", cfg.Pipeline.CleanPreset)
	v.SetDefault("pipeline.merge_preset", cfg.Pipeline.MergePreset)

	v.SetDefault("normalizer.lemmatizer", cfg.Normalizer.Lemmatizer)
	v.SetDefault("normalizer.tail_fraction", cfg.Normalizer.TailFraction)

	v.SetDefault("storage.mongo.enabled", cfg.Storage.Mongo.Enabled)
	v.SetDefault("storage.mongo.database", cfg.Storage.Mongo.Database)
	v.SetDefault("storage.mongo.collection", cfg.Storage.Mongo.Collection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
