package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Scrape.Days < 0 {
		return fmt.Errorf("scrape.days must be >= 0, got %d", cfg.Scrape.Days)
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if cfg.Search.Delay < 0 {
		return fmt.Errorf("search.delay must be >= 0")
	}
	if cfg.Search.NumResults < 1 {
		return fmt.Errorf("search.num_results must be >= 1, got %d", cfg.Search.NumResults)
	}
	if !strings.Contains(cfg.Search.Endpoint, "%s") {
		return fmt.Errorf("search.endpoint must contain a %%s query placeholder")
	}
	for i, q := range cfg.Search.Queries {
		if q.Source == "" || q.Tag == "" || q.Query == "" {
			return fmt.Errorf("search.queries[%d]: source, tag and query are required", i)
		}
		if q.URLPattern != "" {
			if _, err := regexp.Compile(q.URLPattern); err != nil {
				return fmt.Errorf("search.queries[%d].url_pattern: %w", i, err)
			}
		}
	}

	if _, err := time.Parse("2006-01-02", cfg.Pipeline.ReferenceDate); err != nil {
		return fmt.Errorf("pipeline.reference_date must be YYYY-MM-DD, got %q", cfg.Pipeline.ReferenceDate)
	}
	if cfg.Pipeline.NegativePolicy != "sentinel" && cfg.Pipeline.NegativePolicy != "reject" {
		return fmt.Errorf("pipeline.negative_policy must be 'sentinel' or 'reject', got %q", cfg.Pipeline.NegativePolicy)
	}

	for _, name := range []string{cfg.Scrape.Preset, cfg.Search.Preset, cfg.Pipeline.CleanPreset, cfg.Pipeline.MergePreset} {
		p, ok := cfg.Presets[name]
		if !ok {
			return fmt.Errorf("preset %q is not defined", name)
		}
		if p.MinWordCount < 0 {
			return fmt.Errorf("presets.%s.min_word_count must be >= 0", name)
		}
	}

	if cfg.Normalizer.Lemmatizer != "golem" && cfg.Normalizer.Lemmatizer != "none" {
		return fmt.Errorf("normalizer.lemmatizer must be 'golem' or 'none', got %q", cfg.Normalizer.Lemmatizer)
	}
	if cfg.Normalizer.TailFraction <= 0 || cfg.Normalizer.TailFraction > 1 {
		return fmt.Errorf("normalizer.tail_fraction must be in (0, 1], got %v", cfg.Normalizer.TailFraction)
	}

	if cfg.Storage.Mongo.Enabled {
		u, err := url.Parse(cfg.Storage.Mongo.URI)
		if err != nil || (u.Scheme != "mongodb" && u.Scheme != "mongodb+srv") {
			return fmt.Errorf("storage.mongo.uri must be a mongodb:// URI, got %q", cfg.Storage.Mongo.URI)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is fetchable.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

// ReferenceTime parses the frozen reference date.
func (c *Config) ReferenceTime() (time.Time, error) {
	return time.Parse("2006-01-02", c.Pipeline.ReferenceDate)
}
