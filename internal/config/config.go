package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for NewsGoat.
type Config struct {
	Paths      PathsConfig             `mapstructure:"paths"      yaml:"paths"`
	Scrape     ScrapeConfig            `mapstructure:"scrape"     yaml:"scrape"`
	Search     SearchConfig            `mapstructure:"search"     yaml:"search"`
	Fetcher    FetcherConfig           `mapstructure:"fetcher"    yaml:"fetcher"`
	Pipeline   PipelineConfig          `mapstructure:"pipeline"   yaml:"pipeline"`
	Normalizer NormalizerConfig        `mapstructure:"normalizer" yaml:"normalizer"`
	Presets    map[string]PresetConfig `mapstructure:"presets"    yaml:"presets"`
	Storage    StorageConfig           `mapstructure:"storage"    yaml:"storage"`
	Logging    LoggingConfig           `mapstructure:"logging"    yaml:"logging"`
}

// PathsConfig locates every file the pipeline reads or writes.
type PathsConfig struct {
	Master   string `mapstructure:"master"   yaml:"master"`
	Cleaned  string `mapstructure:"cleaned"  yaml:"cleaned"`
	Removed  string `mapstructure:"removed"  yaml:"removed"`
	Cache    string `mapstructure:"cache"    yaml:"cache"`
	Index    string `mapstructure:"index"    yaml:"index"`
	RawDir   string `mapstructure:"raw_dir"  yaml:"raw_dir"`
	Metadata string `mapstructure:"metadata" yaml:"metadata"`
	Sources  string `mapstructure:"sources"  yaml:"sources"`
}

// ScrapeConfig controls the daily RSS run.
type ScrapeConfig struct {
	// Days is the recency window; also bound to DAYS_TO_SCRAPE.
	Days   int    `mapstructure:"days"   yaml:"days"`
	Preset string `mapstructure:"preset" yaml:"preset"`
}

// SearchConfig controls search-result driven backfills.
type SearchConfig struct {
	// Endpoint is a results page URL with a %s placeholder for the escaped query.
	Endpoint    string        `mapstructure:"endpoint"     yaml:"endpoint"`
	ResultXPath string        `mapstructure:"result_xpath" yaml:"result_xpath"`
	NumResults  int           `mapstructure:"num_results"  yaml:"num_results"`
	Delay       time.Duration `mapstructure:"delay"        yaml:"delay"`
	Preset      string        `mapstructure:"preset"       yaml:"preset"`
	Queries     []SearchQuery `mapstructure:"queries"      yaml:"queries"`
}

// SearchQuery is one search backfill, usually one per news outlet.
type SearchQuery struct {
	Source     string `mapstructure:"source"      yaml:"source"`
	Tag        string `mapstructure:"tag"         yaml:"tag"`
	Query      string `mapstructure:"query"       yaml:"query"`
	URLPattern string `mapstructure:"url_pattern" yaml:"url_pattern"`
}

// FetcherConfig controls page fetching.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`
	Stealth         bool          `mapstructure:"stealth"           yaml:"stealth"`
}

// PipelineConfig holds settings shared by every admission run.
type PipelineConfig struct {
	// ReferenceDate is the frozen snapshot date (YYYY-MM-DD) used by the
	// cleaner and the metadata table.
	ReferenceDate  string `mapstructure:"reference_date"  yaml:"reference_date"`
	NegativePolicy string `mapstructure:"negative_policy" yaml:"negative_policy"`
	CleanPreset    string `mapstructure:"clean_preset"    yaml:"clean_preset"`
	MergePreset    string `mapstructure:"merge_preset"    yaml:"merge_preset"`
}

// NormalizerConfig controls text normalization.
type NormalizerConfig struct {
	Lemmatizer     string   `mapstructure:"lemmatizer"      yaml:"lemmatizer"`
	ExtraStopwords []string `mapstructure:"extra_stopwords" yaml:"extra_stopwords"`
	NoisePhrases   []string `mapstructure:"noise_phrases"   yaml:"noise_phrases"`
	TailFraction   float64  `mapstructure:"tail_fraction"   yaml:"tail_fraction"`
}

// PresetConfig is one admission configuration. Each ingestion flow
// (daily RSS, search backfill, cleaner, cache merge) maps onto one preset.
type PresetConfig struct {
	StripBoilerplate      bool     `mapstructure:"strip_boilerplate"       yaml:"strip_boilerplate"`
	MinWordCount          int      `mapstructure:"min_word_count"          yaml:"min_word_count"`
	StripStopwords        bool     `mapstructure:"strip_stopwords"         yaml:"strip_stopwords"`
	GenericTitles         []string `mapstructure:"generic_titles"          yaml:"generic_titles"`
	RejectPlaceholderTime bool     `mapstructure:"reject_placeholder_time" yaml:"reject_placeholder_time"`
	ForceClean            bool     `mapstructure:"force_clean"             yaml:"force_clean"`
	WriteBin              bool     `mapstructure:"write_bin"               yaml:"write_bin"`
	Dedup                 bool     `mapstructure:"dedup"                   yaml:"dedup"`
}

// StorageConfig controls optional mirrors of the master store.
type StorageConfig struct {
	Mongo MongoConfig `mapstructure:"mongo" yaml:"mongo"`
}

// MongoConfig mirrors the master store into a MongoDB collection.
type MongoConfig struct {
	Enabled    bool   `mapstructure:"enabled"    yaml:"enabled"`
	URI        string `mapstructure:"uri"        yaml:"uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Preset names shipped by default.
const (
	PresetRSSDaily     = "rss-daily"
	PresetSearch       = "search"
	PresetCleaner      = "cleaner"
	PresetArchiveMerge = "archive-merge"
)

// DefaultPresets returns the built-in admission presets.
func DefaultPresets() map[string]PresetConfig {
	return map[string]PresetConfig{
		PresetRSSDaily: {
			StripStopwords: true,
		},
		PresetSearch: {},
		PresetCleaner: {
			StripBoilerplate:      true,
			MinWordCount:          50,
			GenericTitles:         []string{"bbc news"},
			RejectPlaceholderTime: true,
			WriteBin:              true,
			Dedup:                 true,
		},
		PresetArchiveMerge: {
			StripStopwords: true,
			ForceClean:     true,
		},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			Master:   "news_data/all_articles.json",
			Cleaned:  "news_data/all_articles_cleaned.json",
			Removed:  "news_data/removed_articles.json",
			Cache:    "news_data/article_cache.json",
			Index:    "news_data/index_by_date.json",
			RawDir:   "news_data/raw_articles",
			Metadata: "Labelling/metadata_base.csv",
			Sources:  "app/sources.json",
		},
		Scrape: ScrapeConfig{
			Days:   1,
			Preset: PresetRSSDaily,
		},
		Search: SearchConfig{
			Endpoint:    "https://html.duckduckgo.com/html/?q=%s",
			ResultXPath: "//a[contains(@class,'result__a')]/@href",
			NumResults:  50,
			Delay:       1 * time.Second,
			Preset:      PresetSearch,
			Queries: []SearchQuery{
				{
					Source:     "The Guardian",
					Tag:        "guardian",
					Query:      "site:theguardian.com after:2024-11-13 before:2025-02-11",
					URLPattern: `^https://www\.theguardian\.com/`,
				},
				{
					Source:     "Reuters",
					Tag:        "reuters",
					Query:      "site:reuters.com after:2024-11-13 before:2025-05-12",
					URLPattern: `reuters\.com/.*[/-]\d{4}-\d{2}-\d{2}/`,
				},
			},
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			RequestTimeout:  10 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    20,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Pipeline: PipelineConfig{
			ReferenceDate:  "2025-05-12",
			NegativePolicy: "sentinel",
			CleanPreset:    PresetCleaner,
			MergePreset:    PresetArchiveMerge,
		},
		Normalizer: NormalizerConfig{
			Lemmatizer:   "golem",
			TailFraction: 0.3,
		},
		Presets: DefaultPresets(),
		Storage: StorageConfig{
			Mongo: MongoConfig{
				Database:   "newsgoat",
				Collection: "articles",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Preset looks up a preset by name.
func (c *Config) Preset(name string) (PresetConfig, bool) {
	p, ok := c.Presets[name]
	return p, ok
}
