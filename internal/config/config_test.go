package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))

	ref, err := cfg.ReferenceTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC), ref)
}

func TestDefaultPresets(t *testing.T) {
	cfg := DefaultConfig()

	cleaner, ok := cfg.Preset(PresetCleaner)
	require.True(t, ok)
	assert.True(t, cleaner.StripBoilerplate)
	assert.Equal(t, 50, cleaner.MinWordCount)
	assert.Equal(t, []string{"bbc news"}, cleaner.GenericTitles)
	assert.True(t, cleaner.RejectPlaceholderTime)
	assert.True(t, cleaner.Dedup)

	daily, ok := cfg.Preset(PresetRSSDaily)
	require.True(t, ok)
	assert.True(t, daily.StripStopwords)
	assert.False(t, daily.StripBoilerplate)
	assert.Zero(t, daily.MinWordCount)

	_, ok = cfg.Preset("nope")
	assert.False(t, ok)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"fetcher type", func(c *Config) { c.Fetcher.Type = "ftp" }},
		{"negative days", func(c *Config) { c.Scrape.Days = -1 }},
		{"reference date", func(c *Config) { c.Pipeline.ReferenceDate = "12/05/2025" }},
		{"negative policy", func(c *Config) { c.Pipeline.NegativePolicy = "ignore" }},
		{"missing preset", func(c *Config) { c.Pipeline.CleanPreset = "missing" }},
		{"tail fraction", func(c *Config) { c.Normalizer.TailFraction = 0 }},
		{"lemmatizer", func(c *Config) { c.Normalizer.Lemmatizer = "spacy" }},
		{"endpoint", func(c *Config) { c.Search.Endpoint = "https://example.com/" }},
		{"url pattern", func(c *Config) {
			c.Search.Queries = []SearchQuery{{Source: "BBC", Tag: "bbc", Query: "q", URLPattern: "("}}
		}},
		{"mongo uri", func(c *Config) { c.Storage.Mongo.Enabled = true; c.Storage.Mongo.URI = "http://x" }},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newsgoat.yaml")
	content := `
scrape:
  days: 3
pipeline:
  negative_policy: reject
presets:
  cleaner:
    min_word_count: 80
    generic_titles: ["bbc news", "the guardian"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scrape.Days)
	assert.Equal(t, "reject", cfg.Pipeline.NegativePolicy)
	assert.Equal(t, 80, cfg.Presets[PresetCleaner].MinWordCount)
	assert.Len(t, cfg.Presets[PresetCleaner].GenericTitles, 2)

	// presets absent from the file keep their defaults
	_, ok := cfg.Presets[PresetArchiveMerge]
	assert.True(t, ok)
	assert.NoError(t, Validate(cfg))
}

func TestLoadDaysFromEnv(t *testing.T) {
	t.Setenv("DAYS_TO_SCRAPE", "7")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Scrape.Days)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseSources(t *testing.T) {
	data := []byte(`{
		"The Guardian": {"rss": ["https://www.theguardian.com/world/rss"]},
		"BBC": {"rss": ["https://feeds.bbci.co.uk/news/rss.xml", "https://feeds.bbci.co.uk/news/world/rss.xml"]}
	}`)
	sources, err := ParseSources(data)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "BBC", sources[0].Name)
	assert.Len(t, sources[0].RSS, 2)
	assert.Equal(t, "The Guardian", sources[1].Name)
}

func TestParseSourcesInvalid(t *testing.T) {
	for _, data := range []string{
		`{"BBC": {"rss": []}}`,
		`{"BBC": {"rss": ["not a url"]}}`,
		`{"BBC": {}}`,
		`[1, 2]`,
	} {
		_, err := ParseSources([]byte(data))
		assert.Error(t, err, data)
	}
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://example.com/a"))
	assert.Error(t, ValidateURL("ftp://example.com"))
	assert.Error(t, ValidateURL("https://"))
}
