package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
)

// Source is one named news outlet and its feeds.
type Source struct {
	Name string   `json:"-"   validate:"required"`
	RSS  []string `json:"rss" validate:"required,min=1,dive,required,url"`
}

var sourceValidator = validator.New()

// LoadSources reads a sources file of the form {"name": {"rss": [...]}}.
// Sources are returned sorted by name so runs visit them in a stable order.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources %s: %w", path, err)
	}
	return ParseSources(data)
}

// ParseSources decodes and validates sources file content.
func ParseSources(data []byte) ([]Source, error) {
	raw := make(map[string]Source)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}

	sources := make([]Source, 0, len(raw))
	for name, src := range raw {
		src.Name = name
		if err := sourceValidator.Struct(src); err != nil {
			return nil, fmt.Errorf("source %q: %w", name, err)
		}
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return sources, nil
}
