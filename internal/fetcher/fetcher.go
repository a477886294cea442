package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/NewsGoat/internal/config"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// Fetcher retrieves a single page or feed.
type Fetcher interface {
	// Fetch retrieves the content at rawURL. Failures are *types.FetchError.
	Fetch(ctx context.Context, rawURL string) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// New builds the fetcher selected by cfg.Fetcher.Type.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Fetcher.Type {
	case "", "http":
		return NewHTTPFetcher(cfg, logger)
	case "browser":
		return NewBrowserFetcher(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown fetcher type %q", cfg.Fetcher.Type)
	}
}
