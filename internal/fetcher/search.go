package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"

	"golang.org/x/time/rate"

	"github.com/IshaanNene/NewsGoat/internal/config"
	"github.com/IshaanNene/NewsGoat/internal/dedup"
	"github.com/IshaanNene/NewsGoat/internal/parser"
)

// SearchClient turns a search query into article URLs by scraping an HTML
// results page.
type SearchClient struct {
	fetcher     Fetcher
	xpath       *parser.XPathParser
	endpoint    string
	resultXPath string
	numResults  int
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewSearchClient creates a client over f. Queries are spaced by cfg.Delay.
func NewSearchClient(f Fetcher, cfg config.SearchConfig, logger *slog.Logger) *SearchClient {
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	return &SearchClient{
		fetcher:     f,
		xpath:       parser.NewXPathParser(logger),
		endpoint:    cfg.Endpoint,
		resultXPath: cfg.ResultXPath,
		numResults:  cfg.NumResults,
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger.With("component", "search_client"),
	}
}

// Search returns up to NumResults canonical, distinct URLs for q that match
// q.URLPattern. A failed results page is returned as an error; nothing is
// retried.
func (c *SearchClient) Search(ctx context.Context, q config.SearchQuery) ([]string, error) {
	var pattern *regexp.Regexp
	if q.URLPattern != "" {
		p, err := regexp.Compile(q.URLPattern)
		if err != nil {
			return nil, fmt.Errorf("compile url pattern for %s: %w", q.Tag, err)
		}
		pattern = p
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf(c.endpoint, url.QueryEscape(q.Query))
	resp, err := c.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	links, err := c.xpath.Links(resp, c.resultXPath)
	if err != nil {
		return nil, err
	}

	found := dedup.NewURLSet()
	for _, link := range links {
		if pattern != nil && !pattern.MatchString(link) {
			continue
		}
		found.Add(link)
		if c.numResults > 0 && found.Len() >= c.numResults {
			break
		}
	}

	c.logger.Info("search complete",
		"tag", q.Tag,
		"results", len(links),
		"kept", found.Len(),
	)
	return found.URLs(), nil
}
