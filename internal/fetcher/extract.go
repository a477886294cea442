package fetcher

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/IshaanNene/NewsGoat/internal/parser"
	"github.com/IshaanNene/NewsGoat/internal/textnorm"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

const maxKeywords = 10

// Extractor turns a fetched article page into a raw record.
type Extractor struct {
	structured *parser.StructuredDataExtractor
	normalizer *textnorm.Normalizer
	logger     *slog.Logger
}

// NewExtractor creates an Extractor. n derives keywords for pages that
// declare none; it may be nil.
func NewExtractor(n *textnorm.Normalizer, logger *slog.Logger) *Extractor {
	return &Extractor{
		structured: parser.NewStructuredDataExtractor(logger),
		normalizer: n,
		logger:     logger.With("component", "extractor"),
	}
}

// Extract builds a record for resp attributed to source. The record has no
// clean_body or t; those are left to the admission pipeline.
func (e *Extractor) Extract(resp *types.Response, source string) (*types.Record, error) {
	pageURL := resp.FinalURL
	if pageURL == "" {
		pageURL = resp.URL
	}
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, &types.FetchError{URL: resp.URL, Err: fmt.Errorf("%w: %v", types.ErrInvalidURL, err)}
	}

	article, err := readability.FromReader(bytes.NewReader(resp.Body), parsedURL)
	if err != nil {
		return nil, &types.FetchError{URL: resp.URL, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %v", types.ErrNotAnArticle, err)}
	}

	body := strings.TrimSpace(article.TextContent)
	if body == "" {
		return nil, &types.FetchError{URL: resp.URL, StatusCode: resp.StatusCode, Err: types.ErrEmptyBody}
	}

	meta, err := e.structured.Extract(resp)
	if err != nil {
		e.logger.Debug("metadata extraction failed", "url", resp.URL, "error", err)
		meta = &parser.ArticleMeta{}
	}

	rec := types.NewRecord(resp.URL)
	rec.Set(types.FieldSource, source)
	rec.Set(types.FieldTitle, firstNonEmpty(strings.TrimSpace(article.Title), meta.Title))
	rec.Set(types.FieldBody, body)
	rec.Set(types.FieldSummary, firstNonEmpty(strings.TrimSpace(article.Excerpt), meta.Description))
	rec.Set(types.FieldImageURL, firstNonEmpty(article.Image, meta.Image))

	keywords := meta.Keywords
	if len(keywords) == 0 && e.normalizer != nil {
		keywords = e.normalizer.Keywords(body, maxKeywords)
	}
	if keywords == nil {
		keywords = []string{}
	}
	rec.Set(types.FieldKeywords, keywords)

	date, clock := e.publication(resp, meta, pageURL)
	rec.Set(types.FieldDate, date)
	rec.Set(types.FieldTime, clock)
	return rec, nil
}

// publication resolves date and time: page metadata first, then a date in
// the URL, then a date in the page text. Fallbacks carry the placeholder
// time.
func (e *Extractor) publication(resp *types.Response, meta *parser.ArticleMeta, pageURL string) (string, string) {
	if !meta.Published.IsZero() {
		clock := types.PlaceholderTime
		if meta.HasClock {
			clock = meta.Published.Format("15:04:05")
		}
		return meta.Published.Format("2006-01-02"), clock
	}

	if t, ok := parser.DateFromURL(pageURL); ok {
		return t.Format("2006-01-02"), types.PlaceholderTime
	}

	if doc, err := resp.Document(); err == nil {
		if t, ok := parser.DateFromText(doc.Text()); ok {
			return t.Format("2006-01-02"), types.PlaceholderTime
		}
	}
	return types.UnknownDate, types.PlaceholderTime
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
