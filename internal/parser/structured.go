package parser

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/NewsGoat/internal/types"
)

// ArticleMeta is what a page says about itself through JSON-LD,
// OpenGraph and plain meta tags.
type ArticleMeta struct {
	Title       string
	Description string
	Image       string
	Keywords    []string

	// Published is zero when the page carries no publication instant.
	Published time.Time
	// HasClock is false when the page only gave a calendar date.
	HasClock bool
}

// StructuredDataExtractor reads article metadata from a page.
type StructuredDataExtractor struct {
	logger *slog.Logger
}

// NewStructuredDataExtractor creates a new structured data extractor.
func NewStructuredDataExtractor(logger *slog.Logger) *StructuredDataExtractor {
	return &StructuredDataExtractor{
		logger: logger.With("component", "structured_data"),
	}
}

var articleTypes = map[string]bool{
	"NewsArticle":          true,
	"Article":              true,
	"ReportageNewsArticle": true,
	"AnalysisNewsArticle":  true,
	"BlogPosting":          true,
	"LiveBlogPosting":      true,
}

// Extract collects metadata from resp. JSON-LD wins over OpenGraph, which
// wins over plain meta tags.
func (sde *StructuredDataExtractor) Extract(resp *types.Response) (*ArticleMeta, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, err
	}

	meta := &ArticleMeta{}
	for _, obj := range sde.jsonLD(doc) {
		if !isArticle(obj["@type"]) {
			continue
		}
		sde.fillFromJSONLD(meta, obj)
	}
	fillFromOpenGraph(meta, doc)
	fillFromMetaTags(meta, doc)
	return meta, nil
}

// jsonLD parses every <script type="application/ld+json"> element,
// flattening arrays and @graph containers.
func (sde *StructuredDataExtractor) jsonLD(doc *goquery.Document) []map[string]any {
	var results []map[string]any

	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}

		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			sde.logger.Debug("invalid json-ld", "error", err)
			return
		}
		results = append(results, flattenJSONLD(data)...)
	})

	return results
}

func flattenJSONLD(data any) []map[string]any {
	switch v := data.(type) {
	case map[string]any:
		out := []map[string]any{v}
		if graph, ok := v["@graph"]; ok {
			out = append(out, flattenJSONLD(graph)...)
		}
		return out
	case []any:
		var out []map[string]any
		for _, item := range v {
			out = append(out, flattenJSONLD(item)...)
		}
		return out
	}
	return nil
}

func isArticle(t any) bool {
	switch v := t.(type) {
	case string:
		return articleTypes[v]
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && articleTypes[s] {
				return true
			}
		}
	}
	return false
}

func (sde *StructuredDataExtractor) fillFromJSONLD(meta *ArticleMeta, obj map[string]any) {
	if meta.Title == "" {
		meta.Title = stringValue(obj["headline"])
	}
	if meta.Description == "" {
		meta.Description = stringValue(obj["description"])
	}
	if meta.Image == "" {
		meta.Image = imageValue(obj["image"])
	}
	if len(meta.Keywords) == 0 {
		meta.Keywords = listValue(obj["keywords"])
	}
	if meta.Published.IsZero() {
		if t, clock, ok := ParseMetaTime(stringValue(obj["datePublished"])); ok {
			meta.Published, meta.HasClock = t, clock
		}
	}
}

func fillFromOpenGraph(meta *ArticleMeta, doc *goquery.Document) {
	og := make(map[string]string)
	var tags []string

	doc.Find(`meta[property^="og:"], meta[property^="article:"]`).Each(func(i int, sel *goquery.Selection) {
		property, _ := sel.Attr("property")
		content, _ := sel.Attr("content")
		content = strings.TrimSpace(content)
		if property == "" || content == "" {
			return
		}
		if property == "article:tag" {
			tags = append(tags, content)
			return
		}
		if _, seen := og[property]; !seen {
			og[property] = content
		}
	})

	if meta.Title == "" {
		meta.Title = og["og:title"]
	}
	if meta.Description == "" {
		meta.Description = og["og:description"]
	}
	if meta.Image == "" {
		meta.Image = og["og:image"]
	}
	if len(meta.Keywords) == 0 && len(tags) > 0 {
		meta.Keywords = tags
	}
	if meta.Published.IsZero() {
		if t, clock, ok := ParseMetaTime(og["article:published_time"]); ok {
			meta.Published, meta.HasClock = t, clock
		}
	}
}

var publishedSelectors = []string{
	`meta[itemprop="datePublished"]`,
	`meta[name="pubdate"]`,
	`meta[name="publish-date"]`,
	`meta[name="date"]`,
	`meta[name="dc.date"]`,
	`meta[name="DC.date.issued"]`,
}

func fillFromMetaTags(meta *ArticleMeta, doc *goquery.Document) {
	if len(meta.Keywords) == 0 {
		for _, name := range []string{"news_keywords", "keywords"} {
			if content, ok := doc.Find(`meta[name="` + name + `"]`).First().Attr("content"); ok {
				if kw := splitKeywords(content); len(kw) > 0 {
					meta.Keywords = kw
					break
				}
			}
		}
	}
	if meta.Description == "" {
		if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
			meta.Description = strings.TrimSpace(content)
		}
	}
	if !meta.Published.IsZero() {
		return
	}

	for _, sel := range publishedSelectors {
		content, ok := doc.Find(sel).First().Attr("content")
		if !ok {
			continue
		}
		if t, clock, ok := ParseMetaTime(content); ok {
			meta.Published, meta.HasClock = t, clock
			return
		}
	}
	if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if t, clock, ok := ParseMetaTime(dt); ok {
			meta.Published, meta.HasClock = t, clock
		}
	}
}

var metaTimeLayouts = []struct {
	layout string
	clock  bool
}{
	{time.RFC3339Nano, true},
	{time.RFC3339, true},
	{"2006-01-02T15:04:05Z0700", true},
	{"2006-01-02T15:04:05.000Z0700", true},
	{"2006-01-02T15:04Z07:00", true},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02 15:04:05", true},
	{time.RFC1123Z, true},
	{time.RFC1123, true},
	{"2006-01-02", false},
	{"20060102", false},
}

// ParseMetaTime parses the date forms found in article metadata. The
// result is in UTC. clock is false for date-only values.
func ParseMetaTime(s string) (t time.Time, clock bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	for _, l := range metaTimeLayouts {
		if parsed, err := time.Parse(l.layout, s); err == nil {
			return parsed.UTC(), l.clock, true
		}
	}
	return time.Time{}, false, false
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case []any:
		if len(s) > 0 {
			return stringValue(s[0])
		}
	}
	return ""
}

func imageValue(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case map[string]any:
		return stringValue(img["url"])
	case []any:
		if len(img) > 0 {
			return imageValue(img[0])
		}
	}
	return ""
}

func listValue(v any) []string {
	switch kw := v.(type) {
	case string:
		return splitKeywords(kw)
	case []any:
		var out []string
		for _, item := range kw {
			if s := stringValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func splitKeywords(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
