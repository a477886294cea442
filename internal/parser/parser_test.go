package parser

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/IshaanNene/NewsGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const articleHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Floods hit the valley | Example News</title>
    <meta name="description" content="Rivers burst their banks overnight.">
    <meta name="keywords" content="weather, floods">
    <meta property="og:title" content="OG Floods">
    <meta property="og:image" content="https://example.com/og.jpg">
    <meta property="article:tag" content="Climate">
    <script type="application/ld+json">
    {"@context":"https://schema.org","@graph":[
        {"@type":"WebPage","name":"ignored"},
        {"@type":"NewsArticle","headline":"Floods hit the valley",
         "datePublished":"2024-11-05T14:30:00Z",
         "image":[{"@type":"ImageObject","url":"https://example.com/ld.jpg"}],
         "keywords":["Floods","Weather"]}
    ]}
    </script>
</head>
<body>
    <article><p>Rivers burst their banks overnight on 5 November 2024.</p></article>
</body>
</html>`

func makeResp(url, body string) *types.Response {
	return &types.Response{
		URL:         url,
		FinalURL:    url,
		StatusCode:  200,
		Body:        []byte(body),
		ContentType: "text/html",
	}
}

// --- Structured data ---

func TestStructuredJSONLDWins(t *testing.T) {
	sde := NewStructuredDataExtractor(testLogger)
	meta, err := sde.Extract(makeResp("https://example.com/a", articleHTML))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if meta.Title != "Floods hit the valley" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Image != "https://example.com/ld.jpg" {
		t.Errorf("image = %q", meta.Image)
	}
	if len(meta.Keywords) != 2 || meta.Keywords[0] != "Floods" {
		t.Errorf("keywords = %v", meta.Keywords)
	}
	want := time.Date(2024, 11, 5, 14, 30, 0, 0, time.UTC)
	if !meta.Published.Equal(want) || !meta.HasClock {
		t.Errorf("published = %v clock=%v", meta.Published, meta.HasClock)
	}
	if meta.Description != "Rivers burst their banks overnight." {
		t.Errorf("description = %q", meta.Description)
	}
}

func TestStructuredOpenGraphFallback(t *testing.T) {
	html := `<html><head>
    <meta property="og:title" content="OG Title">
    <meta property="og:image" content="https://example.com/og.jpg">
    <meta property="article:published_time" content="2024-03-01T08:00:00+01:00">
    <meta property="article:tag" content="Politics">
    <meta property="article:tag" content="Europe">
    </head><body></body></html>`

	meta, err := NewStructuredDataExtractor(testLogger).Extract(makeResp("https://example.com/b", html))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if meta.Title != "OG Title" || meta.Image != "https://example.com/og.jpg" {
		t.Errorf("og fields = %q %q", meta.Title, meta.Image)
	}
	if len(meta.Keywords) != 2 || meta.Keywords[1] != "Europe" {
		t.Errorf("keywords = %v", meta.Keywords)
	}
	want := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	if !meta.Published.Equal(want) {
		t.Errorf("published = %v, want %v", meta.Published, want)
	}
}

func TestStructuredMetaTags(t *testing.T) {
	html := `<html><head>
    <meta name="news_keywords" content=" economy , markets ,">
    <meta name="pubdate" content="2024-06-30">
    </head><body></body></html>`

	meta, err := NewStructuredDataExtractor(testLogger).Extract(makeResp("https://example.com/c", html))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(meta.Keywords) != 2 || meta.Keywords[0] != "economy" || meta.Keywords[1] != "markets" {
		t.Errorf("keywords = %v", meta.Keywords)
	}
	if meta.Published.Format("2006-01-02") != "2024-06-30" || meta.HasClock {
		t.Errorf("published = %v clock=%v", meta.Published, meta.HasClock)
	}
}

func TestStructuredTimeElement(t *testing.T) {
	html := `<html><body><time datetime="2023-12-24T18:00:00Z">Christmas Eve</time></body></html>`
	meta, err := NewStructuredDataExtractor(testLogger).Extract(makeResp("https://example.com/d", html))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if meta.Published.IsZero() || meta.Published.Hour() != 18 {
		t.Errorf("published = %v", meta.Published)
	}
}

func TestStructuredInvalidJSONLD(t *testing.T) {
	html := `<html><head><script type="application/ld+json">{not json</script></head></html>`
	meta, err := NewStructuredDataExtractor(testLogger).Extract(makeResp("https://example.com/e", html))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if meta.Title != "" || !meta.Published.IsZero() {
		t.Errorf("expected empty meta, got %+v", meta)
	}
}

func TestParseMetaTime(t *testing.T) {
	tests := []struct {
		in    string
		ok    bool
		clock bool
	}{
		{"2024-11-05T14:30:00Z", true, true},
		{"2024-11-05T14:30:00.123+02:00", true, true},
		{"2024-11-05T14:30:00+0000", true, true},
		{"2024-11-05 14:30:00", true, true},
		{"Tue, 05 Nov 2024 14:30:00 +0000", true, true},
		{"2024-11-05", true, false},
		{"", false, false},
		{"yesterday", false, false},
	}
	for _, tt := range tests {
		_, clock, ok := ParseMetaTime(tt.in)
		if ok != tt.ok || clock != tt.clock {
			t.Errorf("ParseMetaTime(%q) = clock %v ok %v, want %v %v", tt.in, clock, ok, tt.clock, tt.ok)
		}
	}
}

// --- Date fallbacks ---

func TestDateFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.theguardian.com/world/2024/nov/05/us-election", "2024-11-05"},
		{"https://www.reuters.com/world/europe/story-2024-11-05/", "2024-11-05"},
		{"https://www.reuters.com/world/2024-11-05/story", "2024-11-05"},
		{"https://example.com/2023/02/14/valentines", "2023-02-14"},
		{"https://example.com/news/story", ""},
		{"https://example.com/2024/13/40/bad", ""},
	}
	for _, tt := range tests {
		got, ok := DateFromURL(tt.url)
		if tt.want == "" {
			if ok {
				t.Errorf("DateFromURL(%q) = %v, want none", tt.url, got)
			}
			continue
		}
		if !ok || got.Format("2006-01-02") != tt.want {
			t.Errorf("DateFromURL(%q) = %v %v, want %s", tt.url, got, ok, tt.want)
		}
	}
}

func TestDateFromText(t *testing.T) {
	got, ok := DateFromText("Published on 5 November 2024 at noon")
	if !ok || got.Format("2006-01-02") != "2024-11-05" {
		t.Errorf("DateFromText = %v %v", got, ok)
	}

	if _, ok := DateFromText("no date here"); ok {
		t.Error("expected no date")
	}

	// 31 February is skipped in favour of the next valid match.
	got, ok = DateFromText("31 February 2024 or 1 March 2024")
	if !ok || got.Format("2006-01-02") != "2024-03-01" {
		t.Errorf("DateFromText = %v %v", got, ok)
	}
}

// --- XPath ---

const resultsHTML = `<html><body>
<div class="result"><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.theguardian.com%2Fworld%2F2024%2Fnov%2F05%2Fstory&amp;rut=x">One</a></div>
<div class="result"><a class="result__a" href="https://www.reuters.com/world/story-2024-11-05/">Two</a></div>
<div class="result"><a class="result__a" href="/relative/path">Three</a></div>
<div class="result"><a class="result__a" href="javascript:void(0)">Four</a></div>
</body></html>`

func TestXPathValues(t *testing.T) {
	p := NewXPathParser(testLogger)
	values, err := p.Values(makeResp("https://html.duckduckgo.com/html/?q=x", resultsHTML), "//a[contains(@class,'result__a')]")
	if err != nil {
		t.Fatalf("Values error: %v", err)
	}
	if len(values) != 4 || values[0] != "One" {
		t.Errorf("values = %v", values)
	}
}

func TestXPathLinks(t *testing.T) {
	p := NewXPathParser(testLogger)
	links, err := p.Links(makeResp("https://html.duckduckgo.com/html/?q=x", resultsHTML), "//a[contains(@class,'result__a')]/@href")
	if err != nil {
		t.Fatalf("Links error: %v", err)
	}

	want := []string{
		"https://www.theguardian.com/world/2024/nov/05/story",
		"https://www.reuters.com/world/story-2024-11-05/",
		"https://html.duckduckgo.com/relative/path",
	}
	if len(links) != len(want) {
		t.Fatalf("links = %v", links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %q, want %q", i, links[i], want[i])
		}
	}
}

func TestXPathInvalidExpression(t *testing.T) {
	p := NewXPathParser(testLogger)
	if _, err := p.Values(makeResp("https://example.com", "<html></html>"), "//a[@"); err == nil {
		t.Error("expected error for invalid xpath")
	}
}
