package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/IshaanNene/NewsGoat/internal/config"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// FeedEntry is one feed item inside the recency window.
type FeedEntry struct {
	Link      string
	Title     string
	Published time.Time // UTC
}

// North American zone abbreviations that feeds still emit and that Go's
// time.Parse cannot resolve to an offset.
var zoneOffsets = map[string]int{
	"EDT": -4, "EST": -5,
	"CDT": -5, "CST": -6,
	"MDT": -6, "MST": -7,
	"PDT": -7, "PST": -8,
}

var zonelessLayouts = []string{
	"Mon, 02 Jan 2006 15:04:05",
	"Mon, 2 Jan 2006 15:04:05",
	"Mon, 02 Jan 2006 15:04",
	"Mon, 2 Jan 2006 15:04",
	"02 Jan 2006 15:04:05",
	"2 Jan 2006 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// RSSReader fetches feeds and yields the entries published within the last
// Days days.
type RSSReader struct {
	fetcher Fetcher
	parser  *gofeed.Parser
	days    int
	now     func() time.Time
	logger  *slog.Logger
}

// NewRSSReader creates a reader over f with a recency window of days.
func NewRSSReader(f Fetcher, days int, logger *slog.Logger) *RSSReader {
	return &RSSReader{
		fetcher: f,
		parser:  gofeed.NewParser(),
		days:    days,
		now:     time.Now,
		logger:  logger.With("component", "rss_reader"),
	}
}

// SetClock replaces time.Now as the end of the recency window.
func (r *RSSReader) SetClock(now func() time.Time) {
	r.now = now
}

// Entries fetches feedURL and returns its in-window entries in feed order.
// Entries without a link or a parseable publication date are skipped.
func (r *RSSReader) Entries(ctx context.Context, feedURL string) ([]FeedEntry, error) {
	resp, err := r.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	feed, err := r.parser.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &types.FetchError{URL: feedURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("parse feed: %w", err)}
	}
	if len(feed.Items) == 0 {
		return nil, &types.FetchError{URL: feedURL, StatusCode: resp.StatusCode, Err: types.ErrNoEntries}
	}

	now := r.now().UTC()
	window := time.Duration(r.days) * 24 * time.Hour

	var entries []FeedEntry
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if err := config.ValidateURL(link); err != nil {
			r.logger.Debug("skipping entry", "feed", feedURL, "link", link, "error", err)
			continue
		}
		pub, ok := ParsePublished(item)
		if !ok {
			r.logger.Debug("skipping undated entry", "feed", feedURL, "link", link)
			continue
		}
		if now.Sub(pub) > window {
			continue
		}
		entries = append(entries, FeedEntry{Link: link, Title: item.Title, Published: pub})
	}

	r.logger.Debug("feed read", "feed", feedURL, "items", len(feed.Items), "in_window", len(entries))
	return entries, nil
}

// ParsePublished resolves an item's publication instant in UTC. Zone
// abbreviations from zoneOffsets take precedence over gofeed's parse, which
// would otherwise treat them as UTC.
func ParsePublished(item *gofeed.Item) (time.Time, bool) {
	raw := strings.TrimSpace(item.Published)
	if raw == "" {
		return time.Time{}, false
	}

	if t, ok := parseZoneAbbrev(raw); ok {
		return t, true
	}
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC(), true
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseZoneAbbrev(raw string) (time.Time, bool) {
	idx := strings.LastIndexByte(raw, ' ')
	if idx < 0 {
		return time.Time{}, false
	}
	offset, ok := zoneOffsets[strings.ToUpper(raw[idx+1:])]
	if !ok {
		return time.Time{}, false
	}

	zone := time.FixedZone(raw[idx+1:], offset*3600)
	head := strings.TrimSpace(raw[:idx])
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, head, zone); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
