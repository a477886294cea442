package parser

import (
	"regexp"
	"strings"
	"time"
)

var (
	// /2024/nov/05/
	urlMonthName = regexp.MustCompile(`/(\d{4})/(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)/(\d{2})(?:/|$)`)
	// /2024-11-05/ or /story-slug-2024-11-05/
	urlISODate = regexp.MustCompile(`[/-](\d{4}-\d{2}-\d{2})(?:/|$)`)
	// /2024/11/05/
	urlNumeric = regexp.MustCompile(`/(\d{4})/(\d{2})/(\d{2})(?:/|$)`)

	textDate = regexp.MustCompile(`\b(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})\b`)
)

// DateFromURL finds a publication date in a URL path.
func DateFromURL(rawURL string) (time.Time, bool) {
	lower := strings.ToLower(rawURL)

	if m := urlMonthName.FindStringSubmatch(lower); m != nil {
		if t, err := time.Parse("2006/Jan/02", m[1]+"/"+strings.ToUpper(m[2][:1])+m[2][1:]+"/"+m[3]); err == nil {
			return t, true
		}
	}
	if m := urlISODate.FindStringSubmatch(lower); m != nil {
		if t, err := time.Parse("2006-01-02", m[1]); err == nil {
			return t, true
		}
	}
	if m := urlNumeric.FindStringSubmatch(lower); m != nil {
		if t, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateFromText finds the first "5 November 2024" style date in text.
func DateFromText(text string) (time.Time, bool) {
	for _, m := range textDate.FindAllStringSubmatch(text, -1) {
		if t, err := time.Parse("2 January 2006", m[1]+" "+m[2]+" "+m[3]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
