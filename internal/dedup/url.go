package dedup

import (
	"net/url"
	"sort"
	"strings"
)

// CanonicalizeURL normalizes a URL so search results that differ only in
// form compare equal:
// - lowercases scheme and host
// - removes fragment
// - sorts query parameters
// - removes trailing slash (except root)
// - removes default ports (80 for http, 443 for https)
func CanonicalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = u.Hostname()
	}

	if u.RawQuery != "" {
		params := u.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sorted []string
		for _, k := range keys {
			vals := params[k]
			sort.Strings(vals)
			for _, v := range vals {
				sorted = append(sorted, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		u.RawQuery = strings.Join(sorted, "&")
	}

	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// URLSet is an order-preserving set of canonical URLs.
type URLSet struct {
	seen map[string]struct{}
	urls []string
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add inserts the canonical form of rawURL. It returns false for duplicates.
func (s *URLSet) Add(rawURL string) bool {
	c := CanonicalizeURL(rawURL)
	if _, ok := s.seen[c]; ok {
		return false
	}
	s.seen[c] = struct{}{}
	s.urls = append(s.urls, c)
	return true
}

// URLs returns canonical URLs in insertion order.
func (s *URLSet) URLs() []string { return s.urls }

// Len returns the number of distinct URLs.
func (s *URLSet) Len() int { return len(s.urls) }
