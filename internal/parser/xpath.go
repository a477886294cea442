package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/antchfx/htmlquery"

	"github.com/IshaanNene/NewsGoat/internal/types"
)

// XPathParser extracts values from HTML with XPath expressions.
type XPathParser struct {
	logger *slog.Logger
}

// NewXPathParser creates a new XPath parser.
func NewXPathParser(logger *slog.Logger) *XPathParser {
	return &XPathParser{
		logger: logger.With("component", "xpath_parser"),
	}
}

// Values applies expr to the response body. Attribute nodes yield their
// value, element nodes their trimmed inner text.
func (p *XPathParser) Values(resp *types.Response, expr string) ([]string, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", resp.URL, err)
	}

	nodes, err := htmlquery.QueryAll(doc, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}

	values := make([]string, 0, len(nodes))
	for _, node := range nodes {
		val := strings.TrimSpace(htmlquery.InnerText(node))
		if val != "" {
			values = append(values, val)
		}
	}
	return values, nil
}

// Links applies expr and resolves each value against the page URL.
// Redirect wrappers of the form /l/?uddg=<target> are unwrapped.
func (p *XPathParser) Links(resp *types.Response, expr string) ([]string, error) {
	values, err := p.Values(resp, expr)
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(resp.FinalURL)
	if base == nil {
		base, _ = url.Parse(resp.URL)
	}

	links := make([]string, 0, len(values))
	for _, v := range values {
		u, err := url.Parse(v)
		if err != nil {
			p.logger.Debug("skipping malformed link", "value", v)
			continue
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		if target := u.Query().Get("uddg"); target != "" {
			if t, err := url.Parse(target); err == nil {
				u = t
			}
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		links = append(links, u.String())
	}
	return links, nil
}
