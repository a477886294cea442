package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"sync/atomic"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/NewsGoat/internal/config"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// HTTPFetcher implements Fetcher using net/http.
type HTTPFetcher struct {
	client      *http.Client
	maxBodySize int64
	logger      *slog.Logger
	userAgents  []string
	uaIndex     atomic.Int64
}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher(cfg *config.Config, logger *slog.Logger) (*HTTPFetcher, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.Fetcher.MaxIdleConns,
		MaxIdleConnsPerHost: max(cfg.Fetcher.MaxIdleConns/2, 1),
		IdleConnTimeout:     cfg.Fetcher.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // decompressed below, brotli included
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !cfg.Fetcher.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= cfg.Fetcher.MaxRedirects {
			return fmt.Errorf("max redirects (%d) reached", cfg.Fetcher.MaxRedirects)
		}
		return nil
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport:     transport,
			Jar:           jar,
			Timeout:       cfg.Fetcher.RequestTimeout,
			CheckRedirect: redirectPolicy,
		},
		maxBodySize: cfg.Fetcher.MaxBodySize,
		logger:      logger.With("component", "http_fetcher"),
		userAgents:  cfg.Fetcher.UserAgents,
	}, nil
}

// Fetch issues a GET for rawURL. Non-2xx responses are errors; nothing is
// retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*types.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	httpReq.Header.Set("User-Agent", f.nextUserAgent())
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/rss+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(httpResp.Body, 4096))
		return nil, &types.FetchError{
			URL:        rawURL,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", httpResp.Status),
		}
	}

	var reader io.Reader = httpResp.Body
	if f.maxBodySize > 0 {
		reader = io.LimitReader(reader, f.maxBodySize)
	}

	reader, err = decompressReader(httpResp, reader)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, StatusCode: httpResp.StatusCode, Err: err}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, StatusCode: httpResp.StatusCode, Err: err}
	}

	resp := types.NewResponse(rawURL, httpResp, body, duration)

	f.logger.Debug("fetch complete",
		"url", rawURL,
		"status", resp.StatusCode,
		"size", len(body),
		"duration", duration,
	)

	return resp, nil
}

// Close releases resources.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Type returns the fetcher type identifier.
func (f *HTTPFetcher) Type() string {
	return "http"
}

func (f *HTTPFetcher) nextUserAgent() string {
	if len(f.userAgents) == 0 {
		return "NewsGoat/" + config.Version
	}
	idx := f.uaIndex.Add(1) % int64(len(f.userAgents))
	return f.userAgents[idx]
}

// decompressReader wraps a reader with the decoder for the response's
// Content-Encoding.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}
