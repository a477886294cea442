package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/NewsGoat/internal/config"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// BrowserFetcher renders pages in headless Chromium. Runs are sequential,
// so a single reusable tab is kept.
type BrowserFetcher struct {
	browser   *rod.Browser
	page      *rod.Page
	stealth   bool
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// NewBrowserFetcher launches Chromium and connects to it.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		stealth: cfg.Fetcher.Stealth,
		timeout: cfg.Fetcher.RequestTimeout,
		logger:  logger.With("component", "browser_fetcher"),
	}
	if len(cfg.Fetcher.UserAgents) > 0 {
		bf.userAgent = cfg.Fetcher.UserAgents[0]
	}

	launchURL, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	bf.browser = browser

	bf.logger.Info("browser fetcher ready", "stealth", bf.stealth)
	return bf, nil
}

func (bf *BrowserFetcher) openPage() (*rod.Page, error) {
	if bf.page != nil {
		return bf.page, nil
	}

	var (
		page *rod.Page
		err  error
	)
	if bf.stealth {
		page, err = stealth.Page(bf.browser)
	} else {
		page, err = bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	if bf.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: bf.userAgent}); err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}
	bf.page = page
	return page, nil
}

// Fetch navigates to rawURL and returns the rendered HTML.
func (bf *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*types.Response, error) {
	start := time.Now()

	page, err := bf.openPage()
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	page = page.Context(ctx)
	if bf.timeout > 0 {
		page = page.Timeout(bf.timeout)
	}

	if err := page.Navigate(rawURL); err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	if err := page.WaitStable(300 * time.Millisecond); err != nil {
		bf.logger.Warn("page stability timeout, continuing", "url", rawURL, "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	finalURL := rawURL
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	duration := time.Since(start)
	// Rod does not surface the document status code.
	resp := types.NewBrowserResponse(rawURL, 200, []byte(html), finalURL, duration)

	bf.logger.Debug("browser fetch complete",
		"url", rawURL,
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)
	return resp, nil
}

// Close shuts down the browser.
func (bf *BrowserFetcher) Close() error {
	if bf.page != nil {
		_ = bf.page.Close()
	}
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
