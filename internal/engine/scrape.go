package engine

import (
	"context"
	"time"

	"github.com/IshaanNene/NewsGoat/internal/config"
	"github.com/IshaanNene/NewsGoat/internal/fetcher"
	"github.com/IshaanNene/NewsGoat/internal/storage"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// ScrapeSummary reports a daily RSS run.
type ScrapeSummary struct {
	RunID       string
	Sources     int
	Feeds       int
	FeedsFailed int
	Entries     int
	Cached      int
	FetchFailed int
	Admitted    int
	Rejected    int
	Reasons     map[types.RemoveReason]int
	RawBatch    string
	Merge       storage.MergeResult
	Dates       []string
	Elapsed     time.Duration
}

// Scrape reads every configured feed, fetches in-window articles that are
// not cached yet, admits them with the scrape preset and folds them into
// the master store. Cancelling ctx stops fetching; what was already
// fetched is still persisted.
func (e *Engine) Scrape(ctx context.Context) (*ScrapeSummary, error) {
	logger, runID := e.runLogger("scrape")
	start := time.Now()
	sum := &ScrapeSummary{RunID: runID}

	sources, err := config.LoadSources(e.cfg.Paths.Sources)
	if err != nil {
		return nil, err
	}
	sum.Sources = len(sources)

	f, err := e.pageFetcher()
	if err != nil {
		return nil, err
	}
	cache, err := storage.OpenCache(e.cfg.Paths.Cache, e.logger)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	rss := fetcher.NewRSSReader(f, e.cfg.Scrape.Days, e.logger)
	rss.SetClock(func() time.Time { return now })
	extractor := fetcher.NewExtractor(e.normalizer, e.logger)

	logger.Info("scrape starting", "sources", len(sources), "days", e.cfg.Scrape.Days, "cached", cache.Len())

	seen := make(map[string]bool)
	var candidates []*types.Record

feeds:
	for _, src := range sources {
		for _, feedURL := range src.RSS {
			if ctx.Err() != nil {
				logger.Warn("scrape interrupted, persisting fetched articles", "fetched", len(candidates))
				break feeds
			}
			sum.Feeds++

			entries, err := rss.Entries(ctx, feedURL)
			if err != nil {
				sum.FeedsFailed++
				e.metrics.FeedsFailed.Add(1)
				logger.Warn("feed skipped", "source", src.Name, "feed", feedURL, "error", err)
				continue
			}
			e.metrics.FeedsRead.Add(1)
			sum.Entries += len(entries)

			for _, entry := range entries {
				if ctx.Err() != nil {
					break
				}
				if seen[entry.Link] {
					continue
				}
				seen[entry.Link] = true
				if cache.Has(entry.Link) {
					sum.Cached++
					e.metrics.CacheHits.Add(1)
					continue
				}

				rec, err := e.fetchArticle(ctx, f, extractor, entry.Link, src.Name)
				if err != nil {
					sum.FetchFailed++
					logger.Warn("article skipped", "url", entry.Link, "error", err)
					continue
				}
				// the feed's instant wins over whatever the page claims
				rec.Set(types.FieldDate, entry.Published.Format("2006-01-02"))
				rec.Set(types.FieldTime, entry.Published.Format("15:04:05 MST"))
				candidates = append(candidates, rec)
			}
		}
	}

	p, err := e.pipelineFor(e.cfg.Scrape.Preset, now, logger)
	if err != nil {
		return nil, err
	}
	res := e.admit(p, candidates)
	sum.Admitted = res.Admitted.Len()
	sum.Rejected = res.Rejected.Len()
	sum.Reasons = res.Reasons

	persist := context.WithoutCancel(ctx)
	if err := e.logRejected(res.Rejected); err != nil {
		return nil, err
	}

	if res.Admitted.Len() > 0 {
		day := now.Format("2006-01-02")
		batch := storage.NewBatchStorage(e.cfg.Paths.RawDir, storage.FixedGroup(day), e.logger)
		if err := batch.Store(persist, res.Admitted.Records()); err != nil {
			return nil, err
		}
		sum.RawBatch = batch.Path(day)

		if sum.Merge, err = e.mergeMaster(persist, res.Admitted, now, logger); err != nil {
			return nil, err
		}
		if sum.Dates, err = e.index.Add(day); err != nil {
			return nil, err
		}

		var cacheErr error
		res.Admitted.Each(func(url string, rec *types.Record) bool {
			cacheErr = cache.Add(url, rec)
			return cacheErr == nil
		})
		if cacheErr != nil {
			return nil, cacheErr
		}
	} else {
		logger.Warn("no new articles scraped")
	}

	sum.Elapsed = time.Since(start)
	logger.Info("scrape complete",
		"feeds", sum.Feeds,
		"feeds_failed", sum.FeedsFailed,
		"admitted", sum.Admitted,
		"rejected", sum.Rejected,
		"total", sum.Merge.Total,
		"elapsed", sum.Elapsed,
	)
	return sum, nil
}

// fetchArticle fetches and extracts one page, counting the outcome.
func (e *Engine) fetchArticle(ctx context.Context, f fetcher.Fetcher, x *fetcher.Extractor, url, source string) (*types.Record, error) {
	resp, err := f.Fetch(ctx, url)
	if err != nil {
		e.metrics.FetchFailed.Add(1)
		return nil, err
	}
	e.metrics.PagesFetched.Add(1)
	e.metrics.BytesDownloaded.Add(int64(len(resp.Body)))

	rec, err := x.Extract(resp, source)
	if err != nil {
		e.metrics.FetchFailed.Add(1)
		return nil, err
	}
	return rec, nil
}
