package engine

import (
	"context"
	"time"

	"github.com/IshaanNene/NewsGoat/internal/config"
	"github.com/IshaanNene/NewsGoat/internal/fetcher"
	"github.com/IshaanNene/NewsGoat/internal/storage"
	"github.com/IshaanNene/NewsGoat/internal/temporal"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// SearchSummary reports one search backfill.
type SearchSummary struct {
	RunID       string
	Tag         string
	Results     int
	FetchFailed int
	Admitted    int
	Rejected    int
	Reasons     map[types.RemoveReason]int
	RawBatches  []string
	Merge       storage.MergeResult
	Elapsed     time.Duration
}

// MonthGroup files a record under <tag>_<YYYY-MM>, or <tag>_unknown when
// its date does not parse.
func MonthGroup(tag string) func(*types.Record) string {
	return func(rec *types.Record) string {
		d, err := temporal.ParseDate(rec.Date())
		if err != nil {
			return tag + "_unknown"
		}
		return tag + "_" + d.Format("2006-01")
	}
}

func (e *Engine) searchClient() (*fetcher.SearchClient, fetcher.Fetcher, error) {
	f, err := e.pageFetcher()
	if err != nil {
		return nil, nil, err
	}
	if e.search == nil {
		e.search = fetcher.NewSearchClient(f, e.cfg.Search, e.logger)
	}
	return e.search, f, nil
}

// Search runs one search backfill: results page, article pages, raw
// batches per month of publication, admission with the search preset, and
// a merge into the master store. Raw batches hold every extracted article,
// admitted or not.
func (e *Engine) Search(ctx context.Context, q config.SearchQuery) (*SearchSummary, error) {
	logger, runID := e.runLogger("search")
	logger = logger.With("tag", q.Tag)
	start := time.Now()
	sum := &SearchSummary{RunID: runID, Tag: q.Tag}

	client, f, err := e.searchClient()
	if err != nil {
		return nil, err
	}

	urls, err := client.Search(ctx, q)
	e.metrics.SearchQueries.Add(1)
	if err != nil {
		return nil, err
	}
	sum.Results = len(urls)
	logger.Info("search results", "query", q.Query, "urls", len(urls))

	extractor := fetcher.NewExtractor(e.normalizer, e.logger)
	var candidates []*types.Record
	for _, u := range urls {
		if ctx.Err() != nil {
			logger.Warn("search interrupted, persisting fetched articles", "fetched", len(candidates))
			break
		}
		rec, err := e.fetchArticle(ctx, f, extractor, u, q.Source)
		if err != nil {
			sum.FetchFailed++
			logger.Warn("article skipped", "url", u, "error", err)
			continue
		}
		candidates = append(candidates, rec)
	}

	persist := context.WithoutCancel(ctx)
	if len(candidates) > 0 {
		group := MonthGroup(q.Tag)
		batch := storage.NewBatchStorage(e.cfg.Paths.RawDir, group, e.logger)
		if err := batch.Store(persist, candidates); err != nil {
			return nil, err
		}
		written := make(map[string]bool)
		for _, rec := range candidates {
			if g := group(rec); !written[g] {
				written[g] = true
				sum.RawBatches = append(sum.RawBatches, batch.Path(g))
			}
		}
	}

	now := e.now().UTC()
	p, err := e.pipelineFor(e.cfg.Search.Preset, now, logger)
	if err != nil {
		return nil, err
	}
	res := e.admit(p, candidates)
	sum.Admitted = res.Admitted.Len()
	sum.Rejected = res.Rejected.Len()
	sum.Reasons = res.Reasons

	if err := e.logRejected(res.Rejected); err != nil {
		return nil, err
	}
	if sum.Merge, err = e.mergeMaster(persist, res.Admitted, now, logger); err != nil {
		return nil, err
	}

	sum.Elapsed = time.Since(start)
	logger.Info("search complete",
		"results", sum.Results,
		"admitted", sum.Admitted,
		"rejected", sum.Rejected,
		"elapsed", sum.Elapsed,
	)
	return sum, nil
}

// SearchAll runs every configured query in order. A failed query is
// logged and skipped; the searches share one rate limiter.
func (e *Engine) SearchAll(ctx context.Context) ([]*SearchSummary, error) {
	var out []*SearchSummary
	for _, q := range e.cfg.Search.Queries {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		sum, err := e.Search(ctx, q)
		if err != nil {
			if isFetchError(err) {
				e.logger.Warn("search query skipped", "tag", q.Tag, "error", err)
				continue
			}
			return out, err
		}
		out = append(out, sum)
	}
	return out, nil
}
