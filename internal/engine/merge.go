package engine

import (
	"context"
	"time"

	"github.com/IshaanNene/NewsGoat/internal/corpus"
	"github.com/IshaanNene/NewsGoat/internal/storage"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// MergeCachesSummary reports a cache merge.
type MergeCachesSummary struct {
	RunID      string
	Caches     int
	Combined   int
	Admitted   int
	Rejected   int
	Reasons    map[types.RemoveReason]int
	RawBatches int
	Merge      storage.MergeResult
	Elapsed    time.Duration
}

// MergeCaches combines old cache files, the first cache to hold a URL
// winning, re-derives clean text and t with the merge preset, folds the
// result into the master store and writes one raw batch per publication
// date.
func (e *Engine) MergeCaches(ctx context.Context, paths []string) (*MergeCachesSummary, error) {
	logger, runID := e.runLogger("merge_cache")
	start := time.Now()
	sum := &MergeCachesSummary{RunID: runID, Caches: len(paths)}

	combined := corpus.NewCollection()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := storage.ReadCollection(path)
		if err != nil {
			return nil, err
		}
		logger.Info("cache loaded", "path", path, "articles", c.Len())
		c.Each(func(url string, rec *types.Record) bool {
			if !combined.Has(url) {
				combined.Set(url, rec)
			}
			return true
		})
	}
	sum.Combined = combined.Len()

	now := e.now().UTC()
	p, err := e.pipelineFor(e.cfg.Pipeline.MergePreset, now, logger)
	if err != nil {
		return nil, err
	}
	res := e.admit(p, combined.Records())
	sum.Admitted = res.Admitted.Len()
	sum.Rejected = res.Rejected.Len()
	sum.Reasons = res.Reasons

	if err := e.logRejected(res.Rejected); err != nil {
		return nil, err
	}
	if sum.Merge, err = e.mergeMaster(ctx, res.Admitted, now, logger); err != nil {
		return nil, err
	}

	if res.Admitted.Len() > 0 {
		batch := storage.NewBatchStorage(e.cfg.Paths.RawDir, func(rec *types.Record) string { return rec.Date() }, e.logger)
		if err := batch.Store(context.WithoutCancel(ctx), res.Admitted.Records()); err != nil {
			return nil, err
		}
		days := make(map[string]bool)
		res.Admitted.Each(func(_ string, rec *types.Record) bool {
			days[rec.Date()] = true
			return true
		})
		sum.RawBatches = len(days)
	}

	sum.Elapsed = time.Since(start)
	logger.Info("cache merge complete",
		"combined", sum.Combined,
		"admitted", sum.Admitted,
		"rejected", sum.Rejected,
		"total", sum.Merge.Total,
	)
	return sum, nil
}
