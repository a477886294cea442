package engine

import (
	"context"
	"time"

	"github.com/IshaanNene/NewsGoat/internal/corpus"
	"github.com/IshaanNene/NewsGoat/internal/pipeline"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// CleanSummary reports a cleaner run.
type CleanSummary struct {
	RunID        string
	Loaded       int
	Rejected     int
	Reasons      map[types.RemoveReason]int
	FieldsFilled int64
	Duplicates   int
	Unique       int
	Written      int
	Output       string
	RemovedLog   string
	Elapsed      time.Duration
}

// Clean admits the master store with the cleaner preset against the frozen
// reference date, dropping fingerprint duplicates when the preset asks for
// it, and writes the result sorted by date. The removed log is replaced
// with this run's rejections.
func (e *Engine) Clean(ctx context.Context) (*CleanSummary, error) {
	logger, runID := e.runLogger("clean")
	start := time.Now()

	master, err := e.master.Load()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Info("clean starting", "loaded", master.Len(), "reference", e.cfg.Pipeline.ReferenceDate)

	p, err := e.pipelineFor(e.cfg.Pipeline.CleanPreset, e.reference, logger)
	if err != nil {
		return nil, err
	}
	res := e.admit(p, master.Records())

	var (
		filled int64
		dups   int
		unique int
	)
	for _, s := range p.Stages() {
		switch st := s.(type) {
		case *pipeline.DedupStage:
			dups = int(st.Dropped())
			unique = st.Unique()
		case *pipeline.SchemaStage:
			filled = st.Filled()
		}
	}
	e.metrics.DuplicatesRemoved.Add(int64(dups))
	sorted := corpus.SortByDate(res.Admitted)

	if err := e.cleaned.Replace(sorted); err != nil {
		return nil, err
	}
	if err := e.removed.Replace(res.Rejected); err != nil {
		return nil, err
	}

	sum := &CleanSummary{
		RunID:        runID,
		Loaded:       master.Len(),
		Rejected:     res.Rejected.Len(),
		Reasons:      res.Reasons,
		FieldsFilled: filled,
		Duplicates:   dups,
		Unique:       unique,
		Written:      sorted.Len(),
		Output:       e.cleaned.Path(),
		RemovedLog:   e.cfg.Paths.Removed,
		Elapsed:      time.Since(start),
	}
	logger.Info("clean complete",
		"loaded", sum.Loaded,
		"rejected", sum.Rejected,
		"duplicates", sum.Duplicates,
		"unique", sum.Unique,
		"written", sum.Written,
		"elapsed", sum.Elapsed,
	)
	return sum, nil
}

// RecomputeSummary reports an age refresh of the master store.
type RecomputeSummary struct {
	RunID   string
	Total   int
	Undated int
}

// Recompute refreshes t for every master record against the current
// instant without adding anything.
func (e *Engine) Recompute(ctx context.Context) (*RecomputeSummary, error) {
	logger, runID := e.runLogger("recompute")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := e.master.Merge(corpus.NewCollection(), e.now().UTC(), e.policy)
	if err != nil {
		return nil, err
	}
	if res.Undated > 0 {
		logger.Warn("records without a usable date", "count", res.Undated)
	}
	return &RecomputeSummary{RunID: runID, Total: res.Total, Undated: res.Undated}, nil
}
