package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/IshaanNene/NewsGoat/internal/metadata"
	"github.com/IshaanNene/NewsGoat/internal/storage"
	"github.com/IshaanNene/NewsGoat/internal/temporal"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

const topSourcesLimit = 10

// SourceCount is the number of articles from one source.
type SourceCount struct {
	Source string
	Count  int
}

// BinCount is the number of articles in one age bucket.
type BinCount struct {
	Bin   temporal.Bin
	Count int
}

// MonthCount is the number of articles published in one YYYY-MM month.
type MonthCount struct {
	Month string
	Count int
}

// AnalyzeSummary describes the cleaned corpus.
type AnalyzeSummary struct {
	RunID         string
	Input         string
	Total         int
	UniqueDates   int
	DateMin       string
	DateMax       string
	MissingTitles int
	MissingBodies int
	UniqueSources int
	TopSources    []SourceCount
	Bins          []BinCount
	Months        []MonthCount
}

// Analyze reports on the cleaned corpus. Ages come from each record's t,
// or from its date against the reference date when t is unusable.
func (e *Engine) Analyze(ctx context.Context) (*AnalyzeSummary, error) {
	logger, runID := e.runLogger("analyze")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := storage.ReadCollection(e.cfg.Paths.Cleaned)
	if err != nil {
		return nil, err
	}

	sum := &AnalyzeSummary{RunID: runID, Input: e.cfg.Paths.Cleaned, Total: c.Len()}
	dates := make(map[string]bool)
	sources := make(map[string]int)
	bins := make(map[temporal.Bin]int)
	months := make(map[string]int)

	c.Each(func(_ string, rec *types.Record) bool {
		if strings.TrimSpace(rec.Title()) == "" {
			sum.MissingTitles++
		}
		if strings.TrimSpace(rec.Body()) == "" {
			sum.MissingBodies++
		}
		sources[rec.Source()]++

		pub, err := temporal.ParseDate(rec.Date())
		if err == nil {
			d := pub.Format(temporal.DateLayout)
			dates[d] = true
			if sum.DateMin == "" || d < sum.DateMin {
				sum.DateMin = d
			}
			if d > sum.DateMax {
				sum.DateMax = d
			}
			months[pub.Format("2006-01")]++
		}

		bins[e.binOf(rec)]++
		return true
	})

	sum.UniqueDates = len(dates)
	sum.UniqueSources = len(sources)

	for s, n := range sources {
		sum.TopSources = append(sum.TopSources, SourceCount{Source: s, Count: n})
	}
	sort.Slice(sum.TopSources, func(i, j int) bool {
		a, b := sum.TopSources[i], sum.TopSources[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Source < b.Source
	})
	if len(sum.TopSources) > topSourcesLimit {
		sum.TopSources = sum.TopSources[:topSourcesLimit]
	}

	for _, b := range temporal.Bins() {
		sum.Bins = append(sum.Bins, BinCount{Bin: b, Count: bins[b]})
	}
	if n := bins[temporal.BinInvalid]; n > 0 {
		sum.Bins = append(sum.Bins, BinCount{Bin: temporal.BinInvalid, Count: n})
	}

	for m, n := range months {
		sum.Months = append(sum.Months, MonthCount{Month: m, Count: n})
	}
	sort.Slice(sum.Months, func(i, j int) bool { return sum.Months[i].Month < sum.Months[j].Month })

	logger.Info("analysis complete", "total", sum.Total, "sources", sum.UniqueSources)
	return sum, nil
}

func (e *Engine) binOf(rec *types.Record) temporal.Bin {
	if t, ok := rec.T(); ok {
		if bin, err := temporal.BinFor(t, e.policy); err == nil {
			return bin
		}
		return temporal.BinInvalid
	}
	_, bin, err := temporal.AgeFromString(rec.Date(), e.reference, e.policy)
	if err != nil {
		return temporal.BinInvalid
	}
	return bin
}

// MetadataSummary reports a metadata export.
type MetadataSummary struct {
	RunID   string
	Input   string
	Output  string
	Rows    int
	Skipped []metadata.Skipped
}

// Metadata projects the cleaned corpus into the labelling table.
func (e *Engine) Metadata(ctx context.Context) (*MetadataSummary, error) {
	logger, runID := e.runLogger("metadata")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := storage.ReadCollection(e.cfg.Paths.Cleaned)
	if err != nil {
		return nil, err
	}

	rows, skipped := metadata.Build(c.Records(), e.reference, e.policy)
	for _, s := range skipped {
		logger.Warn("record skipped", "index", s.Index, "url", s.URL, "error", s.Err)
	}
	if err := metadata.WriteFile(e.cfg.Paths.Metadata, rows); err != nil {
		return nil, err
	}

	logger.Info("metadata written", "path", e.cfg.Paths.Metadata, "rows", len(rows), "skipped", len(skipped))
	return &MetadataSummary{
		RunID:   runID,
		Input:   e.cfg.Paths.Cleaned,
		Output:  e.cfg.Paths.Metadata,
		Rows:    len(rows),
		Skipped: skipped,
	}, nil
}
