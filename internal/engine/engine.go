// Package engine runs the batch jobs: daily RSS scrape, search backfill,
// cleaning, cache merge, corpus analysis and metadata export.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/IshaanNene/NewsGoat/internal/config"
	"github.com/IshaanNene/NewsGoat/internal/corpus"
	"github.com/IshaanNene/NewsGoat/internal/fetcher"
	"github.com/IshaanNene/NewsGoat/internal/observability"
	"github.com/IshaanNene/NewsGoat/internal/pipeline"
	"github.com/IshaanNene/NewsGoat/internal/storage"
	"github.com/IshaanNene/NewsGoat/internal/temporal"
	"github.com/IshaanNene/NewsGoat/internal/textnorm"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// Engine wires configuration, fetchers, the normalizer, admission
// pipelines and the stores. Runs are one-shot and sequential.
type Engine struct {
	cfg        *config.Config
	logger     *slog.Logger
	normalizer *textnorm.Normalizer
	policy     temporal.NegativePolicy
	reference  time.Time

	fetcher fetcher.Fetcher
	search  *fetcher.SearchClient
	mirrors []storage.Storage
	mirror  storage.Storage
	now     func() time.Time
	metrics *observability.Metrics

	master  *storage.MasterStore
	cleaned *storage.MasterStore
	removed *storage.RemovedLog
	index   *storage.DateIndex
}

// Option configures an Engine.
type Option func(*Engine)

// WithFetcher injects the page fetcher instead of building one from config.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(e *Engine) { e.fetcher = f }
}

// WithMirror adds a backend that receives every record merged into the
// master store.
func WithMirror(s storage.Storage) Option {
	return func(e *Engine) { e.mirrors = append(e.mirrors, s) }
}

// WithClock replaces time.Now for runs that age records against the
// current instant.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithNormalizer injects a prebuilt normalizer.
func WithNormalizer(n *textnorm.Normalizer) Option {
	return func(e *Engine) { e.normalizer = n }
}

// New creates an Engine from a validated config.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	policy, err := temporal.ParsePolicy(cfg.Pipeline.NegativePolicy)
	if err != nil {
		return nil, err
	}
	ref, err := cfg.ReferenceTime()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		logger:    logger.With("component", "engine"),
		policy:    policy,
		reference: ref,
		now:       time.Now,
		metrics:   observability.NewMetrics(logger),
		master:    storage.NewMasterStore(cfg.Paths.Master, logger),
		cleaned:   storage.NewMasterStore(cfg.Paths.Cleaned, logger),
		removed:   storage.NewRemovedLog(cfg.Paths.Removed, logger),
		index:     storage.NewDateIndex(cfg.Paths.Index),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.normalizer == nil {
		lemmatizer, err := textnorm.NewLemmatizer(cfg.Normalizer.Lemmatizer)
		if err != nil {
			return nil, err
		}
		stopwords := textnorm.DefaultStopwords()
		for w := range textnorm.StopwordSet(cfg.Normalizer.ExtraStopwords) {
			stopwords[w] = struct{}{}
		}
		e.normalizer = textnorm.New(textnorm.Options{
			Stopwords:    stopwords,
			Lemmatizer:   lemmatizer,
			NoisePhrases: cfg.Normalizer.NoisePhrases,
			TailFraction: cfg.Normalizer.TailFraction,
		})
	}

	if cfg.Storage.Mongo.Enabled {
		m := cfg.Storage.Mongo
		mongo, err := storage.NewMongoStorage(ctx, m.URI, m.Database, m.Collection, logger)
		if err != nil {
			return nil, fmt.Errorf("open mirror: %w", err)
		}
		e.mirrors = append(e.mirrors, mongo)
	}
	if len(e.mirrors) > 0 {
		e.mirror = storage.NewMultiStorage(e.mirrors, logger)
	}

	return e, nil
}

// Metrics returns the counters accumulated by this engine's runs.
func (e *Engine) Metrics() *observability.Metrics { return e.metrics }

// Close releases the fetcher and the mirror.
func (e *Engine) Close() error {
	var first error
	if e.fetcher != nil {
		if err := e.fetcher.Close(); err != nil {
			e.logger.Error("fetcher close error", "error", err)
			first = err
		}
	}
	if e.mirror != nil {
		if err := e.mirror.Close(); err != nil {
			e.logger.Error("mirror close error", "error", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// runLogger tags a run's log lines with a fresh run ID.
func (e *Engine) runLogger(run string) (*slog.Logger, string) {
	id := uuid.NewString()
	return e.logger.With("run", run, "run_id", id), id
}

// pageFetcher builds the configured fetcher on first use so runs that do
// not touch the network never launch a browser.
func (e *Engine) pageFetcher() (fetcher.Fetcher, error) {
	if e.fetcher != nil {
		return e.fetcher, nil
	}
	f, err := fetcher.New(e.cfg, e.logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	e.fetcher = f
	return f, nil
}

func (e *Engine) pipelineFor(preset string, ref time.Time, logger *slog.Logger) (*pipeline.Pipeline, error) {
	p, ok := e.cfg.Preset(preset)
	if !ok {
		return nil, fmt.Errorf("preset %q is not defined", preset)
	}
	return pipeline.Build(pipeline.FromPreset(p, e.policy), e.normalizer, ref, logger), nil
}

// admit runs records through p, counting the outcome.
func (e *Engine) admit(p *pipeline.Pipeline, records []*types.Record) pipeline.Result {
	e.metrics.RecordsSeen.Add(int64(len(records)))
	res := p.Run(records)
	e.metrics.RecordsAdmitted.Add(int64(res.Admitted.Len()))
	e.metrics.RecordsRejected.Add(int64(res.Rejected.Len()))
	e.metrics.RecordsDropped.Add(int64(res.Dropped + res.Failed))
	return res
}

// mergeMaster folds admitted into the master store against ref and
// mirrors the admitted records the master kept.
func (e *Engine) mergeMaster(ctx context.Context, admitted *corpus.Collection, ref time.Time, logger *slog.Logger) (storage.MergeResult, error) {
	if admitted.Len() == 0 {
		return storage.MergeResult{}, nil
	}
	res, err := e.master.Merge(admitted, ref, e.policy)
	if err != nil {
		return res, err
	}
	e.metrics.RecordsMerged.Add(int64(res.Added + res.Replaced))
	e.metrics.DuplicatesRemoved.Add(int64(res.Dropped))

	if e.mirror != nil && len(res.Kept) > 0 {
		if err := e.mirror.Store(ctx, res.Kept); err != nil {
			e.metrics.MirrorFailures.Add(1)
			logger.Warn("mirror write failed", "backend", e.mirror.Name(), "error", err)
		}
	}
	return res, nil
}

// logRejected appends rejected records to the removed log.
func (e *Engine) logRejected(rejected *corpus.Collection) error {
	if rejected.Len() == 0 {
		return nil
	}
	return e.removed.Append(rejected)
}

func isFetchError(err error) bool {
	var fe *types.FetchError
	return errors.As(err, &fe)
}
