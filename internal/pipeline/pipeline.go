package pipeline

import (
	"errors"
	"log/slog"

	"github.com/IshaanNene/NewsGoat/internal/corpus"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// Stage processes a record and returns the (possibly modified) record.
// Return nil to drop the record silently. Return a *types.RejectError to
// route it to the removed-articles log.
type Stage interface {
	// Name returns the stage's identifier.
	Name() string

	// Process transforms a record. Return nil to drop it.
	Process(rec *types.Record) (*types.Record, error)
}

// Pipeline chains admission stages together.
type Pipeline struct {
	stages []Stage
	logger *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Use adds a stage to the pipeline chain.
func (p *Pipeline) Use(s Stage) {
	p.stages = append(p.stages, s)
	p.logger.Debug("stage added", "name", s.Name(), "position", len(p.stages))
}

// Process runs the record through all stages in order. A rejection is
// returned as is; any other stage error is wrapped in *types.PipelineError.
func (p *Pipeline) Process(rec *types.Record) (*types.Record, error) {
	current := rec

	for _, s := range p.stages {
		result, err := s.Process(current)
		if err != nil {
			if rej, ok := types.AsReject(err); ok {
				p.logger.Debug("record rejected", "stage", s.Name(), "url", rec.URL(), "reason", rej.Reason)
				return nil, rej
			}
			return nil, &types.PipelineError{
				Stage: s.Name(),
				URL:   current.URL(),
				Err:   err,
			}
		}
		if result == nil {
			p.logger.Debug("record dropped", "stage", s.Name(), "url", rec.URL())
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// Stages returns the chain in order.
func (p *Pipeline) Stages() []Stage {
	return p.stages
}

// Len returns the number of stages in the chain.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Result splits a batch by admission outcome.
type Result struct {
	Admitted *corpus.Collection
	Rejected *corpus.Collection
	Dropped  int
	Failed   int
	Reasons  map[types.RemoveReason]int
}

// Run processes records in order. Rejected records are tagged with their
// remove_reason. Failures are logged and skipped.
func (p *Pipeline) Run(records []*types.Record) Result {
	res := Result{
		Admitted: corpus.NewCollection(),
		Rejected: corpus.NewCollection(),
		Reasons:  make(map[types.RemoveReason]int),
	}

	for _, rec := range records {
		out, err := p.Process(rec)
		switch {
		case err != nil:
			var rej *types.RejectError
			if errors.As(err, &rej) {
				rec.Set(types.FieldRemoveReason, rej.Reason.String())
				res.Rejected.Set(rec.URL(), rec)
				res.Reasons[rej.Reason]++
				continue
			}
			res.Failed++
			p.logger.Warn("record failed", "url", rec.URL(), "error", err)
		case out == nil:
			res.Dropped++
		default:
			res.Admitted.Set(out.URL(), out)
		}
	}

	p.logger.Debug("batch processed",
		"input", len(records),
		"admitted", res.Admitted.Len(),
		"rejected", res.Rejected.Len(),
		"dropped", res.Dropped,
		"failed", res.Failed,
	)
	return res
}
