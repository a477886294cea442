package pipeline

import (
	"log/slog"
	"time"

	"github.com/IshaanNene/NewsGoat/internal/config"
	"github.com/IshaanNene/NewsGoat/internal/temporal"
	"github.com/IshaanNene/NewsGoat/internal/textnorm"
)

// Options selects the admission stages of one run. Each ingestion flow is
// one set of Options.
type Options struct {
	StripBoilerplate      bool
	MinWordCount          int
	StripStopwords        bool
	GenericTitles         []string
	RejectPlaceholderTime bool
	ForceClean            bool
	NegativePolicy        temporal.NegativePolicy
	WriteBin              bool
	Dedup                 bool
}

// FromPreset converts a configured preset.
func FromPreset(p config.PresetConfig, policy temporal.NegativePolicy) Options {
	return Options{
		StripBoilerplate:      p.StripBoilerplate,
		MinWordCount:          p.MinWordCount,
		StripStopwords:        p.StripStopwords,
		GenericTitles:         p.GenericTitles,
		RejectPlaceholderTime: p.RejectPlaceholderTime,
		ForceClean:            p.ForceClean,
		NegativePolicy:        policy,
		WriteBin:              p.WriteBin,
		Dedup:                 p.Dedup,
	}
}

// Build assembles the admission chain for opts. Ages are computed against
// ref.
func Build(opts Options, n *textnorm.Normalizer, ref time.Time, logger *slog.Logger) *Pipeline {
	p := New(logger)

	p.Use(&SchemaStage{})
	p.Use(DateStage{})
	if opts.RejectPlaceholderTime {
		p.Use(TimeStage{})
	}
	p.Use(&AgeStage{Reference: ref, Policy: opts.NegativePolicy, WriteBin: opts.WriteBin})
	if len(opts.GenericTitles) > 0 {
		p.Use(NewTitleStage(opts.GenericTitles))
	}
	if opts.StripBoilerplate {
		p.Use(&BoilerplateStage{Normalizer: n})
	}
	p.Use(&CleanStage{Normalizer: n, StripStopwords: opts.StripStopwords, Force: opts.ForceClean})
	if opts.MinWordCount > 0 {
		p.Use(&LengthStage{Min: opts.MinWordCount})
	}
	if opts.Dedup {
		p.Use(NewDedupStage())
	}

	return p
}
