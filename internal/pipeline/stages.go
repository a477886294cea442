package pipeline

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/NewsGoat/internal/dedup"
	"github.com/IshaanNene/NewsGoat/internal/schema"
	"github.com/IshaanNene/NewsGoat/internal/temporal"
	"github.com/IshaanNene/NewsGoat/internal/textnorm"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// SchemaStage fills absent fields with their defaults.
type SchemaStage struct {
	Fields []string

	filled atomic.Int64
}

func (s *SchemaStage) Name() string { return "schema" }

func (s *SchemaStage) Process(rec *types.Record) (*types.Record, error) {
	fields := s.Fields
	if fields == nil {
		fields = schema.ExpectedFields
	}
	s.filled.Add(int64(len(schema.Missing(rec, fields))))
	return schema.FillDefaults(rec, fields), nil
}

// Filled returns how many fields were added so far.
func (s *SchemaStage) Filled() int64 { return s.filled.Load() }

// DateStage rejects records whose publication date is unknown.
type DateStage struct{}

func (DateStage) Name() string { return "date" }

func (DateStage) Process(rec *types.Record) (*types.Record, error) {
	d := strings.TrimSpace(rec.Date())
	if d == "" || d == types.UnknownDate {
		return nil, types.Reject(types.ReasonUnknownDate, types.ErrUnknownDate)
	}
	return rec, nil
}

// TimeStage rejects records whose time is exactly the placeholder time.
// A zoned midnight such as "00:00:00 UTC" is a real timestamp.
type TimeStage struct{}

func (TimeStage) Name() string { return "time" }

func (TimeStage) Process(rec *types.Record) (*types.Record, error) {
	if strings.TrimSpace(rec.Time()) == types.PlaceholderTime {
		return nil, types.Reject(types.ReasonPlaceholderTime, nil)
	}
	return rec, nil
}

// AgeStage sets t, and t_bin when WriteBin is set, against Reference.
// A date that does not parse rejects the record.
type AgeStage struct {
	Reference time.Time
	Policy    temporal.NegativePolicy
	WriteBin  bool
}

func (s *AgeStage) Name() string { return "age" }

func (s *AgeStage) Process(rec *types.Record) (*types.Record, error) {
	t, bin, err := temporal.AgeFromString(rec.Date(), s.Reference, s.Policy)
	if err != nil {
		return nil, types.Reject(types.ReasonInvalidDateFormat, err)
	}
	rec.Set(types.FieldT, t)
	if s.WriteBin {
		rec.Set(types.FieldTBin, string(bin))
	}
	return rec, nil
}

// TitleStage rejects records whose title is a bare site name.
type TitleStage struct {
	generic map[string]struct{}
}

// NewTitleStage builds a TitleStage. Titles compare case-insensitively
// after trimming.
func NewTitleStage(titles []string) *TitleStage {
	s := &TitleStage{generic: make(map[string]struct{}, len(titles))}
	for _, t := range titles {
		s.generic[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return s
}

func (s *TitleStage) Name() string { return "title" }

func (s *TitleStage) Process(rec *types.Record) (*types.Record, error) {
	if _, ok := s.generic[strings.ToLower(strings.TrimSpace(rec.Title()))]; ok {
		return nil, types.Reject(types.ReasonGenericTitle, nil)
	}
	return rec, nil
}

// BoilerplateStage cuts trailing promotional lines from the raw body.
// A truncated body invalidates clean_body, which is dropped so the clean
// stage derives it again from the stripped text.
type BoilerplateStage struct {
	Normalizer *textnorm.Normalizer
}

func (s *BoilerplateStage) Name() string { return "boilerplate" }

func (s *BoilerplateStage) Process(rec *types.Record) (*types.Record, error) {
	body := rec.Body()
	if body == "" {
		return rec, nil
	}
	if stripped := s.Normalizer.StripTrailingBoilerplate(body); stripped != body {
		rec.Set(types.FieldBody, stripped)
		rec.Delete(types.FieldCleanBody)
	}
	return rec, nil
}

// CleanStage derives clean_body, and clean_title and clean_summary when
// stopwords are stripped. Existing values are kept unless Force is set.
type CleanStage struct {
	Normalizer     *textnorm.Normalizer
	StripStopwords bool
	Force          bool
}

func (s *CleanStage) Name() string { return "clean" }

func (s *CleanStage) Process(rec *types.Record) (*types.Record, error) {
	s.derive(rec, types.FieldBody, types.FieldCleanBody)
	if s.StripStopwords {
		s.derive(rec, types.FieldTitle, types.FieldCleanTitle)
		s.derive(rec, types.FieldSummary, types.FieldCleanSummary)
	}
	return rec, nil
}

func (s *CleanStage) derive(rec *types.Record, from, to string) {
	if !s.Force && rec.GetString(to) != "" {
		return
	}
	raw := rec.GetString(from)
	if s.Force && raw == "" && rec.GetString(to) != "" {
		return
	}
	clean := s.Normalizer.Normalize(raw)
	if s.StripStopwords {
		clean = s.Normalizer.StripStopwords(clean)
	}
	rec.Set(to, clean)
}

// LengthStage rejects records whose body is shorter than Min words.
type LengthStage struct {
	Min int
}

func (s *LengthStage) Name() string { return "length" }

func (s *LengthStage) Process(rec *types.Record) (*types.Record, error) {
	if textnorm.WordCount(rec.Body()) < s.Min {
		return nil, types.Reject(types.ReasonTooShort, nil)
	}
	return rec, nil
}

// DedupStage drops records whose content was already admitted by this
// stage, across every batch it sees.
type DedupStage struct {
	seen    *dedup.Deduplicator
	dropped atomic.Int64
}

// NewDedupStage creates a DedupStage with its own seen-set.
func NewDedupStage() *DedupStage {
	return &DedupStage{seen: dedup.NewDeduplicator(1024)}
}

func (s *DedupStage) Name() string { return "dedup" }

func (s *DedupStage) Process(rec *types.Record) (*types.Record, error) {
	if !s.seen.Mark(rec) {
		s.dropped.Add(1)
		return nil, nil
	}
	return rec, nil
}

// Dropped returns how many duplicates were dropped.
func (s *DedupStage) Dropped() int64 { return s.dropped.Load() }

// Unique returns how many distinct fingerprints passed the stage.
func (s *DedupStage) Unique() int { return s.seen.Count() }
