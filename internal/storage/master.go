package storage

import (
	"log/slog"
	"time"

	"github.com/IshaanNene/NewsGoat/internal/corpus"
	"github.com/IshaanNene/NewsGoat/internal/temporal"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// MasterStore is the authoritative URL-keyed article file.
type MasterStore struct {
	path   string
	logger *slog.Logger
}

// MergeResult summarizes one merge into a store.
type MergeResult struct {
	Before   int
	Incoming int
	Added    int
	Replaced int
	Dropped  int
	Total    int
	// Undated counts records whose t could not be recomputed.
	Undated int
	// Kept holds the stored form of the incoming records that survived
	// the fingerprint dedup, in incoming order.
	Kept []*types.Record
}

// NewMasterStore opens the store at path. The file is created lazily.
func NewMasterStore(path string, logger *slog.Logger) *MasterStore {
	return &MasterStore{
		path:   path,
		logger: logger.With("component", "master_store"),
	}
}

// Path returns the store file path.
func (s *MasterStore) Path() string { return s.path }

// Load reads the whole store.
func (s *MasterStore) Load() (*corpus.Collection, error) {
	return ReadCollection(s.path)
}

// Merge folds incoming into the store and recomputes t for every record
// against ref, in one transaction.
func (s *MasterStore) Merge(incoming *corpus.Collection, ref time.Time, policy temporal.NegativePolicy) (MergeResult, error) {
	var res MergeResult
	err := Update(s.path, func(existing *corpus.Collection) (*corpus.Collection, error) {
		res = MergeResult{Before: existing.Len(), Incoming: incoming.Len()}
		incoming.Each(func(url string, _ *types.Record) bool {
			if existing.Has(url) {
				res.Replaced++
			} else {
				res.Added++
			}
			return true
		})

		merged, dropped := corpus.Merge(existing, incoming)
		res.Dropped = dropped
		res.Total = merged.Len()
		res.Undated = RecomputeAges(merged, ref, policy)
		incoming.Each(func(url string, _ *types.Record) bool {
			if rec, ok := merged.Get(url); ok {
				res.Kept = append(res.Kept, rec)
			}
			return true
		})
		return merged, nil
	})
	if err != nil {
		return MergeResult{}, err
	}

	s.logger.Info("master store merged",
		"path", s.path,
		"incoming", res.Incoming,
		"added", res.Added,
		"replaced", res.Replaced,
		"duplicates", res.Dropped,
		"total", res.Total,
	)
	return res, nil
}

// Replace overwrites the store with c.
func (s *MasterStore) Replace(c *corpus.Collection) error {
	err := Update(s.path, func(*corpus.Collection) (*corpus.Collection, error) {
		return c, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("store replaced", "path", s.path, "total", c.Len())
	return nil
}

// RecomputeAges sets t, and t_bin where the record carries one, for every
// record of c. Records with no usable date get an empty t. It returns how
// many records that was.
func RecomputeAges(c *corpus.Collection, ref time.Time, policy temporal.NegativePolicy) int {
	undated := 0
	c.Each(func(_ string, rec *types.Record) bool {
		t, bin, err := temporal.AgeFromString(rec.Date(), ref, policy)
		if err != nil {
			undated++
			rec.Set(types.FieldT, "")
			if rec.Has(types.FieldTBin) {
				rec.Set(types.FieldTBin, "")
			}
			return true
		}
		rec.Set(types.FieldT, t)
		if rec.Has(types.FieldTBin) {
			rec.Set(types.FieldTBin, string(bin))
		}
		return true
	})
	return undated
}
