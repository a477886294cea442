package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/IshaanNene/NewsGoat/internal/types"
)

// DateIndex records the days for which a raw batch was collected.
type DateIndex struct {
	path string
}

type indexFile struct {
	CollectedDates []string `json:"collected_dates"`
}

// NewDateIndex opens the index at path.
func NewDateIndex(path string) *DateIndex {
	return &DateIndex{path: path}
}

// Add merges dates into the index and returns the updated sorted list.
func (x *DateIndex) Add(dates ...string) ([]string, error) {
	var out []string
	err := UpdateFile(x.path, func(data []byte) ([]byte, error) {
		idx, err := decodeIndex(data)
		if err != nil {
			return nil, err
		}
		out = mergeDates(idx.CollectedDates, dates)
		return json.MarshalIndent(indexFile{CollectedDates: out}, "", "  ")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Dates returns the collected dates.
func (x *DateIndex) Dates() ([]string, error) {
	data, err := os.ReadFile(x.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &types.PersistenceError{Path: x.path, Op: "read", Err: err}
	}
	idx, err := decodeIndex(data)
	if err != nil {
		return nil, &types.PersistenceError{Path: x.path, Op: "decode", Err: err}
	}
	return idx.CollectedDates, nil
}

func decodeIndex(data []byte) (indexFile, error) {
	var idx indexFile
	if len(data) == 0 {
		return idx, nil
	}
	if err := json.Unmarshal(data, &idx); err != nil {
		return idx, fmt.Errorf("decode index: %w", err)
	}
	return idx, nil
}

func mergeDates(existing, added []string) []string {
	set := make(map[string]struct{}, len(existing)+len(added))
	for _, d := range existing {
		set[d] = struct{}{}
	}
	for _, d := range added {
		if d != "" {
			set[d] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
