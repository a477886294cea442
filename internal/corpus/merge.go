package corpus

import (
	"sort"

	"github.com/IshaanNene/NewsGoat/internal/dedup"
	"github.com/IshaanNene/NewsGoat/internal/temporal"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// Merge unions incoming into a copy of existing, replacing records whose
// URL is already present, then drops every record whose fingerprint was
// already seen earlier in collection order. URL replacement happens first;
// when the replacement collides with an older record at another URL, the
// older record wins. existing is not modified.
func Merge(existing, incoming *Collection) (*Collection, int) {
	var merged *Collection
	if existing == nil {
		merged = NewCollection()
	} else {
		merged = existing.Clone()
	}

	if incoming != nil {
		incoming.Each(func(url string, rec *types.Record) bool {
			merged.Set(url, rec.Clone())
			return true
		})
	}

	return DedupeCollection(merged)
}

// DedupeCollection returns c without fingerprint duplicates.
func DedupeCollection(c *Collection) (*Collection, int) {
	kept, dropped := dedup.Dedupe(c.Records())
	if dropped == 0 {
		return c, 0
	}
	keep := make(map[*types.Record]struct{}, len(kept))
	for _, r := range kept {
		keep[r] = struct{}{}
	}

	out := NewCollection()
	c.Each(func(url string, rec *types.Record) bool {
		if _, ok := keep[rec]; ok {
			out.Set(url, rec)
		}
		return true
	})
	return out, dropped
}

// SortByDate returns a copy of c ordered by ascending date. Records with an
// unknown or unparseable date go last; ties keep their current order.
func SortByDate(c *Collection) *Collection {
	type entry struct {
		url   string
		rec   *types.Record
		unix  int64
		valid bool
	}

	entries := make([]entry, 0, c.Len())
	c.Each(func(url string, rec *types.Record) bool {
		e := entry{url: url, rec: rec}
		if d, err := temporal.ParseDate(rec.Date()); err == nil {
			e.unix, e.valid = d.Unix(), true
		}
		entries = append(entries, e)
		return true
	})

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.valid != b.valid {
			return a.valid
		}
		return a.unix < b.unix
	})

	out := NewCollection()
	for _, e := range entries {
		out.Set(e.url, e.rec)
	}
	return out
}
