// Package dedup collapses article records that carry the same content.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/IshaanNene/NewsGoat/internal/types"
)

// Fingerprint is the content identity of a record: its trimmed title and
// trimmed cleaned body.
type Fingerprint struct {
	Title string
	Body  string
}

// FingerprintOf computes the fingerprint of rec.
func FingerprintOf(rec *types.Record) Fingerprint {
	return Fingerprint{
		Title: strings.TrimSpace(rec.Title()),
		Body:  strings.TrimSpace(rec.CleanBody()),
	}
}

// Key returns a compact hash of the fingerprint.
func (f Fingerprint) Key() string {
	h := sha256.New()
	h.Write([]byte(f.Title))
	h.Write([]byte{0})
	h.Write([]byte(f.Body))
	return hex.EncodeToString(h.Sum(nil)[:16]) // 128-bit hash
}

// Dedupe keeps the first record of every fingerprint, in the given order,
// and reports how many were dropped. Callers choose the order.
func Dedupe(records []*types.Record) ([]*types.Record, int) {
	d := NewDeduplicator(len(records))
	kept := make([]*types.Record, 0, len(records))
	dropped := 0
	for _, rec := range records {
		if !d.Mark(rec) {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}
	return kept, dropped
}

// Deduplicator tracks fingerprints already admitted across several
// batches or source files.
type Deduplicator struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewDeduplicator creates a new Deduplicator with the given estimated capacity.
func NewDeduplicator(estimatedCapacity int) *Deduplicator {
	return &Deduplicator{
		seen: make(map[string]struct{}, estimatedCapacity),
	}
}

// Mark records the fingerprint of rec. It returns false when the
// fingerprint was already present.
func (d *Deduplicator) Mark(rec *types.Record) bool {
	key := FingerprintOf(rec).Key()

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Count returns the number of unique fingerprints seen.
func (d *Deduplicator) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.seen)
}
