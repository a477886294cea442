// Package corpus holds URL-keyed article collections and merges batches
// into the master store.
package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/IshaanNene/NewsGoat/internal/types"
)

// Collection is a URL-keyed set of records that remembers insertion order.
// JSON encoding keeps the order of the object keys, so the first-seen
// record of a file stays first across load/save cycles.
type Collection struct {
	keys    []string
	records map[string]*types.Record
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{records: make(map[string]*types.Record)}
}

// FromRecords builds a collection keyed by each record's URL. Records
// without a URL are skipped; a repeated URL replaces the earlier record.
func FromRecords(records []*types.Record) *Collection {
	c := NewCollection()
	for _, r := range records {
		if r.URL() == "" {
			continue
		}
		c.Set(r.URL(), r)
	}
	return c
}

// Len returns the number of records.
func (c *Collection) Len() int { return len(c.keys) }

// Get returns the record stored under url.
func (c *Collection) Get(url string) (*types.Record, bool) {
	r, ok := c.records[url]
	return r, ok
}

// Has reports whether url is present.
func (c *Collection) Has(url string) bool {
	_, ok := c.records[url]
	return ok
}

// Set stores rec under url. An existing key keeps its position.
func (c *Collection) Set(url string, rec *types.Record) {
	if _, ok := c.records[url]; !ok {
		c.keys = append(c.keys, url)
	}
	c.records[url] = rec
}

// Delete removes url.
func (c *Collection) Delete(url string) {
	if _, ok := c.records[url]; !ok {
		return
	}
	delete(c.records, url)
	for i, k := range c.keys {
		if k == url {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the URLs in collection order.
func (c *Collection) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Records returns the records in collection order.
func (c *Collection) Records() []*types.Record {
	out := make([]*types.Record, len(c.keys))
	for i, k := range c.keys {
		out[i] = c.records[k]
	}
	return out
}

// Each calls fn for every entry in order until fn returns false.
func (c *Collection) Each(fn func(url string, rec *types.Record) bool) {
	for _, k := range c.keys {
		if !fn(k, c.records[k]) {
			return
		}
	}
}

// Clone returns a deep copy.
func (c *Collection) Clone() *Collection {
	out := &Collection{
		keys:    append([]string(nil), c.keys...),
		records: make(map[string]*types.Record, len(c.records)),
	}
	for k, r := range c.records {
		out.records[k] = r.Clone()
	}
	return out
}

// MarshalJSON writes the collection as one JSON object in key order.
func (c *Collection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.records[k])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of records, keeping key order. A
// repeated key keeps its first position and its last value.
func (c *Collection) UnmarshalJSON(data []byte) error {
	out, err := Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*c = *out
	return nil
}

// Decode streams a JSON object of records from r.
func Decode(r io.Reader) (*Collection, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	c := NewCollection()
	tok, err := dec.Token()
	if err == io.EOF {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("decode collection: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode collection: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("decode collection: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode collection entry %s: %w", key, err)
		}
		rec := &types.Record{}
		if err := rec.UnmarshalJSON(raw); err != nil {
			return nil, fmt.Errorf("decode collection entry %s: %w", key, err)
		}
		c.Set(key, rec)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return c, nil
}
