package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field names of a persisted article record.
const (
	FieldSource       = "source"
	FieldURL          = "url"
	FieldDate         = "date"
	FieldTime         = "time"
	FieldTitle        = "title"
	FieldBody         = "body"
	FieldCleanBody    = "clean_body"
	FieldCleanTitle   = "clean_title"
	FieldCleanSummary = "clean_summary"
	FieldSummary      = "summary"
	FieldKeywords     = "keywords"
	FieldImageURL     = "image_url"
	FieldT            = "t"
	FieldTBin         = "t_bin"
	FieldRemoveReason = "remove_reason"
)

// Sentinel values written by the fetchers when a publication instant is
// missing.
const (
	UnknownDate     = "unknown"
	PlaceholderTime = "00:00:00"
)

// Record is a single article keyed by URL. Records written by different
// scraper generations do not share a shape, so fields are kept as a map and
// fields this package does not know about survive a load/save cycle.
type Record struct {
	Fields map[string]any
}

// NewRecord creates an empty record for the given URL.
func NewRecord(url string) *Record {
	r := &Record{Fields: make(map[string]any)}
	if url != "" {
		r.Fields[FieldURL] = url
	}
	return r
}

// Set sets a field value.
func (r *Record) Set(key string, value any) {
	if r.Fields == nil {
		r.Fields = make(map[string]any)
	}
	r.Fields[key] = value
}

// Get retrieves a field value.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// GetString retrieves a field value as a string. Non-string values yield "".
func (r *Record) GetString(key string) string {
	v, ok := r.Fields[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// Has returns true if the field exists, even when its value is empty.
func (r *Record) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// Delete removes a field.
func (r *Record) Delete(key string) {
	delete(r.Fields, key)
}

// Keys returns all field names, sorted.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Record) URL() string       { return r.GetString(FieldURL) }
func (r *Record) Source() string    { return r.GetString(FieldSource) }
func (r *Record) Title() string     { return r.GetString(FieldTitle) }
func (r *Record) Body() string      { return r.GetString(FieldBody) }
func (r *Record) CleanBody() string { return r.GetString(FieldCleanBody) }
func (r *Record) Summary() string   { return r.GetString(FieldSummary) }
func (r *Record) Date() string      { return r.GetString(FieldDate) }
func (r *Record) Time() string      { return r.GetString(FieldTime) }

// Keywords returns the keyword list whether it was built in memory or
// decoded from JSON.
func (r *Record) Keywords() []string {
	v, ok := r.Fields[FieldKeywords]
	if !ok || v == nil {
		return nil
	}
	switch kw := v.(type) {
	case []string:
		return kw
	case []any:
		out := make([]string, 0, len(kw))
		for _, k := range kw {
			if s, ok := k.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if kw == "" {
			return nil
		}
		return []string{kw}
	}
	return nil
}

// T returns the stored age in days. The second value is false when t is
// absent, the empty string, or not a whole number.
func (r *Record) T() (int, bool) {
	v, ok := r.Fields[FieldT]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != float64(int(t)) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Clone returns a copy of the record. Slice values are copied so the clone
// can be mutated independently.
func (r *Record) Clone() *Record {
	clone := &Record{Fields: make(map[string]any, len(r.Fields))}
	for k, v := range r.Fields {
		switch val := v.(type) {
		case []string:
			clone.Fields[k] = append([]string(nil), val...)
		case []any:
			clone.Fields[k] = append([]any(nil), val...)
		default:
			clone.Fields[k] = v
		}
	}
	return clone
}

// MarshalJSON writes the record as a flat JSON object.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.Fields)
}

// UnmarshalJSON reads a flat JSON object. Numbers are kept as json.Number
// so integer ages round-trip exactly.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	fields := make(map[string]any)
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	r.Fields = fields
	return nil
}
