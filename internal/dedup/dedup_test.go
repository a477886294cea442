package dedup

import (
	"fmt"
	"testing"

	"github.com/IshaanNene/NewsGoat/internal/types"
)

func record(url, title, clean string) *types.Record {
	r := types.NewRecord(url)
	r.Set(types.FieldTitle, title)
	r.Set(types.FieldCleanBody, clean)
	return r
}

func TestDedupeFirstWins(t *testing.T) {
	in := []*types.Record{
		record("https://a.com/1", "Title", "body text"),
		record("https://a.com/2", " Title ", "body text "),
		record("https://a.com/3", "Other", "body text"),
		record("https://a.com/4", "Title", "body text"),
	}

	kept, dropped := Dedupe(in)
	if dropped != 2 {
		t.Errorf("expected 2 dropped, got %d", dropped)
	}
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	if kept[0].URL() != "https://a.com/1" {
		t.Errorf("expected first occurrence to survive, got %s", kept[0].URL())
	}
	if kept[1].URL() != "https://a.com/3" {
		t.Errorf("expected distinct title to survive, got %s", kept[1].URL())
	}
}

func TestDedupeOneRecordPerFingerprint(t *testing.T) {
	var in []*types.Record
	for i := 0; i < 30; i++ {
		in = append(in, record(fmt.Sprintf("https://a.com/%d", i), fmt.Sprintf("t%d", i%4), fmt.Sprintf("b%d", i%3)))
	}

	kept, dropped := Dedupe(in)
	if len(kept)+dropped != len(in) {
		t.Errorf("kept %d + dropped %d != %d", len(kept), dropped, len(in))
	}

	firstIndex := make(map[Fingerprint]int)
	for i, r := range in {
		fp := FingerprintOf(r)
		if _, ok := firstIndex[fp]; !ok {
			firstIndex[fp] = i
		}
	}
	if len(kept) != len(firstIndex) {
		t.Fatalf("expected %d fingerprints, got %d", len(firstIndex), len(kept))
	}
	for _, r := range kept {
		if want := in[firstIndex[FingerprintOf(r)]]; want != r {
			t.Errorf("kept %s, expected first occurrence %s", r.URL(), want.URL())
		}
	}
}

func TestFingerprintKeySeparatesFields(t *testing.T) {
	a := Fingerprint{Title: "ab", Body: "c"}
	b := Fingerprint{Title: "a", Body: "bc"}
	if a.Key() == b.Key() {
		t.Error("expected different keys for different field splits")
	}
	if len(a.Key()) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(a.Key()))
	}
}

func TestDeduplicatorAcrossBatches(t *testing.T) {
	d := NewDeduplicator(10)
	first := record("https://a.com/1", "T", "b")
	again := record("https://b.com/9", "T", "b")
	other := record("https://c.com/2", "Other", "b")

	if d.Count() != 0 {
		t.Error("fresh deduplicator should be empty")
	}
	if !d.Mark(first) {
		t.Error("first mark should succeed")
	}
	if d.Mark(again) {
		t.Error("same content at another URL should report a duplicate")
	}
	if !d.Mark(other) {
		t.Error("different title should be unique")
	}
	if d.Count() != 2 {
		t.Errorf("expected 2, got %d", d.Count())
	}
}

func TestCanonicalizeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP://Example.COM/path/", "http://example.com/path"},
		{"https://example.com:443/a?b=2&a=1#frag", "https://example.com/a?a=1&b=2"},
		{"http://example.com:80", "http://example.com/"},
		{"https://example.com:8443/x", "https://example.com:8443/x"},
	}
	for _, tt := range tests {
		if got := CanonicalizeURL(tt.input); got != tt.expected {
			t.Errorf("CanonicalizeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestURLSet(t *testing.T) {
	s := NewURLSet()
	s.Add("https://www.bbc.co.uk/news/a")
	s.Add("https://www.bbc.co.uk/news/a/")
	s.Add("https://www.bbc.co.uk/news/b#top")

	if s.Len() != 2 {
		t.Fatalf("expected 2 URLs, got %d", s.Len())
	}
	if s.URLs()[1] != "https://www.bbc.co.uk/news/b" {
		t.Errorf("unexpected second URL %s", s.URLs()[1])
	}
}
