package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/NewsGoat/internal/corpus"
	"github.com/IshaanNene/NewsGoat/internal/temporal"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var reference = time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)

func article(url, title, clean, date string) *types.Record {
	r := types.NewRecord(url)
	r.Set(types.FieldTitle, title)
	r.Set(types.FieldCleanBody, clean)
	r.Set(types.FieldDate, date)
	return r
}

func TestUpdateCreatesAndRewrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	err := Update(path, func(c *corpus.Collection) (*corpus.Collection, error) {
		assert.Equal(t, 0, c.Len())
		c.Set("u1", article("u1", "A", "a", "2025-01-01"))
		return c, nil
	})
	require.NoError(t, err)

	c, err := ReadCollection(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, c.Keys())

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestUpdateAbortLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, Update(path, func(c *corpus.Collection) (*corpus.Collection, error) {
		c.Set("u1", article("u1", "A", "a", "2025-01-01"))
		return c, nil
	}))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = Update(path, func(c *corpus.Collection) (*corpus.Collection, error) {
		c.Set("u2", article("u2", "B", "b", "2025-01-02"))
		return nil, boom
	})
	var pe *types.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.True(t, errors.Is(err, boom))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	err := Update(path, func(c *corpus.Collection) (*corpus.Collection, error) { return c, nil })
	var pe *types.PersistenceError
	assert.True(t, errors.As(err, &pe))
}

func TestMasterStoreMerge(t *testing.T) {
	store := NewMasterStore(filepath.Join(t.TempDir(), "all_articles.json"), testLogger)

	batch := corpus.FromRecords([]*types.Record{
		article("https://a.com/1", "Same", "same body", "2025-01-01"),
		article("https://b.com/1", "Same", "same body", "2025-01-01"),
		article("https://c.com/1", "Other", "other", "2025-05-10"),
	})

	res, err := store.Merge(batch, reference, temporal.PolicySentinel)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Added)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Kept, 2)
	assert.Equal(t, "https://a.com/1", res.Kept[0].URL())
	assert.Equal(t, "https://c.com/1", res.Kept[1].URL())
	_, hasT := res.Kept[0].T()
	assert.True(t, hasT, "kept records carry the recomputed age")

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.com/1", "https://c.com/1"}, loaded.Keys())

	r, _ := loaded.Get("https://a.com/1")
	tv, ok := r.T()
	require.True(t, ok)
	assert.Equal(t, 131, tv)

	// merging the same batch again changes nothing
	res, err = store.Merge(batch, reference, temporal.PolicySentinel)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Kept, 2)
	again, err := store.Load()
	require.NoError(t, err)
	a, _ := json.Marshal(loaded)
	b, _ := json.Marshal(again)
	assert.JSONEq(t, string(a), string(b))
}

func TestRecomputeAges(t *testing.T) {
	c := corpus.FromRecords([]*types.Record{
		article("u1", "A", "a", "2025-05-01"),
		article("u2", "B", "b", "unknown"),
	})
	r1, _ := c.Get("u1")
	r1.Set(types.FieldTBin, "")

	undated := RecomputeAges(c, reference, temporal.PolicySentinel)
	assert.Equal(t, 1, undated)
	assert.Equal(t, 11, r1.Fields[types.FieldT])
	assert.Equal(t, "Recent", r1.Fields[types.FieldTBin])

	r2, _ := c.Get("u2")
	assert.Equal(t, "", r2.Fields[types.FieldT])
	assert.False(t, r2.Has(types.FieldTBin))
}

func TestRemovedLogAppend(t *testing.T) {
	log := NewRemovedLog(filepath.Join(t.TempDir(), "removed.json"), testLogger)

	r := article("u1", "A", "a", "unknown")
	r.Set(types.FieldRemoveReason, string(types.ReasonUnknownDate))
	require.NoError(t, log.Append(corpus.FromRecords([]*types.Record{r})))

	r2 := article("u2", "bbc news", "b", "2025-01-01")
	r2.Set(types.FieldRemoveReason, string(types.ReasonGenericTitle))
	require.NoError(t, log.Append(corpus.FromRecords([]*types.Record{r2})))

	got, err := log.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, got.Keys())
	rec, _ := got.Get("u1")
	assert.Equal(t, "unknown_date", rec.GetString(types.FieldRemoveReason))

	require.NoError(t, log.Replace(corpus.NewCollection()))
	got, err = log.Load()
	require.NoError(t, err)
	assert.Zero(t, got.Len())
}

func TestCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "article_cache.json")
	cache, err := OpenCache(path, testLogger)
	require.NoError(t, err)
	assert.Zero(t, cache.Len())
	_, err = os.Stat(path)
	require.NoError(t, err, "cache file should be created")

	require.NoError(t, cache.Add("u1", article("u1", "A", "a", "2025-01-01")))
	require.NoError(t, cache.Add("u2", article("u2", "B", "b", "2025-01-02")))

	got, ok := cache.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "A", got.Title())
	assert.False(t, cache.Has("u3"))

	reopened, err := OpenCache(path, testLogger)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())
	assert.Equal(t, []string{"u1", "u2"}, reopened.Snapshot().Keys())
}

func TestDateIndex(t *testing.T) {
	idx := NewDateIndex(filepath.Join(t.TempDir(), "index_by_date.json"))

	dates, err := idx.Dates()
	require.NoError(t, err)
	assert.Empty(t, dates)

	_, err = idx.Add("2025-05-14", "2025-05-12")
	require.NoError(t, err)
	dates, err = idx.Add("2025-05-12", "2025-05-13", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-05-12", "2025-05-13", "2025-05-14"}, dates)

	stored, err := idx.Dates()
	require.NoError(t, err)
	assert.Equal(t, dates, stored)
}

func TestBatchStorageGroups(t *testing.T) {
	dir := t.TempDir()
	s := NewBatchStorage(dir, func(r *types.Record) string {
		return fmt.Sprintf("bbc_%s", r.Date()[:7])
	}, testLogger)

	records := []*types.Record{
		article("u1", "A", "a", "2024-11-05"),
		article("u2", "B", "b", "2024-12-01"),
		article("u3", "C", "c", "2024-11-20"),
	}
	require.NoError(t, s.Store(context.Background(), records))
	require.NoError(t, s.Close())

	nov, err := ReadCollection(filepath.Join(dir, "bbc_2024-11.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, nov.Keys())

	dec, err := ReadCollection(filepath.Join(dir, "bbc_2024-12.json"))
	require.NoError(t, err)
	assert.Equal(t, 1, dec.Len())
}

func TestBatchStorageMergesExistingFile(t *testing.T) {
	dir := t.TempDir()
	s := NewBatchStorage(dir, FixedGroup("2025-05-12"), testLogger)

	require.NoError(t, s.Store(context.Background(), []*types.Record{article("u1", "A", "a", "2025-05-12")}))
	require.NoError(t, s.Store(context.Background(), []*types.Record{article("u2", "B", "b", "2025-05-12")}))

	c, err := ReadCollection(s.Path("2025-05-12"))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, filepath.Join(dir, "a_b.json"), s.Path("a/b"))
}

type recordingStorage struct {
	name   string
	err    error
	stored int
	closed bool
}

func (r *recordingStorage) Store(_ context.Context, records []*types.Record) error {
	r.stored += len(records)
	return r.err
}
func (r *recordingStorage) Close() error { r.closed = true; return nil }
func (r *recordingStorage) Name() string { return r.name }

func TestMultiStorage(t *testing.T) {
	ok := &recordingStorage{name: "ok"}
	bad := &recordingStorage{name: "bad", err: errors.New("down")}
	m := NewMultiStorage([]Storage{bad, ok}, testLogger)

	err := m.Store(context.Background(), []*types.Record{article("u1", "A", "a", "2025-01-01")})
	assert.Error(t, err)
	assert.Equal(t, 1, ok.stored, "later backends still receive records")

	require.NoError(t, m.Close())
	assert.True(t, ok.closed)
	assert.True(t, bad.closed)
}

func TestDocumentConvertsNumbers(t *testing.T) {
	r := types.NewRecord("u1")
	r.Set(types.FieldT, json.Number("131"))
	r.Set("score", json.Number("0.5"))

	doc := Document(r)
	assert.Equal(t, int64(131), doc[types.FieldT])
	assert.Equal(t, 0.5, doc["score"])
	assert.Equal(t, "u1", doc[types.FieldURL])
}
