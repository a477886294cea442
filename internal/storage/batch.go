package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"

	"github.com/IshaanNene/NewsGoat/internal/corpus"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// BatchStorage writes records to raw batch files under one directory. The
// file for a record is chosen by a grouping function, e.g. ingestion day
// or source tag and month. Records are merged into an existing file by URL.
type BatchStorage struct {
	dir    string
	group  func(*types.Record) string
	count  int
	logger *slog.Logger
}

// NewBatchStorage creates a batch writer. group returns the file name
// without extension.
func NewBatchStorage(dir string, group func(*types.Record) string, logger *slog.Logger) *BatchStorage {
	return &BatchStorage{
		dir:    dir,
		group:  group,
		logger: logger.With("component", "batch_storage"),
	}
}

// FixedGroup puts every record into the same file.
func FixedGroup(name string) func(*types.Record) string {
	return func(*types.Record) string { return name }
}

func (s *BatchStorage) Name() string { return "raw_batch" }

// Path returns the file used for a group name.
func (s *BatchStorage) Path(group string) string {
	name := unsafeName.ReplaceAllString(group, "_")
	if name == "" {
		name = "batch"
	}
	return filepath.Join(s.dir, name+".json")
}

func (s *BatchStorage) Store(ctx context.Context, records []*types.Record) error {
	groups := make(map[string]*corpus.Collection)
	var order []string
	for _, rec := range records {
		g := s.group(rec)
		c, ok := groups[g]
		if !ok {
			c = corpus.NewCollection()
			groups[g] = c
			order = append(order, g)
		}
		c.Set(rec.URL(), rec)
	}

	for _, g := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := s.Path(g)
		batch := groups[g]
		err := Update(path, func(current *corpus.Collection) (*corpus.Collection, error) {
			batch.Each(func(url string, rec *types.Record) bool {
				current.Set(url, rec)
				return true
			})
			return current, nil
		})
		if err != nil {
			return fmt.Errorf("write batch %s: %w", g, err)
		}
		s.count += batch.Len()
		s.logger.Info("raw batch written", "path", path, "records", batch.Len())
	}
	return nil
}

func (s *BatchStorage) Close() error {
	s.logger.Debug("raw batches closed", "total_records", s.count)
	return nil
}
