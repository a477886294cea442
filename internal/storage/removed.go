package storage

import (
	"log/slog"

	"github.com/IshaanNene/NewsGoat/internal/corpus"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// RemovedLog is the audit file of rejected candidates, keyed by URL. Every
// entry carries a remove_reason.
type RemovedLog struct {
	path   string
	logger *slog.Logger
}

// NewRemovedLog opens the log at path.
func NewRemovedLog(path string, logger *slog.Logger) *RemovedLog {
	return &RemovedLog{
		path:   path,
		logger: logger.With("component", "removed_log"),
	}
}

// Append adds rejected records. A URL rejected again keeps its position
// and takes the latest record and reason.
func (l *RemovedLog) Append(rejected *corpus.Collection) error {
	if rejected.Len() == 0 {
		return nil
	}
	checkReasons(rejected, l.logger)
	err := Update(l.path, func(current *corpus.Collection) (*corpus.Collection, error) {
		rejected.Each(func(url string, rec *types.Record) bool {
			current.Set(url, rec)
			return true
		})
		return current, nil
	})
	if err != nil {
		return err
	}
	l.logger.Info("removed records logged", "path", l.path, "count", rejected.Len())
	return nil
}

// Replace overwrites the log with the rejections of a full clean run.
func (l *RemovedLog) Replace(rejected *corpus.Collection) error {
	checkReasons(rejected, l.logger)
	return Update(l.path, func(*corpus.Collection) (*corpus.Collection, error) {
		return rejected, nil
	})
}

// Load reads the whole log.
func (l *RemovedLog) Load() (*corpus.Collection, error) {
	return ReadCollection(l.path)
}

func checkReasons(c *corpus.Collection, logger *slog.Logger) {
	c.Each(func(url string, rec *types.Record) bool {
		if !types.RemoveReason(rec.GetString(types.FieldRemoveReason)).Valid() {
			logger.Warn("removed record without a known reason", "url", url)
		}
		return true
	})
}
