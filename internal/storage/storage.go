package storage

import (
	"context"

	"github.com/IshaanNene/NewsGoat/internal/types"
)

// Storage is a sink for admitted records besides the master store: raw
// batch files and database mirrors.
type Storage interface {
	// Store persists a batch of records.
	Store(ctx context.Context, records []*types.Record) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}
