package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/NewsGoat/internal/types"
)

// MongoStorage mirrors admitted records into a MongoDB collection, one
// document per URL.
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	count      int
	logger     *slog.Logger
}

// NewMongoStorage creates a new MongoDB storage backend.
func NewMongoStorage(ctx context.Context, uri, database, collection string, logger *slog.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStorage{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStorage) Name() string { return "mongodb" }

// Store upserts each record by URL.
func (s *MongoStorage) Store(ctx context.Context, records []*types.Record) error {
	models := make([]mongo.WriteModel, 0, len(records))
	for _, rec := range records {
		if rec.URL() == "" {
			continue
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{types.FieldURL: rec.URL()}).
			SetReplacement(Document(rec)).
			SetUpsert(true))
	}
	if len(models) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("mongodb upsert: %w", err)
	}

	s.count += len(models)
	s.logger.Debug("records mirrored to mongodb",
		"upserted", res.UpsertedCount,
		"modified", res.ModifiedCount,
		"total", s.count,
	)
	return nil
}

func (s *MongoStorage) Close() error {
	s.logger.Info("mongodb storage closing", "total_records", s.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Document converts a record into a BSON document. JSON numbers decoded
// from disk become integers or doubles.
func Document(rec *types.Record) bson.M {
	doc := make(bson.M, len(rec.Fields))
	for k, v := range rec.Fields {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				doc[k] = i
				continue
			}
			if f, err := n.Float64(); err == nil {
				doc[k] = f
				continue
			}
		}
		doc[k] = v
	}
	return doc
}

// --- Multi-Storage Fan-Out ---

// MultiStorage writes records to multiple backends.
type MultiStorage struct {
	backends []Storage
	logger   *slog.Logger
}

// NewMultiStorage creates a storage that fans out to multiple backends.
func NewMultiStorage(backends []Storage, logger *slog.Logger) *MultiStorage {
	return &MultiStorage{
		backends: backends,
		logger:   logger.With("component", "multi_storage"),
	}
}

func (s *MultiStorage) Name() string { return "multi" }

func (s *MultiStorage) Store(ctx context.Context, records []*types.Record) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Store(ctx, records); err != nil {
			s.logger.Error("backend store failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *MultiStorage) Close() error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
