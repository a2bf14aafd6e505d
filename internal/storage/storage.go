// Package storage persists the set of subscribed push destinations.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Huahuatgc/ribao/internal/config"
)

// Store is the interface for all subscription storage backends.
type Store interface {
	// List returns all subscribed destinations.
	List(ctx context.Context) ([]string, error)

	// Add subscribes a destination. Adding an existing destination is a no-op.
	Add(ctx context.Context, destination string) error

	// Remove unsubscribes a destination.
	Remove(ctx context.Context, destination string) error

	// Close flushes pending writes and releases resources.
	Close(ctx context.Context) error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the configured storage backend.
func New(cfg *config.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Type {
	case "file":
		return NewFileStore(cfg.Path, logger)
	case "mongodb":
		return NewMongoStore(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
