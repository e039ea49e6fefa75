package storage

import (
	"context"
	"errors"
)

// Slot names used by the tracker.
const (
	KeyInfluencers  = "influencers"
	KeyFilterStatus = "filterStatus"
)

// ErrNotFound is returned by Get when the key has never been set or was removed.
var ErrNotFound = errors.New("storage: key not found")

// Storage is a durable store of named blobs.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	Close() error
}
