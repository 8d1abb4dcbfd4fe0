// Package kv is the durable key-value storage used for local progress and
// preferences. Implementations return errors; callers decide on defaults.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")
var ErrClosed = errors.New("store closed")

// Store persists string values by key.
type Store interface {
	// Get returns ErrNotFound when the key has never been set or was cleared.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Clear removes key. Clearing a missing key is not an error.
	Clear(ctx context.Context, key string) error
	Close() error
}
