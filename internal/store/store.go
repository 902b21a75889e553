// Package store holds the origin-scoped key-value storage the storefront
// persists its state in. Consumers define the interface; the backends
// (memory, redis, sqlite) implement it.
package store

import (
	"context"
	"errors"
)

// KV is a flat key-value store surviving page reloads and navigation.
// Absence of a key is a valid state, reported as ErrNotFound.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ErrNotFound is returned by Get when the key has never been set or
// has been deleted.
var ErrNotFound = errors.New("store: key not found")
