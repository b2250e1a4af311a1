// Package store holds the persistence backends of the series cache. Every
// backend is a byte key-value store keyed by instrument symbol.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// Store persists opaque values by key. Put replaces the whole value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Name() string
	Close() error
}
