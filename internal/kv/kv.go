// Package kv defines the key-value store the rest of the application is built
// on, and ships three backends for it: an in-process map, SQLite through gorm
// and Redis.
//
// The contract is deliberately small. A store offers single-key get, put (with
// an optional TTL), idempotent delete and prefix listing. There are no
// transactions, no compare-and-swap and no multi-key atomicity, and a put is
// not guaranteed to be visible to a get served by another replica.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or has expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is the key-value collaborator.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Put writes value under key. A ttl <= 0 means the entry never expires.
	// Every put resets the TTL of the key.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns the live keys starting with prefix, in no particular order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Closer is implemented by stores holding a connection.
type Closer interface {
	Close() error
}

// Close releases the resources held by s, if any.
func Close(s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}
