// Package kv abstracts the key/value and list storage the pipeline runs on.
// The production deployment uses Redis; the in-memory implementation backs
// tests and the fake webhook tool.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested key does not exist.
var ErrNotFound = errors.New("not found")

// Store is the subset of Redis operations the pipeline depends on.
type Store interface {
	// LLen returns the length of the list at key (0 if absent).
	LLen(ctx context.Context, key string) (int64, error)

	// RPush appends values to the tail of the list at key.
	RPush(ctx context.Context, key string, values ...string) error

	// LRange returns elements [start, stop] of the list at key,
	// inclusive, with Redis negative-index semantics.
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// LTrim removes all elements of the list outside [start, stop].
	LTrim(ctx context.Context, key string, start, stop int64) error

	// Get returns the value at key. Returns ErrNotFound if absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key with no expiry.
	Set(ctx context.Context, key, value string) error

	// SetEx stores value at key with the given time-to-live.
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes keys. Missing keys are ignored.
	Del(ctx context.Context, keys ...string) error

	// Keys returns all keys matching a glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// MGet returns the values for keys, with "" for absent keys.
	MGet(ctx context.Context, keys ...string) ([]string, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}
