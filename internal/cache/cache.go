package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Defaults for Policy.
const (
	DefaultMaxEntries = 500
	DefaultMaxAge     = 30 * 24 * time.Hour
)

// ErrInvalidName is returned for namespaces or keys that are empty or contain
// characters outside [A-Za-z0-9._-].
var ErrInvalidName = errors.New("invalid cache name")

// Store is a namespaced key-value store for backend responses.
//
// Implementations are safe for concurrent use. Concurrent Sets of the same key
// resolve last-write-wins.
type Store interface {
	// Get returns the stored value. The boolean is false on a miss, which is not an
	// error.
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)

	// Set stores value, replacing any previous value.
	Set(ctx context.Context, namespace, key string, value []byte) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, namespace, key string) error
}

// Policy bounds what a store keeps.
type Policy struct {
	// MaxEntries is the number of entries kept per namespace.
	MaxEntries int

	// MaxAge is how long an entry stays valid.
	MaxAge time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.MaxEntries <= 0 {
		p.MaxEntries = DefaultMaxEntries
	}
	if p.MaxAge <= 0 {
		p.MaxAge = DefaultMaxAge
	}
	return p
}

// validate checks that namespace and key are safe as path elements and redis keys.
func validate(namespace, key string) error {
	for _, s := range [2]string{namespace, key} {
		if s == "" || s == "." || s == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidName, s)
		}
		for _, r := range s {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			case r == '.', r == '_', r == '-':
			default:
				return fmt.Errorf("%w: %q", ErrInvalidName, s)
			}
		}
	}
	return nil
}

// NopStore never stores anything. It backs --no-cache.
type NopStore struct{}

// Get always misses.
func (NopStore) Get(context.Context, string, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the value.
func (NopStore) Set(context.Context, string, string, []byte) error { return nil }

// Delete does nothing.
func (NopStore) Delete(context.Context, string, string) error { return nil }
