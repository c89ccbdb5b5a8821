// Package cache provides byte-oriented key/value backends for stored
// documents.
//
// # Backends
//
//   - [FileCache]: one JSON envelope per key under a directory (CLI default)
//   - [RedisCache]: Redis via go-redis, native key expiry
//   - [MongoCache]: one MongoDB document per key with a TTL index
//   - [NewNullCache]: stores nothing, every Get is a miss
//
// All backends implement [Cache]. A zero or negative TTL means the entry
// never expires.
//
// # Keys
//
// A [Keyer] turns document ids and content into backend keys:
//
//	k := cache.NewDefaultKeyer()
//	k.DocumentKey("8f1c...")         // "doc:8f1c..."
//	k.ContentKey(text)               // "content:<sha256>"
//
//	// Namespaced keys for shared backends
//	team := cache.NewScopedKeyer(k, "team-a:")
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte cache with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 stores without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// DocumentKey is the key holding the text of document id.
	DocumentKey(id string) string

	// ContentKey is the key mapping a text digest to the id storing it.
	ContentKey(text []byte) string
}

// DefaultKeyer generates unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocumentKey returns "doc:<id>".
func (DefaultKeyer) DocumentKey(id string) string {
	return "doc:" + id
}

// ContentKey returns "content:<sha256 of text>".
func (DefaultKeyer) ContentKey(text []byte) string {
	return "content:" + Hash(text)
}

// Hash returns the hex SHA-256 digest of data. Content keys and file cache
// names are built from it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NewNullCache returns a Cache that keeps nothing. Writes succeed and every
// Get misses, so a store on top of it hands out ids it cannot resolve. It
// backs the "none" store backend.
func NewNullCache() Cache { return nullCache{} }

type nullCache struct{}

func (nullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error                     { return nil }
func (nullCache) Close() error                                             { return nil }
