// Package rescache provides the TTL result cache shared by the intent
// detector, search orchestrator and knowledge retriever. Keys are derived
// from normalized query text; values are JSON-encoded and immutable, so
// concurrent population of the same key is last-writer-wins.
package rescache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Default TTLs per consumer
const (
	DefaultSearchTTL    = 15 * time.Minute
	DefaultIntentTTL    = 1 * time.Hour
	DefaultKnowledgeTTL = 5 * time.Minute

	// DefaultMaxEntries bounds the in-memory backend.
	DefaultMaxEntries = 1000
)

// ErrCacheUnavailable is returned when the backing store cannot be reached.
// Callers treat cache failures as misses.
var ErrCacheUnavailable = errors.New("result cache unavailable")

// Cache is the shared result cache. Get decodes into dest and reports
// whether a live entry was found.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// memoryEntry holds an encoded value with its expiration time.
type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is the in-process backend: an LRU with per-entry TTL. Values are
// JSON-encoded on Set so both backends observe identical serialization.
type Memory struct {
	mu    sync.RWMutex
	cache *lru.Cache[string, memoryEntry]
	clock func() time.Time
}

// NewMemory creates an in-memory cache holding at most maxEntries values.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	cache, err := lru.New[string, memoryEntry](maxEntries)
	if err != nil {
		// Only possible with a non-positive size.
		cache, _ = lru.New[string, memoryEntry](DefaultMaxEntries)
	}
	return &Memory{cache: cache, clock: time.Now}
}

func (m *Memory) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.RLock()
	entry, ok := m.cache.Get(key)
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if m.clock().After(entry.expiresAt) {
		m.mu.Lock()
		m.cache.Remove(key)
		m.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("decode cached value: %w", err)
	}
	return true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}

	m.mu.Lock()
	m.cache.Add(key, memoryEntry{data: data, expiresAt: m.clock().Add(ttl)})
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	m.cache.Remove(key)
	m.mu.Unlock()
	return nil
}
