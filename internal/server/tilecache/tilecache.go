// Package tilecache caches rendered tile payloads for the dynamic tile
// endpoint.
//
// Backends: an in-process LRU-free memory map for single-instance
// serving, Redis for multi-instance deployments, and a null cache for
// disabled caching. Keys are "source/z/x/y".
package tilecache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores tile payloads by key.
//
// Get returns (nil, false, nil) on a miss; cache errors are returned so
// callers can log them, but serving proceeds without the cache either way.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Close() error
}

// Key builds the cache key for a tile.
func Key(source string, z, x, y int) string {
	return fmt.Sprintf("%s/%d/%d/%d", source, z, x, y)
}

// Memory is an in-process cache with TTL expiry. Expired entries are
// dropped on read; there is no background sweeper, which is fine for a
// single-viewer deployment's working set.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemory creates an empty memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

// Get returns the cached payload for key, if fresh.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores data under key. A ttl of 0 means no expiry.
func (m *Memory) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := memoryEntry{data: data}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Close does nothing for the memory cache.
func (m *Memory) Close() error { return nil }

// Redis caches tiles in a Redis instance, namespaced under "tile:".
type Redis struct {
	client *redis.Client
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis at %s: %w", addr, err)
	}
	return &Redis{client: client}, nil
}

// Get returns the cached payload for key, if present.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, "tile:"+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data under key with ttl.
func (r *Redis) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, "tile:"+key, data, ttl).Err()
}

// Close closes the Redis connection.
func (r *Redis) Close() error { return r.client.Close() }

// Null never stores anything. Used when caching is disabled.
type Null struct{}

// NewNull creates a null cache.
func NewNull() Null { return Null{} }

// Get always misses.
func (Null) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }

// Set does nothing.
func (Null) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error { return nil }

// Close does nothing.
func (Null) Close() error { return nil }

var (
	_ Cache = (*Memory)(nil)
	_ Cache = (*Redis)(nil)
	_ Cache = Null{}
)
