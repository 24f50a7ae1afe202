package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey  = "catalog:version"
	cacheSnapshotKey = "catalog:snapshot"
)

// Cache wraps Redis-based snapshot caching with version bump invalidation.
// Administrators editing configuration bump the version; every reader then
// falls through to a fresh load without coordinated key deletion.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client degrades to a
// pass-through loader, which tests rely on.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Bump invalidates every cached snapshot by advancing the version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

// Fetch loads a cached snapshot or populates it using the loader.
func (c *Cache) Fetch(ctx context.Context, loader func(context.Context) (*Snapshot, error)) (*Snapshot, error) {
	if loader == nil {
		return nil, errors.New("catalog: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	ver, err := c.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: cache version: %w", err)
	}
	key := fmt.Sprintf("%s:%d", cacheSnapshotKey, ver)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var snapshot Snapshot
		if err := json.Unmarshal(raw, &snapshot); err == nil {
			return &snapshot, nil
		}
		// A corrupt entry falls through to a fresh load.
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("catalog: cache get: %w", err)
	}

	snapshot, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("catalog: cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		return nil, fmt.Errorf("catalog: cache set: %w", err)
	}
	return snapshot, nil
}
