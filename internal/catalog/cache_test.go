package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestCacheFetchPopulatesAndReuses(t *testing.T) {
	cache := NewCache(testRedis(t), time.Minute)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (*Snapshot, error) {
		loads++
		return validSnapshot(), nil
	}

	first, err := cache.Fetch(ctx, loader)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, loads)

	second, err := cache.Fetch(ctx, loader)
	require.NoError(t, err)
	assert.Equal(t, 1, loads, "second fetch must hit the cache")
	assert.Len(t, second.Templates, len(first.Templates))
}

func TestCacheBumpInvalidates(t *testing.T) {
	cache := NewCache(testRedis(t), time.Minute)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (*Snapshot, error) {
		loads++
		return validSnapshot(), nil
	}

	_, err := cache.Fetch(ctx, loader)
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))

	_, err = cache.Fetch(ctx, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, loads, "bump must force a reload")
}

func TestCacheLoaderErrorPropagates(t *testing.T) {
	cache := NewCache(testRedis(t), time.Minute)
	boom := errors.New("store down")

	_, err := cache.Fetch(context.Background(), func(context.Context) (*Snapshot, error) {
		return nil, boom
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestCacheNilClientPassesThrough(t *testing.T) {
	cache := NewCache(nil, time.Minute)

	loads := 0
	for i := 0; i < 2; i++ {
		_, err := cache.Fetch(context.Background(), func(context.Context) (*Snapshot, error) {
			loads++
			return validSnapshot(), nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, loads)
}
