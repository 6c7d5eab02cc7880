package cache

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

func newTestCache(t *testing.T) *Versioned {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVersioned(client, "test", time.Minute)
}

func TestFetchJSONUsesCachedValue(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	key, err := c.BuildKey(ctx, "list")
	require.NoError(t, err)

	var first, second []string
	require.NoError(t, c.FetchJSON(ctx, key, &first, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &second, loader))

	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestBumpChangesKey(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	before, err := c.BuildKey(ctx, "list")
	require.NoError(t, err)
	require.NoError(t, c.Bump(ctx))
	after, err := c.BuildKey(ctx, "list")
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
	assert.Equal(t, "test:list:1", before)
	assert.Equal(t, "test:list:2", after)
}

func TestNilClientLoadsDirectly(t *testing.T) {
	c := NewVersioned(nil, "test", time.Minute)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "test:x", key)

	var out int
	require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) { return 7, nil }))
	assert.Equal(t, 7, out)
	assert.NoError(t, c.Bump(ctx))
}

func TestFetchJSONPropagatesLoaderError(t *testing.T) {
	c := newTestCache(t)
	boom := errors.New("boom")
	var out int
	err := c.FetchJSON(context.Background(), "test:k:1", &out, func(context.Context) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
