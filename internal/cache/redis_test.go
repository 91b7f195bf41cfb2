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

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client), mr
}

func TestAside_FetchesOnceThenHits(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dst *payload) func() error {
		return func() error {
			calls++
			*dst = payload{Name: "go", Count: 3}
			return nil
		}
	}

	var first payload
	require.NoError(t, c.Aside(ctx, PopularTagsKey(10), &first, TagsTTL, fetch(&first)))
	var second payload
	require.NoError(t, c.Aside(ctx, PopularTagsKey(10), &second, TagsTTL, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists(PopularTagsKey(10)))
	assert.Equal(t, TagsTTL, mr.TTL(PopularTagsKey(10)))
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	c, mr := newTestCache(t)

	var dst payload
	err := c.Aside(context.Background(), StatsKey, &dst, StatsTTL, func() error {
		return errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
	assert.False(t, mr.Exists(StatsKey))
}

func TestInvalidatePrefix(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(TagListKey("go"), "[]"))
	require.NoError(t, mr.Set(PopularTagsKey(5), "[]"))
	require.NoError(t, mr.Set(StatsKey, "{}"))

	c.InvalidatePrefix(ctx, TagsPrefix())

	assert.False(t, mr.Exists(TagListKey("go")))
	assert.False(t, mr.Exists(PopularTagsKey(5)))
	assert.True(t, mr.Exists(StatsKey))
}

func TestDisabledCache(t *testing.T) {
	var c *Cache
	assert.False(t, c.Enabled())

	calls := 0
	var dst payload
	for i := 0; i < 2; i++ {
		require.NoError(t, c.Aside(context.Background(), "k", &dst, time.Minute, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
	c.Invalidate(context.Background(), "k")
	assert.NoError(t, c.Close())
}

func TestConnect_UnreachableDisablesCache(t *testing.T) {
	c := Connect(context.Background(), "127.0.0.1:1")
	assert.False(t, c.Enabled())
	assert.False(t, Connect(context.Background(), "").Enabled())
}
