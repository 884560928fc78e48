package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/mdgraph/pkg/adapters/redis"
	"github.com/aretw0/mdgraph/pkg/render"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_GetSet(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte("<svg/>"), 0))

	data, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<svg/>", string(data))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "default-ttl", []byte("a"), 0))
	require.NoError(t, store.Set(ctx, "explicit-ttl", []byte("b"), time.Minute))

	mr.FastForward(2 * time.Second)

	_, ok, err := store.Get(ctx, "default-ttl")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Get(ctx, "explicit-ttl")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "abc:svg", []byte("x"), 0))

	assert.True(t, mr.Exists("custom:app:render:abc:svg"), "Expected key with custom prefix to exist")
}

func TestRedisStore_Purge(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, mr.Set("unrelated", "keep"))

	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("unrelated"))
}

func TestRedisStore_New(t *testing.T) {
	mr, _ := newClient(t)

	store, err := redis.New(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(context.Background(), "k", []byte("v"), 0))
	assert.True(t, mr.Exists(redis.DefaultPrefix+"render:k"))

	_, err = redis.New(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestRedisStore_BacksRenderCache(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)

	calls := 0
	next := render.RenderFunc(func(_ context.Context, dot, format string) ([]byte, error) {
		calls++
		return []byte(dot), nil
	})
	cache := render.NewCache(next, time.Minute,
		render.WithStore(store),
		render.WithLocker(redis.NewLocker(client, redis.DefaultPrefix), time.Second),
	)

	for i := 0; i < 3; i++ {
		out, err := cache.RenderDOT(context.Background(), "digraph{}", "svg")
		require.NoError(t, err)
		assert.Equal(t, "digraph{}", string(out))
	}
	assert.Equal(t, 1, calls)
}
