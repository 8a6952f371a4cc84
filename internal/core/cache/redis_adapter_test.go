package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(t *testing.T) (*RedisAdapter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	adapter, err := NewRedisAdapter("redis://"+mr.Addr(), "parcel-ledger")
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return adapter, mr
}

func TestRedisAdapter_GetSet(t *testing.T) {
	adapter, mr := newAdapter(t)
	ctx := context.Background()

	err := adapter.Set(ctx, "tracking:PX-1", []byte("payload"), 10*time.Second)
	require.NoError(t, err)

	got, err := adapter.Get(ctx, "tracking:PX-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	// Keys are namespaced.
	assert.True(t, mr.Exists("parcel-ledger:tracking:PX-1"))
}

func TestRedisAdapter_GetMiss(t *testing.T) {
	adapter, _ := newAdapter(t)

	_, err := adapter.Get(context.Background(), "non_existent_key")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisAdapter_Delete(t *testing.T) {
	adapter, _ := newAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, adapter.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, adapter.Delete(ctx, "a", "b", "missing"))
	require.NoError(t, adapter.Delete(ctx))

	_, err := adapter.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = adapter.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisAdapter_TTL(t *testing.T) {
	adapter, mr := newAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "ttl_test", []byte("expires_soon"), time.Second))

	_, err := adapter.Get(ctx, "ttl_test")
	assert.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = adapter.Get(ctx, "ttl_test")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisAdapter_Ping(t *testing.T) {
	adapter, _ := newAdapter(t)

	assert.NoError(t, adapter.Ping(context.Background()))
}

func TestRedisAdapter_InvalidURL(t *testing.T) {
	_, err := NewRedisAdapter("invalid://url", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}
