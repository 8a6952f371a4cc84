package adapters

import (
	"context"
	"testing"
	"time"

	"parcel-ledger/internal/core/cache"
	"parcel-ledger/internal/features/parcels/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackingCache(t *testing.T, ttl time.Duration) (*RedisTrackingCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	adapter, err := cache.NewRedisAdapter("redis://"+mr.Addr(), "parcel-ledger")
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return NewRedisTrackingCache(adapter, ttl), mr
}

func TestRedisTrackingCache(t *testing.T) {
	c, mr := newTrackingCache(t, time.Minute)
	ctx := context.Background()

	miss, err := c.Get(ctx, "PX-20260302-ABCDEFGH")
	require.NoError(t, err)
	assert.Nil(t, miss)

	view := &domain.TrackingView{
		TrackingNumber: "PX-20260302-ABCDEFGH",
		Status:         domain.StatusInTransit,
		StatusName:     "In Transit",
		WeightKg:       "2.500",
		CreatedAt:      time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		History: []domain.TrackingEvent{
			{Status: domain.StatusInTransit, StatusName: "In Transit", Office: "Plovdiv"},
			{Status: domain.StatusCreated, StatusName: "Created", Note: "Parcel registered"},
		},
	}
	require.NoError(t, c.Set(ctx, view))
	assert.True(t, mr.Exists("parcel-ledger:tracking:PX-20260302-ABCDEFGH"))

	got, err := c.Get(ctx, "px-20260302-abcdefgh")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *view, *got)

	mr.FastForward(2 * time.Minute)
	expired, err := c.Get(ctx, view.TrackingNumber)
	require.NoError(t, err)
	assert.Nil(t, expired)

	require.NoError(t, c.Set(ctx, view))
	require.NoError(t, c.Invalidate(ctx, view.TrackingNumber))
	gone, err := c.Get(ctx, view.TrackingNumber)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRedisTrackingCache_CorruptEntry(t *testing.T) {
	c, mr := newTrackingCache(t, time.Minute)
	require.NoError(t, mr.Set("parcel-ledger:tracking:PX-1", "{not json"))

	_, err := c.Get(context.Background(), "PX-1")
	assert.Error(t, err)
}
