package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parcel-ledger/internal/core/cache"
	"parcel-ledger/internal/features/parcels/domain"
)

const trackingKeyPrefix = "tracking:"

// RedisTrackingCache implements ports.TrackingCache on the shared cache.
type RedisTrackingCache struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisTrackingCache creates a new RedisTrackingCache whose entries expire after ttl.
func NewRedisTrackingCache(c cache.Cache, ttl time.Duration) *RedisTrackingCache {
	return &RedisTrackingCache{
		cache: c,
		ttl:   ttl,
	}
}

func trackingKey(number string) string {
	return trackingKeyPrefix + domain.NormalizeTrackingNumber(number)
}

// Get returns nil, nil on a miss.
func (r *RedisTrackingCache) Get(ctx context.Context, number string) (*domain.TrackingView, error) {
	data, err := r.cache.Get(ctx, trackingKey(number))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tracking view from cache: %w", err)
	}

	var view domain.TrackingView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tracking view: %w", err)
	}
	return &view, nil
}

// Set stores the view under its tracking number.
func (r *RedisTrackingCache) Set(ctx context.Context, view *domain.TrackingView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal tracking view: %w", err)
	}
	if err := r.cache.Set(ctx, trackingKey(view.TrackingNumber), data, r.ttl); err != nil {
		return fmt.Errorf("failed to save tracking view to cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached view of a parcel.
func (r *RedisTrackingCache) Invalidate(ctx context.Context, number string) error {
	if err := r.cache.Delete(ctx, trackingKey(number)); err != nil {
		return fmt.Errorf("failed to delete tracking view from cache: %w", err)
	}
	return nil
}
