package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/internal/domain/tracking"
	"github.com/vietcart/logistics/internal/infrastructure/config"
)

// NewClient connects to redis from config. URL takes precedence over the
// discrete fields.
func NewClient(cfg *config.RedisConfig) (*redis.Client, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		var err error
		opts, err = redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
	} else {
		opts = &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	return redis.NewClient(opts), nil
}

// RedisCache is the TTL'd key-value store behind fee quotes, tracking
// snapshots, and last-known shipper locations. A cache miss is (zero,
// false, nil); errors are reserved for real redis failures.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a connected client
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// GetFeeQuote looks up a cached fee quote
func (c *RedisCache) GetFeeQuote(ctx context.Context, key string) (*shipping.FeeQuote, bool, error) {
	var quote shipping.FeeQuote
	ok, err := c.get(ctx, key, &quote)
	if !ok || err != nil {
		return nil, false, err
	}
	return &quote, true, nil
}

// SetFeeQuote caches a fee quote for the given TTL
func (c *RedisCache) SetFeeQuote(ctx context.Context, key string, quote *shipping.FeeQuote, ttl time.Duration) error {
	return c.set(ctx, key, quote, ttl)
}

// GetTracking looks up a cached tracking snapshot
func (c *RedisCache) GetTracking(ctx context.Context, trackingNumber string) (*shipping.TrackingInfo, bool, error) {
	var info shipping.TrackingInfo
	ok, err := c.get(ctx, shipping.TrackingCacheKey(trackingNumber), &info)
	if !ok || err != nil {
		return nil, false, err
	}
	return &info, true, nil
}

// SetTracking caches a tracking snapshot for the given TTL
func (c *RedisCache) SetTracking(ctx context.Context, trackingNumber string, info *shipping.TrackingInfo, ttl time.Duration) error {
	return c.set(ctx, shipping.TrackingCacheKey(trackingNumber), info, ttl)
}

// InvalidateTracking drops the cached snapshot so the next read reflects
// webhook-asserted truth.
func (c *RedisCache) InvalidateTracking(ctx context.Context, trackingNumber string) error {
	if err := c.client.Del(ctx, shipping.TrackingCacheKey(trackingNumber)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate tracking cache: %w", err)
	}
	return nil
}

// SetLocation stores a shipper's last-known location
func (c *RedisCache) SetLocation(ctx context.Context, shipperID string, sample *tracking.LocationSample, ttl time.Duration) error {
	return c.set(ctx, shipping.LocationCacheKey(shipperID), sample, ttl)
}

// GetLocation looks up a shipper's last-known location; expired locations
// read as a miss.
func (c *RedisCache) GetLocation(ctx context.Context, shipperID string) (*tracking.LocationSample, bool, error) {
	var sample tracking.LocationSample
	ok, err := c.get(ctx, shipping.LocationCacheKey(shipperID), &sample)
	if !ok || err != nil {
		return nil, false, err
	}
	return &sample, true, nil
}

// SeenWebhook records a webhook dedupe key, reporting whether it was
// already seen inside the retention window.
func (c *RedisCache) SeenWebhook(ctx context.Context, dedupeKey string, retention time.Duration) (bool, error) {
	set, err := c.client.SetNX(ctx, "shipwh:"+dedupeKey, 1, retention).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record webhook dedupe key: %w", err)
	}
	return !set, nil
}

// ForgetWebhook returns a dedupe slot taken by SeenWebhook, so a
// redelivery of an event whose apply failed is processed instead of
// dropped.
func (c *RedisCache) ForgetWebhook(ctx context.Context, dedupeKey string) error {
	if err := c.client.Del(ctx, "shipwh:"+dedupeKey).Err(); err != nil {
		return fmt.Errorf("failed to release webhook dedupe key: %w", err)
	}
	return nil
}

func (c *RedisCache) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// A corrupt entry reads as a miss; the caller will refresh it.
		return false, nil
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache write %s: %w", key, err)
	}
	return nil
}
