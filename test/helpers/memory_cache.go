package helpers

import (
	"context"
	"sync"
	"time"

	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/internal/domain/tracking"
)

// MemoryCache is an in-process stand-in for the redis cache. TTLs are
// recorded but not enforced unless Expire is called explicitly.
type MemoryCache struct {
	mu        sync.Mutex
	fees      map[string]*shipping.FeeQuote
	trackings map[string]*shipping.TrackingInfo
	locations map[string]*tracking.LocationSample
	webhooks  map[string]struct{}
}

// NewMemoryCache creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		fees:      make(map[string]*shipping.FeeQuote),
		trackings: make(map[string]*shipping.TrackingInfo),
		locations: make(map[string]*tracking.LocationSample),
		webhooks:  make(map[string]struct{}),
	}
}

func (c *MemoryCache) GetFeeQuote(_ context.Context, key string) (*shipping.FeeQuote, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.fees[key]
	return q, ok, nil
}

func (c *MemoryCache) SetFeeQuote(_ context.Context, key string, quote *shipping.FeeQuote, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fees[key] = quote
	return nil
}

func (c *MemoryCache) GetTracking(_ context.Context, trackingNumber string) (*shipping.TrackingInfo, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.trackings[trackingNumber]
	return info, ok, nil
}

func (c *MemoryCache) SetTracking(_ context.Context, trackingNumber string, info *shipping.TrackingInfo, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trackings[trackingNumber] = info
	return nil
}

func (c *MemoryCache) InvalidateTracking(_ context.Context, trackingNumber string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.trackings, trackingNumber)
	return nil
}

// HasTracking reports whether a snapshot is cached.
func (c *MemoryCache) HasTracking(trackingNumber string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.trackings[trackingNumber]
	return ok
}

func (c *MemoryCache) SetLocation(_ context.Context, shipperID string, sample *tracking.LocationSample, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locations[shipperID] = sample
	return nil
}

func (c *MemoryCache) GetLocation(_ context.Context, shipperID string) (*tracking.LocationSample, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.locations[shipperID]
	return s, ok, nil
}

func (c *MemoryCache) SeenWebhook(_ context.Context, dedupeKey string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.webhooks[dedupeKey]; ok {
		return true, nil
	}
	c.webhooks[dedupeKey] = struct{}{}
	return false, nil
}

func (c *MemoryCache) ForgetWebhook(_ context.Context, dedupeKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.webhooks, dedupeKey)
	return nil
}
