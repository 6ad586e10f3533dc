package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	measurements "plantwatch/internal/measurements/domain"
)

const latestKey = "plantwatch:latest_readings"

// LatestCache caches the latest-reading view in Redis. Entries expire after
// one tick interval so the cache never serves readings older than a cycle.
type LatestCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLatestCache constructs a cache with the given entry TTL.
func NewLatestCache(client *redis.Client, ttl time.Duration) (*LatestCache, error) {
	if client == nil {
		return nil, errors.New("latest cache: nil client")
	}
	if ttl <= 0 {
		return nil, errors.New("latest cache: ttl must be positive")
	}
	return &LatestCache{client: client, ttl: ttl}, nil
}

// Get returns the cached view, or ok=false on miss.
func (c *LatestCache) Get(ctx context.Context) ([]measurements.LatestReading, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, latestKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("latest cache get: %w", err)
	}
	var view []measurements.LatestReading
	if err := json.Unmarshal([]byte(data), &view); err != nil {
		return nil, false, fmt.Errorf("latest cache decode: %w", err)
	}
	return view, true, nil
}

// Set stores the view with the configured TTL.
func (c *LatestCache) Set(ctx context.Context, view []measurements.LatestReading) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("latest cache encode: %w", err)
	}
	if err := c.client.Set(ctx, latestKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("latest cache set: %w", err)
	}
	return nil
}
