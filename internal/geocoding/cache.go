package geocoding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReverseCache stores resolved reverse-geocoding labels.
// Get reports ok=false on a miss.
type ReverseCache interface {
	Get(ctx context.Context, provider string, c Coordinate) (label string, ok bool, err error)
	Set(ctx context.Context, provider string, c Coordinate, label string) error
}

// RedisReverseCache keeps labels in Redis strings with a TTL.
type RedisReverseCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReverseCache(client *redis.Client, ttl time.Duration) *RedisReverseCache {
	return &RedisReverseCache{client: client, ttl: ttl}
}

// Keys round to 6 decimals (~0.1 m), finer than any map click can resolve.
func reverseCacheKey(provider string, c Coordinate) string {
	return fmt.Sprintf("geocode:reverse:%s:%.6f,%.6f", provider, c.Latitude, c.Longitude)
}

func (r *RedisReverseCache) Get(ctx context.Context, provider string, c Coordinate) (string, bool, error) {
	label, err := r.client.Get(ctx, reverseCacheKey(provider, c)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return label, true, nil
}

func (r *RedisReverseCache) Set(ctx context.Context, provider string, c Coordinate, label string) error {
	return r.client.Set(ctx, reverseCacheKey(provider, c), label, r.ttl).Err()
}
