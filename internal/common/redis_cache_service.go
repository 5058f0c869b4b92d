package common

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"travel-desk/bookingcart/internal/logging"
)

// RedisCacheService implements CacheInterface using Redis
type RedisCacheService struct {
	client *redis.Client
	ctx    context.Context
}

// Ensure RedisCacheService implements CacheInterface
var _ CacheInterface = (*RedisCacheService)(nil)

// NewRedisCacheService wraps an existing client; see NewRedisClient.
func NewRedisCacheService(client *redis.Client) *RedisCacheService {
	return &RedisCacheService{
		client: client,
		ctx:    context.Background(),
	}
}

// Set stores a value in Redis with the given key and duration
func (r *RedisCacheService) Set(key string, value []byte, duration time.Duration) {
	if err := r.client.Set(r.ctx, key, value, duration).Err(); err != nil {
		logging.Warn("Redis cache: failed to set key", "key", key, "error", err)
	}
}

// Get retrieves a value from Redis by key
func (r *RedisCacheService) Get(key string) ([]byte, bool) {
	data, err := r.client.Get(r.ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logging.Warn("Redis cache: failed to get key", "key", key, "error", err)
		return nil, false
	}
	return data, true
}

// Delete removes a value from Redis by key
func (r *RedisCacheService) Delete(key string) {
	if err := r.client.Del(r.ctx, key).Err(); err != nil {
		logging.Warn("Redis cache: failed to delete key", "key", key, "error", err)
	}
}

// GetOrSet retrieves a value from cache, or loads it using the loader function if not found
func (r *RedisCacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() ([]byte, error),
) ([]byte, error) {
	if val, found := r.Get(key); found {
		return val, nil
	}

	val, err := loader()
	if err != nil {
		return nil, err
	}

	r.Set(key, val, duration)

	return val, nil
}

func (r *RedisCacheService) Ping() error {
	ctx, cancel := context.WithTimeout(r.ctx, 2*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisCacheService) Close() error {
	return r.client.Close()
}

// TTL returns the remaining time to live of a key
func (r *RedisCacheService) TTL(key string) (time.Duration, error) {
	return r.client.TTL(r.ctx, key).Result()
}
