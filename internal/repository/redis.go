package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"maitred/internal/config"
	"maitred/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisAvailabilityCache stores ListAvailable results in redis so several
// server instances sharing one redis see each other's warm entries.
type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client, ttl: ttl}
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, day string, slot int) ([]models.TableRecord, bool, error) {
	if c.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := c.client.Get(ctx, cacheKey(day, slot)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get availability from redis: %w", err)
	}

	var records []models.TableRecord
	if err := json.Unmarshal([]byte(val), &records); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal availability: %w", err)
	}
	return records, true, nil
}

func (c *RedisAvailabilityCache) Set(ctx context.Context, day string, slot int, records []models.TableRecord) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal availability: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(day, slot), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set availability in redis: %w", err)
	}
	return nil
}

func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, day string) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	keys := make([]string, 0, len(slotKeys()))
	for _, slot := range slotKeys() {
		keys = append(keys, cacheKey(day, slot))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate availability in redis: %w", err)
	}
	return nil
}

// Ping checks the redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
