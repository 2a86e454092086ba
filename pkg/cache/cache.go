package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs per cached entity
const (
	TTLContent = 30 * time.Second // single content items, refreshed often
	TTLPopular = 5 * time.Minute  // popular content listing
	TTLStats   = 5 * time.Minute  // analytics stats
	TTLDefault = 1 * time.Minute
)

// Cache key prefixes
const (
	PrefixContent = "content:"
	PrefixPopular = "popular:"
	PrefixStats   = "stats:"
)

// Service Redis-backed cache for read paths
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetContent(ctx context.Context, id uint64, dest interface{}) error
	SetContent(ctx context.Context, id uint64, data interface{}) error
	InvalidateContent(ctx context.Context, id uint64) error

	GetPopular(ctx context.Context, limit int, dest interface{}) error
	SetPopular(ctx context.Context, limit int, data interface{}) error
	InvalidatePopular(ctx context.Context) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a new cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether a Redis client is attached
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return redis.Nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = TTLDefault
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) GetContent(ctx context.Context, id uint64, dest interface{}) error {
	return c.Get(ctx, fmt.Sprintf("%s%d", PrefixContent, id), dest)
}

func (c *redisCache) SetContent(ctx context.Context, id uint64, data interface{}) error {
	return c.Set(ctx, fmt.Sprintf("%s%d", PrefixContent, id), data, TTLContent)
}

func (c *redisCache) InvalidateContent(ctx context.Context, id uint64) error {
	return c.Delete(ctx, fmt.Sprintf("%s%d", PrefixContent, id))
}

func (c *redisCache) GetPopular(ctx context.Context, limit int, dest interface{}) error {
	return c.Get(ctx, fmt.Sprintf("%s%d", PrefixPopular, limit), dest)
}

func (c *redisCache) SetPopular(ctx context.Context, limit int, data interface{}) error {
	return c.Set(ctx, fmt.Sprintf("%s%d", PrefixPopular, limit), data, TTLPopular)
}

func (c *redisCache) InvalidatePopular(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, PrefixPopular+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.Delete(ctx, keys...)
}
