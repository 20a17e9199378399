package cache

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"event-marketplace-server/config"
)

// RedisCache backs the Cache interface with Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis using the application config.
func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	log.Println("🔧 Redis cache initialized with address:", cfg.Addr)

	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("⚠️ Redis GET %s failed: %v", key, err)
		}
		return nil, false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("⚠️ Redis SET %s failed: %v", key, err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("⚠️ Redis DEL failed: %v", err)
	}
}

// Ping verifies connectivity; callers may fall back to MemoryCache.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
