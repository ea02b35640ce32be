package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// Cache is a read-through JSON cache in front of the structure reads.
// Misses and marshal errors are soft; callers always fall back to the
// database.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
	Close() error
}

type cache struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewCache(log *logger.Logger) (Cache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &cache{
		log: log.With("service", "RedisCache"),
		rdb: rdb,
	}, nil
}

func (c *cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// stale or incompatible payload; treat as a miss
		c.log.Warn("cache payload unmarshal failed", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (c *cache) SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

func (c *cache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
