// Package cache keeps JSON copies of catalog reads in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the read-through store used by the catalog handlers. Misses are
// reported with ok=false, never as errors.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (ok bool, err error)
	SetJSON(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

const keyPrefix = "storefront:"

func CategoriesKey() string                { return keyPrefix + "categories" }
func CategoryKey(name string) string       { return keyPrefix + "category:" + name }
func ProductsKey(categoryID string) string { return keyPrefix + "products:" + categoryID }
func ProductKey(name string) string        { return keyPrefix + "product:" + name }

type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, opts Options) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", opts.Addr, err)
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Redis{rdb: rdb, ttl: ttl}, nil
}

func (c *Redis) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Redis) SetJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

// Nop is used when no Redis address is configured.
type Nop struct{}

func (Nop) GetJSON(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) SetJSON(context.Context, string, any) error         { return nil }
func (Nop) Delete(context.Context, ...string) error            { return nil }
