package redis

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	goredis "github.com/redis/go-redis/v9"
)

const scanBatch = 100

// TokenCache keeps the live token registry in Redis. Entry expiry is left to
// Redis key TTLs.
type TokenCache struct {
	client goredis.UniversalClient
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(ctx context.Context, opts Options) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func NewTokenCache(client goredis.UniversalClient) *TokenCache {
	return &TokenCache{client: client}
}

func (c *TokenCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	found := true
	err := xray.Capture(ctx, "Redis.Get", func(ctx context.Context) error {
		v, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			found = false
			return nil
		}
		value = v
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

func (c *TokenCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return xray.Capture(ctx, "Redis.Set", func(ctx context.Context) error {
		return c.client.Set(ctx, key, value, ttl).Err()
	})
}

func (c *TokenCache) Exists(ctx context.Context, key string) (bool, error) {
	var n int64
	err := xray.Capture(ctx, "Redis.Exists", func(ctx context.Context) error {
		var err error
		n, err = c.client.Exists(ctx, key).Result()
		return err
	})
	return n > 0, err
}

func (c *TokenCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return xray.Capture(ctx, "Redis.Del", func(ctx context.Context) error {
		return c.client.Del(ctx, keys...).Err()
	})
}

// Scan walks the keyspace with SCAN so large registries never block the server.
func (c *TokenCache) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	err := xray.Capture(ctx, "Redis.Scan", func(ctx context.Context) error {
		iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		return iter.Err()
	})
	return keys, err
}
