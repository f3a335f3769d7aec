package ports

import (
	"context"
	"time"
)

// TokenCache is the TTL-aware key-value registry of live tokens.
// Get reports found=false for a missing key. A zero ttl stores without expiry.
type TokenCache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}
