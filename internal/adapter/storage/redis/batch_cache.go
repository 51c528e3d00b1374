package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// BatchCache implements ports.BatchCache. Batches are immutable once
// committed, so cached entries never go stale; the TTL only bounds memory.
type BatchCache struct {
	client *goredis.Client
	prefix string
}

// NewBatchCache creates a new Redis-backed batch cache.
func NewBatchCache(client *goredis.Client) *BatchCache {
	return &BatchCache{
		client: client,
		prefix: "batch:",
	}
}

// Get returns the cached batch JSON, or nil on a miss.
func (c *BatchCache) Get(ctx context.Context, batchID string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+batchID).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis batch cache get: %w", err)
	}
	return val, nil
}

// Set stores a batch's JSON encoding under its identifier.
func (c *BatchCache) Set(ctx context.Context, batchID string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+batchID, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis batch cache set: %w", err)
	}
	return nil
}
