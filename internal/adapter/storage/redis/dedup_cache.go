package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupKeyPrefix = "webhook:seen:"

// DedupCache implements ports.DedupCache. It is the best-effort fast path in
// front of the webhook_events unique constraint: reads short-circuit obvious
// replays, marks happen only after the authoritative insert committed, so a
// cache loss never loses idempotency.
type DedupCache struct {
	client *redis.Client
}

// NewDedupCache creates a Redis-backed DedupCache.
func NewDedupCache(client *redis.Client) *DedupCache {
	return &DedupCache{client: client}
}

// Seen reports whether the webhook id has already been fully processed.
func (c *DedupCache) Seen(ctx context.Context, webhookID string) (bool, error) {
	n, err := c.client.Exists(ctx, dedupKeyPrefix+webhookID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Mark records the webhook id after its delivery committed.
func (c *DedupCache) Mark(ctx context.Context, webhookID string, ttl time.Duration) error {
	return c.client.Set(ctx, dedupKeyPrefix+webhookID, 1, ttl).Err()
}
