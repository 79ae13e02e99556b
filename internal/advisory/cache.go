package advisory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "ccube_advisory:"

// Cache stores per-claim advisory text in redis. The worker writes results
// here; the HTTP layer reads them back on demand.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs an advisory cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Put stores the advisory text for a claim.
func (c *Cache) Put(ctx context.Context, expenseID, text string) error {
	if c == nil || c.client == nil {
		return errors.New("advisory: cache not initialised")
	}
	if err := c.client.Set(ctx, cachePrefix+expenseID, text, c.ttl).Err(); err != nil {
		return fmt.Errorf("advisory: cache put: %w", err)
	}
	return nil
}

// Text returns the cached advisory for a claim, or FallbackPending when the
// analysis has not completed yet. Redis trouble degrades to the pending
// fallback with a non-nil error for logging.
func (c *Cache) Text(ctx context.Context, expenseID string) (string, error) {
	if c == nil || c.client == nil {
		return FallbackPending, errors.New("advisory: cache not initialised")
	}
	text, err := c.client.Get(ctx, cachePrefix+expenseID).Result()
	if errors.Is(err, redis.Nil) {
		return FallbackPending, nil
	}
	if err != nil {
		return FallbackPending, fmt.Errorf("advisory: cache get: %w", err)
	}
	return text, nil
}
