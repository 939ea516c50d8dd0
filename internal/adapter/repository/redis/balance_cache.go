package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// BalanceCache implements usecase.BalanceCache using Redis. Balances are
// stored as decimal strings so no precision is lost across the wire.
type BalanceCache struct {
	client *redis.Client
	prefix string
}

// NewBalanceCache creates a new BalanceCache.
func NewBalanceCache(client *redis.Client) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "balance:",
	}
}

// Get retrieves a cached balance. The second return value reports whether the
// key was present.
func (c *BalanceCache) Get(ctx context.Context, accountID string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+accountID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, false, nil
		}

		return decimal.Zero, false, err
	}

	balance, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, err
	}

	return balance, true, nil
}

// Set stores a balance with TTL.
func (c *BalanceCache) Set(ctx context.Context, accountID string, balance decimal.Decimal, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+accountID, balance.String(), ttl).Err()
}

// Invalidate removes a cached balance.
func (c *BalanceCache) Invalidate(ctx context.Context, accountID string) error {
	return c.client.Del(ctx, c.prefix+accountID).Err()
}
