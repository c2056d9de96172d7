// Package cache holds the Redis-backed product view cache. Cached views are
// a display optimization only; checkout always reads the catalog through
// the transaction, so a stale view can never corrupt an order.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-redis/redis/v8"

	"github.com/lehoangvu/techstore/internal/domain/order"
)

var _ order.Invalidator = (*ProductCache)(nil)

// ProductCache stores rendered product views keyed by product ID and drops
// them when the orchestrator mutates stock or sold counters.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProductCache wraps the given Redis client.
func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// GetView returns the cached view payload for a product, or ok=false on a
// miss or any Redis error. Callers fall back to the catalog either way.
func (c *ProductCache) GetView(ctx context.Context, id int64) ([]byte, bool) {
	payload, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

// SetView stores a rendered view payload with the configured TTL.
func (c *ProductCache) SetView(ctx context.Context, id int64, payload []byte) error {
	if err := c.rdb.Set(ctx, productKey(id), payload, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "set product view")
	}
	return nil
}

// InvalidateProduct drops the cached view for one product.
func (c *ProductCache) InvalidateProduct(ctx context.Context, id int64) error {
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		return errors.Wrap(err, "delete product view")
	}
	return nil
}

// NopInvalidator satisfies the orchestrator when Redis is not configured.
type NopInvalidator struct{}

var _ order.Invalidator = NopInvalidator{}

func (NopInvalidator) InvalidateProduct(context.Context, int64) error { return nil }
