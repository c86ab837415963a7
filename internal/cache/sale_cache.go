package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pricing/internal/models"
)

const activeSalesKey = "pricing:sales:active"

// SaleCache keeps the storefront's active-sales list in Redis. Redis errors
// are logged and reported as misses; the database stays authoritative.
type SaleCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewSaleCache creates a new SaleCache.
func NewSaleCache(redis *RedisClient, ttl time.Duration) *SaleCache {
	return &SaleCache{redis: redis, ttl: ttl}
}

// Get returns the cached list and whether it was present.
func (c *SaleCache) Get(ctx context.Context) ([]models.Sale, bool) {
	raw, err := c.redis.Get(ctx, activeSalesKey)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.Warn().Err(err).Str("key", activeSalesKey).Msg("Active sales cache read failed")
		}
		return nil, false
	}

	var sales []models.Sale
	if err := json.Unmarshal([]byte(raw), &sales); err != nil {
		log.Warn().Err(err).Str("key", activeSalesKey).Msg("Active sales cache entry is corrupt")
		return nil, false
	}
	return sales, true
}

// Set stores the list with the configured TTL.
func (c *SaleCache) Set(ctx context.Context, sales []models.Sale) {
	data, err := json.Marshal(sales)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal active sales")
		return
	}
	if err := c.redis.Set(ctx, activeSalesKey, string(data), c.ttl); err != nil {
		log.Warn().Err(err).Str("key", activeSalesKey).Msg("Active sales cache write failed")
	}
}

// Invalidate drops the cached list.
func (c *SaleCache) Invalidate(ctx context.Context) {
	if err := c.redis.Delete(ctx, activeSalesKey); err != nil {
		log.Warn().Err(err).Str("key", activeSalesKey).Msg("Active sales cache invalidation failed")
	}
}

// NoopSaleCache is used when Redis is not configured.
type NoopSaleCache struct{}

func (NoopSaleCache) Get(context.Context) ([]models.Sale, bool) { return nil, false }
func (NoopSaleCache) Set(context.Context, []models.Sale)        {}
func (NoopSaleCache) Invalidate(context.Context)                {}
