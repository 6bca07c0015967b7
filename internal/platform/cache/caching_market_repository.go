// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"crypto_dashboard/internal/feature/coins/domain/entity"
	"crypto_dashboard/internal/feature/coins/usecase"
)

// refreshKey marks a request that must bypass the cache read path.
type refreshKey struct{}

// WithRefresh returns a context whose repository reads skip the cache and go
// straight to the provider. The fresh result still overwrites the cache entry,
// so a user-triggered retry repairs a stale or poisoned entry.
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

// RefreshRequested reports whether ctx was marked by WithRefresh.
func RefreshRequested(ctx context.Context) bool {
	v, _ := ctx.Value(refreshKey{}).(bool)
	return v
}

// CachingMarketRepository decorates a MarketRepository with Redis caching for
// the list and detail queries. It implements the decorator pattern,
// transparently adding caching without modifying the underlying repository.
// Chart queries always pass through: a range change re-fetches the series
// wholesale.
type CachingMarketRepository struct {
	inner     usecase.MarketRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.MarketRepository = (*CachingMarketRepository)(nil)

// NewCachingMarketRepository decorates a MarketRepository with Redis caching.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "coins".
func NewCachingMarketRepository(rdb *redis.Client, ttl time.Duration, inner usecase.MarketRepository, namespace string) *CachingMarketRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "coins"
	}
	return &CachingMarketRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// ListCoins retrieves a market page, checking cache first then falling back
// to the provider.
func (c *CachingMarketRepository) ListCoins(ctx context.Context, page, perPage int, sort usecase.SortSpec) ([]entity.Coin, error) {
	key := c.listKey(page, perPage, sort)
	var out []entity.Coin
	err := c.readThrough(ctx, key, &out, func() (any, error) {
		coins, err := c.inner.ListCoins(ctx, page, perPage, sort)
		if err != nil {
			return nil, err
		}
		out = coins
		return coins, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetCoinDetail retrieves a coin detail, checking cache first then falling
// back to the provider.
func (c *CachingMarketRepository) GetCoinDetail(ctx context.Context, id string) (*entity.CoinDetail, error) {
	key := c.detailKey(id)
	var out *entity.CoinDetail
	err := c.readThrough(ctx, key, &out, func() (any, error) {
		d, err := c.inner.GetCoinDetail(ctx, id)
		if err != nil {
			return nil, err
		}
		out = d
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetMarketChart is a pass-through; chart series are never cached.
func (c *CachingMarketRepository) GetMarketChart(ctx context.Context, id string, days int, interval string) ([]entity.ChartPoint, error) {
	return c.inner.GetMarketChart(ctx, id, days, interval)
}

// readThrough implements the shared cache protocol:
//  1. check cache (unless Redis is absent or the context requests a refresh)
//  2. fall back to the fetch function
//  3. store the fresh result, best effort
//
// Corrupted cache entries are deleted and treated as misses.
func (c *CachingMarketRepository) readThrough(ctx context.Context, key string, out any, fetch func() (any, error)) error {
	if c.rdb == nil {
		_, err := fetch()
		return err
	}

	if !RefreshRequested(ctx) {
		if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
			if err := json.Unmarshal(b, out); err == nil {
				return nil
			}
			// Delete corrupted cache entry
			_ = c.rdb.Del(ctx, key).Err()
		}
	}

	fresh, err := fetch()
	if err != nil {
		return err
	}

	// Store in cache (best effort)
	if b, err := json.Marshal(fresh); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return nil
}

// listKey generates a cache key for one market page query.
func (c *CachingMarketRepository) listKey(page, perPage int, sort usecase.SortSpec) string {
	return fmt.Sprintf("%s:list:%d:%d:%s_%s",
		c.namespace,
		page,
		perPage,
		safe(string(sort.Key)),
		safe(string(sort.Order)),
	)
}

// detailKey generates a cache key for one coin detail query.
func (c *CachingMarketRepository) detailKey(id string) string {
	return fmt.Sprintf("%s:detail:%s", c.namespace, safe(id))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
