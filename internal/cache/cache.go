package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kart_back_end/internal/models"
)

const (
	ProductCacheTTL = 10 * time.Minute
	allProductsKey  = "products:all"
)

// ProductSource is the authoritative catalog behind the cache.
type ProductSource interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
}

// ProductCache is a Redis read-through cache in front of the catalog. Redis
// failures degrade to reading the source; they never fail the request.
type ProductCache struct {
	rdb    *redis.Client
	source ProductSource
	ttl    time.Duration
	log    *zap.Logger
}

func NewProductCache(rdb *redis.Client, source ProductSource, ttl time.Duration, log *zap.Logger) *ProductCache {
	if ttl <= 0 {
		ttl = ProductCacheTTL
	}
	return &ProductCache{rdb: rdb, source: source, ttl: ttl, log: log}
}

func productKey(id string) string {
	return "product:" + id
}

func (c *ProductCache) FindByID(ctx context.Context, id string) (*models.Product, error) {
	// 1. Redis
	if data, err := c.rdb.Get(ctx, productKey(id)).Bytes(); err == nil {
		var p models.Product
		if json.Unmarshal(data, &p) == nil {
			return &p, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("product cache read failed", zap.String("product_id", id), zap.Error(err))
	}

	// 2. Scylla
	p, err := c.source.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. Fill
	c.set(ctx, productKey(id), p)
	return p, nil
}

func (c *ProductCache) List(ctx context.Context) ([]models.Product, error) {
	if data, err := c.rdb.Get(ctx, allProductsKey).Bytes(); err == nil {
		var products []models.Product
		if json.Unmarshal(data, &products) == nil {
			return products, nil
		}
	}

	products, err := c.source.List(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, allProductsKey, products)
	return products, nil
}

// Invalidate drops one product and the cached listing.
func (c *ProductCache) Invalidate(ctx context.Context, id string) {
	c.rdb.Del(ctx, productKey(id), allProductsKey)
}

func (c *ProductCache) set(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
	}
}
