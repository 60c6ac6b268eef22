// Package cache puts a Redis read-through layer in front of catalog reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/store"
	"github.com/redis/go-redis/v9"
)

const (
	generationKey = "catalog:gen"
	notFoundValue = "notfound"
	notFoundTTL   = time.Minute
)

// CachedCatalog caches category and product-detail reads. Every write bumps a
// generation counter that is part of each key, so stale entries are never
// read again and simply expire.
type CachedCatalog struct {
	store.CatalogStore
	redis *redis.Client
	ttl   time.Duration
	log   *slog.Logger
}

func NewCachedCatalog(inner store.CatalogStore, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *CachedCatalog {
	return &CachedCatalog{
		CatalogStore: inner,
		redis:        rdb,
		ttl:          ttl,
		log:          log.With("component", "catalog_cache"),
	}
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func (c *CachedCatalog) generation(ctx context.Context) int64 {
	gen, err := c.redis.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn("redis error reading generation", "error", err)
	}
	return gen
}

func (c *CachedCatalog) key(ctx context.Context, parts string) string {
	return fmt.Sprintf("catalog:%d:%s", c.generation(ctx), parts)
}

// Invalidate drops every cached catalog entry.
func (c *CachedCatalog) Invalidate(ctx context.Context) {
	if err := c.redis.Incr(ctx, generationKey).Err(); err != nil {
		c.log.Error("failed to invalidate catalog cache", "error", err)
	}
}

// lookup reads key into dest. It reports whether the value was a hit and
// whether it was a cached miss.
func (c *CachedCatalog) lookup(ctx context.Context, key string, dest any) (hit, notFound bool) {
	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundValue {
			return true, true
		}
		if err := json.Unmarshal(data, dest); err != nil {
			c.log.Warn("failed to unmarshal cached value (continuing with DB)", "key", key, "error", err)
			return false, false
		}
		return true, false
	case errors.Is(err, redis.Nil):
		return false, false
	default:
		c.log.Warn("redis error (continuing with DB)", "key", key, "error", err)
		return false, false
	}
}

func (c *CachedCatalog) remember(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("failed to marshal value for cache", "key", key, "error", err)
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("failed to cache value", "key", key, "error", err)
	}
}

// --- Cached reads ---

func (c *CachedCatalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	key := c.key(ctx, "categories")

	var cats []models.Category
	if hit, _ := c.lookup(ctx, key, &cats); hit {
		return cats, nil
	}

	cats, err := c.CatalogStore.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	c.remember(ctx, key, cats)
	return cats, nil
}

func (c *CachedCatalog) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	key := c.key(ctx, "product:"+slug)

	var p models.Product
	hit, notFound := c.lookup(ctx, key, &p)
	if notFound {
		return nil, store.ErrNotFound
	}
	if hit {
		return &p, nil
	}

	product, err := c.CatalogStore.GetProductBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		if setErr := c.redis.Set(ctx, key, notFoundValue, notFoundTTL).Err(); setErr != nil {
			c.log.Warn("failed to cache notfound", "key", key, "error", setErr)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	c.remember(ctx, key, product)
	return product, nil
}

// --- Writes invalidate ---

func (c *CachedCatalog) afterWrite(ctx context.Context, err error) error {
	if err == nil {
		c.Invalidate(ctx)
	}
	return err
}

func (c *CachedCatalog) CreateCategory(ctx context.Context, cat *models.Category) error {
	return c.afterWrite(ctx, c.CatalogStore.CreateCategory(ctx, cat))
}

func (c *CachedCatalog) UpdateCategory(ctx context.Context, cat *models.Category) error {
	return c.afterWrite(ctx, c.CatalogStore.UpdateCategory(ctx, cat))
}

func (c *CachedCatalog) DeleteCategory(ctx context.Context, id int64) error {
	return c.afterWrite(ctx, c.CatalogStore.DeleteCategory(ctx, id))
}

func (c *CachedCatalog) CreateProduct(ctx context.Context, p *models.Product) error {
	return c.afterWrite(ctx, c.CatalogStore.CreateProduct(ctx, p))
}

func (c *CachedCatalog) UpdateProduct(ctx context.Context, p *models.Product) error {
	return c.afterWrite(ctx, c.CatalogStore.UpdateProduct(ctx, p))
}

func (c *CachedCatalog) DeleteProduct(ctx context.Context, id int64) error {
	return c.afterWrite(ctx, c.CatalogStore.DeleteProduct(ctx, id))
}

func (c *CachedCatalog) SaveProductBundle(ctx context.Context, p *models.Product, images []models.ProductImage, variants []models.ProductVariant) error {
	return c.afterWrite(ctx, c.CatalogStore.SaveProductBundle(ctx, p, images, variants))
}

func (c *CachedCatalog) AddProductImage(ctx context.Context, img *models.ProductImage) error {
	return c.afterWrite(ctx, c.CatalogStore.AddProductImage(ctx, img))
}

func (c *CachedCatalog) UpdateProductImage(ctx context.Context, img *models.ProductImage) error {
	return c.afterWrite(ctx, c.CatalogStore.UpdateProductImage(ctx, img))
}

func (c *CachedCatalog) DeleteProductImage(ctx context.Context, productID, imageID int64) error {
	return c.afterWrite(ctx, c.CatalogStore.DeleteProductImage(ctx, productID, imageID))
}

func (c *CachedCatalog) CreateVariant(ctx context.Context, v *models.ProductVariant) error {
	return c.afterWrite(ctx, c.CatalogStore.CreateVariant(ctx, v))
}

func (c *CachedCatalog) UpdateVariant(ctx context.Context, v *models.ProductVariant) error {
	return c.afterWrite(ctx, c.CatalogStore.UpdateVariant(ctx, v))
}

func (c *CachedCatalog) DeleteVariant(ctx context.Context, productID, variantID int64) error {
	return c.afterWrite(ctx, c.CatalogStore.DeleteVariant(ctx, productID, variantID))
}
