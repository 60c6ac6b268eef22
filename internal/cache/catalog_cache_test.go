package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogMock struct {
	mock.Mock
	store.CatalogStore
}

func (m *catalogMock) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *catalogMock) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *catalogMock) UpdateProduct(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func newTestCache(t *testing.T) (*CachedCatalog, *catalogMock) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	inner := &catalogMock{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCachedCatalog(inner, rdb, time.Minute, log), inner
}

func TestGetProductBySlug_SecondReadHitsRedis(t *testing.T) {
	c, inner := newTestCache(t)
	ctx := context.Background()

	product := &models.Product{ID: 7, Name: "Bronze Buddha", Slug: "bronze-buddha", Price: decimal.RequireFromString("45000"), IsActive: true}
	inner.On("GetProductBySlug", mock.Anything, "bronze-buddha").Return(product, nil).Once()

	first, err := c.GetProductBySlug(ctx, "bronze-buddha")
	require.NoError(t, err)
	second, err := c.GetProductBySlug(ctx, "bronze-buddha")
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	assert.True(t, second.Price.Equal(product.Price))
	inner.AssertNumberOfCalls(t, "GetProductBySlug", 1)
}

func TestGetProductBySlug_CachesNotFound(t *testing.T) {
	c, inner := newTestCache(t)
	ctx := context.Background()

	inner.On("GetProductBySlug", mock.Anything, "missing").Return(nil, store.ErrNotFound).Once()

	_, err := c.GetProductBySlug(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = c.GetProductBySlug(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	inner.AssertNumberOfCalls(t, "GetProductBySlug", 1)
}

func TestWriteInvalidatesCache(t *testing.T) {
	c, inner := newTestCache(t)
	ctx := context.Background()

	cats := []models.Category{{ID: 1, Name: "Thangka", Slug: "thangka"}}
	inner.On("ListCategories", mock.Anything).Return(cats, nil)
	inner.On("UpdateProduct", mock.Anything, mock.Anything).Return(nil)

	_, err := c.ListCategories(ctx)
	require.NoError(t, err)
	_, err = c.ListCategories(ctx)
	require.NoError(t, err)
	inner.AssertNumberOfCalls(t, "ListCategories", 1)

	require.NoError(t, c.UpdateProduct(ctx, &models.Product{ID: 1}))

	got, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, "thangka", got[0].Slug)
	inner.AssertNumberOfCalls(t, "ListCategories", 2)
}
