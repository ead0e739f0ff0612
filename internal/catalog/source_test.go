package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/example/catalog-flipbook/internal/domain/category"
	"github.com/example/catalog-flipbook/internal/domain/product"
	"github.com/example/catalog-flipbook/internal/infrastructure/store"
	"github.com/example/catalog-flipbook/internal/infrastructure/store/mocks"
	"github.com/example/catalog-flipbook/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnreachable = errors.New("dial tcp: connection refused")

// fakeRemote is a scriptable Remote.
type fakeRemote struct {
	products    []product.Product
	categories  []string
	byCategory  map[string][]product.Product
	err         error
	categoryErr error

	productCalls int
}

func (f *fakeRemote) Products(context.Context) ([]product.Product, error) {
	f.productCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeRemote) Categories(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func (f *fakeRemote) ProductsByCategory(_ context.Context, name string) ([]product.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.categoryErr != nil {
		return nil, f.categoryErr
	}
	return f.byCategory[name], nil
}

func remoteProducts() []product.Product {
	return []product.Product{
		product.New(10, "Backpack", decimal.RequireFromString("109.95"), "", "men's clothing", "https://x/10.jpg", product.Rating{Rate: 3.9}),
		product.New(11, "Ring", decimal.RequireFromString("9.99"), "", "jewelery", "https://x/11.jpg", product.Rating{Rate: 4.1}),
	}
}

// =============================================================================
// Products
// =============================================================================

func TestSource_Products_RemoteSavesLastKnownGood(t *testing.T) {
	s := mocks.NewMockStore()
	src := NewSource(&fakeRemote{products: remoteProducts()}, s, logger.Nop())

	products, origin := src.Products(context.Background())

	assert.Equal(t, OriginRemote, origin)
	assert.Len(t, products, 2)
	require.Len(t, s.SetCalls, 1)
	assert.Equal(t, store.KeyCatalogItems, s.SetCalls[0].Key)
}

func TestSource_Products_FallsBackToCache(t *testing.T) {
	s := mocks.NewMockStore()
	remote := &fakeRemote{products: remoteProducts()}
	src := NewSource(remote, s, logger.Nop())
	src.Products(context.Background())

	remote.err = errUnreachable
	products, origin := src.Products(context.Background())

	assert.Equal(t, OriginCache, origin)
	require.Len(t, products, 2)
	assert.Equal(t, 10, *products[0].ID)
}

func TestSource_Products_FallsBackToBuiltin(t *testing.T) {
	src := NewSource(&fakeRemote{err: errUnreachable}, mocks.NewMockStore(), logger.Nop())

	products, origin := src.Products(context.Background())

	assert.Equal(t, OriginBuiltin, origin)
	assert.NotEmpty(t, products)
	assert.Equal(t, product.Fallback(), products)
}

func TestSource_Products_StoreFailuresAreTolerated(t *testing.T) {
	s := mocks.NewMockStore()
	s.SetErr = errors.New("quota exceeded")
	s.GetErr = errors.New("quota exceeded")
	remote := &fakeRemote{products: remoteProducts()}
	src := NewSource(remote, s, logger.Nop())

	_, origin := src.Products(context.Background())
	assert.Equal(t, OriginRemote, origin)

	remote.err = errUnreachable
	_, origin = src.Products(context.Background())
	assert.Equal(t, OriginBuiltin, origin)
}

func TestSource_Products_CorruptCacheUsesBuiltin(t *testing.T) {
	s := mocks.NewMockStore()
	s.Seed(store.KeyCatalogItems, []byte("[{"))
	src := NewSource(&fakeRemote{err: errUnreachable}, s, logger.Nop())

	_, origin := src.Products(context.Background())
	assert.Equal(t, OriginBuiltin, origin)
}

// =============================================================================
// Categories
// =============================================================================

func TestSource_Categories(t *testing.T) {
	s := mocks.NewMockStore()
	remote := &fakeRemote{categories: []string{"a", "b"}}
	src := NewSource(remote, s, logger.Nop())

	categories, origin := src.Categories(context.Background())
	assert.Equal(t, OriginRemote, origin)
	assert.Equal(t, []string{"a", "b"}, categories)

	remote.err = errUnreachable
	categories, origin = src.Categories(context.Background())
	assert.Equal(t, OriginCache, origin)
	assert.Equal(t, []string{"a", "b"}, categories)

	src = NewSource(remote, mocks.NewMockStore(), logger.Nop())
	categories, origin = src.Categories(context.Background())
	assert.Equal(t, OriginBuiltin, origin)
	assert.Equal(t, category.Fallback(), categories)
}

// =============================================================================
// ProductsByCategory
// =============================================================================

func TestSource_ProductsByCategory_Remote(t *testing.T) {
	remote := &fakeRemote{byCategory: map[string][]product.Product{"jewelery": remoteProducts()[1:]}}
	s := mocks.NewMockStore()
	src := NewSource(remote, s, logger.Nop())

	products, origin := src.ProductsByCategory(context.Background(), "jewelery")

	assert.Equal(t, OriginRemote, origin)
	require.Len(t, products, 1)
	assert.Empty(t, s.SetCalls)
}

func TestSource_ProductsByCategory_FiltersFallback(t *testing.T) {
	src := NewSource(&fakeRemote{err: errUnreachable}, mocks.NewMockStore(), logger.Nop())

	products, origin := src.ProductsByCategory(context.Background(), "electronics")

	assert.Equal(t, OriginBuiltin, origin)
	assert.Len(t, products, 4)
}

func TestSource_ProductsByCategory_FiltersFullListWhenOnlyCategoryFails(t *testing.T) {
	remote := &fakeRemote{products: remoteProducts(), categoryErr: errUnreachable}
	src := NewSource(remote, mocks.NewMockStore(), logger.Nop())

	products, origin := src.ProductsByCategory(context.Background(), "jewelery")

	assert.Equal(t, OriginRemote, origin)
	require.Len(t, products, 1)
	assert.Equal(t, 11, *products[0].ID)
	assert.Equal(t, 1, remote.productCalls)
}
