package catalog

import (
	"context"

	"github.com/example/catalog-flipbook/internal/domain/category"
	"github.com/example/catalog-flipbook/internal/domain/product"
	"github.com/example/catalog-flipbook/internal/infrastructure/store"
	"github.com/example/catalog-flipbook/internal/logger"
)

// Origin tells where a source result came from.
type Origin string

const (
	OriginRemote  Origin = "remote"
	OriginCache   Origin = "cache"
	OriginBuiltin Origin = "builtin"
)

// Remote is the unreliable catalog API.
type Remote interface {
	Products(ctx context.Context) ([]product.Product, error)
	Categories(ctx context.Context) ([]string, error)
	ProductsByCategory(ctx context.Context, category string) ([]product.Product, error)
}

// Source wraps Remote so a failed request yields the last list stored
// locally, or the built-in list when nothing was stored. It never fails.
type Source struct {
	remote Remote
	store  store.Store
	log    *logger.Logger
}

func NewSource(remote Remote, s store.Store, log *logger.Logger) *Source {
	return &Source{remote: remote, store: s, log: log.Component("CatalogSource")}
}

// Products returns the product list and its origin.
func (s *Source) Products(ctx context.Context) ([]product.Product, Origin) {
	products, err := s.remote.Products(ctx)
	if err == nil {
		s.save(ctx, store.KeyCatalogItems, products)
		return products, OriginRemote
	}
	s.log.FetchFailed("products", err)

	var cached []product.Product
	if s.load(ctx, store.KeyCatalogItems, &cached) && len(cached) > 0 {
		s.log.FallbackUsed("products", string(OriginCache))
		return cached, OriginCache
	}

	s.log.FallbackUsed("products", string(OriginBuiltin))
	return product.Fallback(), OriginBuiltin
}

// Categories returns the category list and its origin.
func (s *Source) Categories(ctx context.Context) ([]string, Origin) {
	categories, err := s.remote.Categories(ctx)
	if err == nil {
		s.save(ctx, store.KeyCatalogCategories, categories)
		return categories, OriginRemote
	}
	s.log.FetchFailed("categories", err)

	var cached []string
	if s.load(ctx, store.KeyCatalogCategories, &cached) && len(cached) > 0 {
		s.log.FallbackUsed("categories", string(OriginCache))
		return cached, OriginCache
	}

	s.log.FallbackUsed("categories", string(OriginBuiltin))
	return category.Fallback(), OriginBuiltin
}

// ProductsByCategory returns the products of one category. On failure the
// full product list, with its own fallback chain, is filtered locally.
func (s *Source) ProductsByCategory(ctx context.Context, name string) ([]product.Product, Origin) {
	products, err := s.remote.ProductsByCategory(ctx, name)
	if err == nil {
		return products, OriginRemote
	}
	s.log.FetchFailed("products/category/"+name, err)

	all, origin := s.Products(ctx)
	return product.FilterByCategory(all, name), origin
}

func (s *Source) save(ctx context.Context, key string, value any) {
	if err := store.SetJSON(ctx, s.store, key, value, 0); err != nil {
		s.log.Warn("local store write failed", "key", key, "error", err)
	}
}

func (s *Source) load(ctx context.Context, key string, dst any) bool {
	found, err := store.GetJSON(ctx, s.store, key, dst)
	if err != nil {
		s.log.Warn("local store read failed", "key", key, "error", err)
		return false
	}
	return found
}
