// Package category holds the catalog category list.
package category

import (
	"sort"

	"github.com/example/catalog-flipbook/internal/domain/product"
)

// Fallback returns the built-in category list.
func Fallback() []string {
	return []string{"electronics", "jewelery", "men's clothing", "women's clothing"}
}

// FromProducts returns the distinct categories of products, sorted.
func FromProducts(products []product.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
