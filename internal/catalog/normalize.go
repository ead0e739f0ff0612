// Package catalog runs the catalog pipeline: fetch with fallback, normalize,
// inline images, then filter, sort and export.
package catalog

import (
	"github.com/example/catalog-flipbook/internal/domain/product"
	"github.com/example/catalog-flipbook/internal/readmodel"
)

// Normalize maps products to catalog items in input order. Records missing
// an id or price are skipped and counted; the rest of the batch is kept.
func Normalize(products []product.Product) ([]readmodel.CatalogItem, int) {
	items := make([]readmodel.CatalogItem, 0, len(products))
	skipped := 0
	for _, p := range products {
		if p.Validate() != nil {
			skipped++
			continue
		}
		items = append(items, readmodel.CatalogItem{
			ID:          *p.ID,
			Title:       p.Title,
			Description: p.Description,
			Image:       p.Image,
			Category:    p.Category,
			Price:       readmodel.NewPrice(*p.Price),
			Rating:      p.Rating.Rate,
		})
	}
	return items, skipped
}

// PlaceholderImage is shown for items without any image.
const PlaceholderImage = "https://via.placeholder.com/300x200?text=Imagen+no+disponible"

// ImageSource returns the URI a client should display for item: the inlined
// data URI when inline images are shown and one is attached, else the remote URI.
func ImageSource(item readmodel.CatalogItem, showInline bool) string {
	if showInline && item.ImageBase64 != "" {
		return item.ImageBase64
	}
	if item.Image == "" {
		return PlaceholderImage
	}
	return item.Image
}
