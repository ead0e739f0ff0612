// Package product holds the product record served by the remote catalog API.
package product

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingID    = errors.New("product id is required")
	ErrMissingPrice = errors.New("product price is required")
)

// Rating is the remote rating summary of a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a remote-sourced product record. ID and Price are pointers so a
// payload that omits them can be told apart from a zero value.
type Product struct {
	ID          *int             `json:"id"`
	Title       string           `json:"title"`
	Price       *decimal.Decimal `json:"price"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Image       string           `json:"image"`
	Rating      Rating           `json:"rating"`
}

// New builds a complete product record.
func New(id int, title string, price decimal.Decimal, description, category, image string, rating Rating) Product {
	return Product{
		ID:          &id,
		Title:       title,
		Price:       &price,
		Description: description,
		Category:    category,
		Image:       image,
		Rating:      rating,
	}
}

// Validate reports the first required field missing from the record.
func (p Product) Validate() error {
	if p.ID == nil {
		return ErrMissingID
	}
	if p.Price == nil {
		return ErrMissingPrice
	}
	return nil
}

// FilterByCategory returns the products whose category equals category exactly.
func FilterByCategory(products []Product, category string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
