// Package query filters and orders catalog items.
package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/example/catalog-flipbook/internal/readmodel"
)

// Sort fields.
const (
	SortByName   = "name"
	SortByPrice  = "price"
	SortByRating = "rating"
)

// Directions. An empty direction uses the field's natural order: ascending
// for name and price, descending for rating.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Predicate selects items. Zero fields are inactive.
type Predicate struct {
	Search   string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Order selects the sort field and direction.
type Order struct {
	Field     string
	Direction string
}

// Engine applies predicates and orderings. It is safe for concurrent use.
type Engine struct {
	ceiling decimal.Decimal
	lang    language.Tag
}

// NewEngine creates an engine whose price bounds are clamped to [0, ceiling]
// and whose name ordering follows locale. A zero ceiling disables the upper clamp.
func NewEngine(ceiling decimal.Decimal, locale string) *Engine {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Engine{ceiling: ceiling, lang: tag}
}

// DefaultPredicate is the initial filter state: everything between 0 and the ceiling.
func (e *Engine) DefaultPredicate() Predicate {
	lo := decimal.Zero
	p := Predicate{MinPrice: &lo}
	if e.ceiling.IsPositive() {
		hi := e.ceiling
		p.MaxPrice = &hi
	}
	return p
}

// Query returns the items matching p, ordered by o. items is not modified.
func (e *Engine) Query(items []readmodel.CatalogItem, p Predicate, o Order) []readmodel.CatalogItem {
	match := e.matcher(p)

	out := make([]readmodel.CatalogItem, 0, len(items))
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}

	slices.SortStableFunc(out, e.comparator(o))
	return out
}

func (e *Engine) matcher(p Predicate) func(readmodel.CatalogItem) bool {
	term := strings.ToLower(strings.TrimSpace(p.Search))
	lo := e.clamp(p.MinPrice)
	hi := e.clamp(p.MaxPrice)

	return func(item readmodel.CatalogItem) bool {
		if term != "" &&
			!strings.Contains(strings.ToLower(item.Title), term) &&
			!strings.Contains(strings.ToLower(item.Description), term) &&
			!strings.Contains(strings.ToLower(item.Category), term) {
			return false
		}
		if p.Category != "" && item.Category != p.Category {
			return false
		}
		if lo != nil && item.Price.LessThan(*lo) {
			return false
		}
		if hi != nil && item.Price.GreaterThan(*hi) {
			return false
		}
		return true
	}
}

// clamp bounds a user price to [0, ceiling].
func (e *Engine) clamp(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	c := *v
	if c.IsNegative() {
		c = decimal.Zero
	}
	if e.ceiling.IsPositive() && c.GreaterThan(e.ceiling) {
		c = e.ceiling
	}
	return &c
}

func (e *Engine) comparator(o Order) func(a, b readmodel.CatalogItem) int {
	var (
		base       func(a, b readmodel.CatalogItem) int
		descending bool
	)

	switch o.Field {
	case SortByPrice:
		base = func(a, b readmodel.CatalogItem) int { return a.Price.Cmp(b.Price.Decimal) }
	case SortByRating:
		base = func(a, b readmodel.CatalogItem) int { return cmp.Compare(a.Rating, b.Rating) }
		descending = true
	default:
		if o.Field != SortByName {
			// Unknown keys sort by name ascending whatever the direction.
			o.Direction = Asc
		}
		// collate.Collator keeps scratch buffers, so each query gets its own.
		coll := collate.New(e.lang)
		base = func(a, b readmodel.CatalogItem) int { return coll.CompareString(a.Title, b.Title) }
	}

	switch o.Direction {
	case Asc:
		descending = false
	case Desc:
		descending = true
	}

	if descending {
		return func(a, b readmodel.CatalogItem) int { return base(b, a) }
	}
	return base
}

// NormalizeOrder maps unknown fields to name ascending and unknown directions
// to the field's natural one.
func NormalizeOrder(o Order) Order {
	switch o.Field {
	case SortByName, SortByPrice, SortByRating:
	default:
		return Order{Field: SortByName, Direction: Asc}
	}
	if o.Direction != Asc && o.Direction != Desc {
		o.Direction = ""
	}
	return o
}
