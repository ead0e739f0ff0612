// Package projection pairs catalog items into two-sided flipbook pages and
// tracks the page being viewed.
package projection

import (
	"context"
	"sync"

	"github.com/example/catalog-flipbook/internal/events"
	"github.com/example/catalog-flipbook/internal/readmodel"
)

// Paginate pairs items in order: items 2n and 2n+1 become page n+1's front
// and back. An odd last item gets a page without a back.
func Paginate(items []readmodel.CatalogItem) []readmodel.Page {
	pages := make([]readmodel.Page, 0, (len(items)+1)/2)
	for i := 0; i < len(items); i += 2 {
		page := readmodel.Page{ID: len(pages) + 1, Front: items[i]}
		if i+1 < len(items) {
			back := items[i+1]
			page.Back = &back
		}
		pages = append(pages, page)
	}
	return pages
}

// Book holds the pages on display and the current index.
type Book struct {
	pub events.Publisher

	mu    sync.Mutex
	pages []readmodel.Page
	index int
}

func NewBook(pub events.Publisher) *Book {
	return &Book{pub: pub}
}

// SetItems regenerates the pages from items and returns to the first page.
func (b *Book) SetItems(ctx context.Context, items []readmodel.CatalogItem) {
	pages := Paginate(items)

	b.mu.Lock()
	b.pages = pages
	b.index = 0
	total := len(pages)
	b.mu.Unlock()

	b.publish(ctx, 0, total)
}

// Next moves forward one page. It reports whether the index changed.
func (b *Book) Next(ctx context.Context) bool {
	return b.move(ctx, func(cur int) int { return cur + 1 })
}

// Previous moves back one page. It reports whether the index changed.
func (b *Book) Previous(ctx context.Context) bool {
	return b.move(ctx, func(cur int) int { return cur - 1 })
}

// GoTo jumps to page index i (0-based). Out-of-range or same-page requests
// change nothing and publish nothing.
func (b *Book) GoTo(ctx context.Context, i int) bool {
	return b.move(ctx, func(int) int { return i })
}

func (b *Book) move(ctx context.Context, target func(cur int) int) bool {
	b.mu.Lock()
	i := target(b.index)
	if i < 0 || i >= len(b.pages) || i == b.index {
		b.mu.Unlock()
		return false
	}
	b.index = i
	b.pages[i].Flipped = false
	total := len(b.pages)
	b.mu.Unlock()

	b.publish(ctx, i, total)
	return true
}

// Flip toggles the current page and returns its new state.
func (b *Book) Flip() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pages) == 0 {
		return false
	}
	b.pages[b.index].Flipped = !b.pages[b.index].Flipped
	return b.pages[b.index].Flipped
}

// ResetFlip turns the current page back to its front.
func (b *Book) ResetFlip() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pages) > 0 {
		b.pages[b.index].Flipped = false
	}
}

// Current returns the page on display.
func (b *Book) Current() (readmodel.Page, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pages) == 0 {
		return readmodel.Page{}, false
	}
	return b.pages[b.index], true
}

// Pages returns a copy of all pages.
func (b *Book) Pages() []readmodel.Page {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]readmodel.Page, len(b.pages))
	copy(out, b.pages)
	return out
}

func (b *Book) Index() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.index
}

func (b *Book) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pages)
}

// View returns a consistent snapshot for clients.
func (b *Book) View() readmodel.FlipbookView {
	b.mu.Lock()
	defer b.mu.Unlock()

	view := readmodel.FlipbookView{
		Index:   b.index,
		Total:   len(b.pages),
		HasNext: b.index+1 < len(b.pages),
		HasPrev: b.index > 0,
	}
	if len(b.pages) > 0 {
		page := b.pages[b.index]
		view.Current = &page
	}
	return view
}

// publish runs outside the lock so handlers may read the book.
func (b *Book) publish(ctx context.Context, index, total int) {
	if b.pub == nil {
		return
	}
	b.pub.Publish(ctx, events.PageChanged{
		BaseEvent: events.NewBaseEvent(),
		Index:     index,
		Total:     total,
	})
}
