// Package cache holds the inlined-image cache shared across pipeline runs.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/example/catalog-flipbook/internal/infrastructure/store"
	"github.com/example/catalog-flipbook/internal/logger"
)

// ImageCache maps product ids to image data URIs. Entries expire after ttl and
// at most maxEntries ids are kept; the oldest insertion is evicted first.
type ImageCache struct {
	store      store.Store
	ttl        time.Duration
	maxEntries int
	log        *logger.Logger

	mu    sync.Mutex
	order []int
	known map[int]struct{}
}

// NewImageCache creates a cache over s. maxEntries <= 0 disables the bound.
func NewImageCache(s store.Store, ttl time.Duration, maxEntries int, log *logger.Logger) *ImageCache {
	return &ImageCache{
		store:      s,
		ttl:        ttl,
		maxEntries: maxEntries,
		log:        log.Component("ImageCache"),
		known:      make(map[int]struct{}),
	}
}

// Get returns the cached data URI for id. Store failures count as a miss.
func (c *ImageCache) Get(ctx context.Context, id int) (string, bool) {
	raw, found, err := c.store.Get(ctx, store.ImageKey(id))
	if err != nil {
		c.log.Warn("image cache read failed", "id", id, "error", err)
		return "", false
	}
	if !found || len(raw) == 0 {
		c.forget(id)
		return "", false
	}

	c.mu.Lock()
	c.track(ctx, id)
	c.mu.Unlock()
	return string(raw), true
}

// Put stores dataURI for id, evicting the oldest ids beyond the capacity.
func (c *ImageCache) Put(ctx context.Context, id int, dataURI string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Set(ctx, store.ImageKey(id), []byte(dataURI), c.ttl); err != nil {
		c.log.Warn("image cache write failed", "id", id, "error", err)
		return
	}
	c.track(ctx, id)
}

// Len returns the number of tracked ids.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// track records id as present and enforces the capacity. Caller holds mu.
func (c *ImageCache) track(ctx context.Context, id int) {
	if _, ok := c.known[id]; ok {
		return
	}
	c.known[id] = struct{}{}
	c.order = append(c.order, id)

	for c.maxEntries > 0 && len(c.order) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.known, oldest)
		if err := c.store.Delete(ctx, store.ImageKey(oldest)); err != nil {
			c.log.Warn("image cache eviction failed", "id", oldest, "error", err)
		}
	}
}

func (c *ImageCache) forget(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.known[id]; !ok {
		return
	}
	delete(c.known, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
