// Package inline converts remote product images into base64 data URIs.
package inline

import (
	"context"
	"encoding/base64"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/example/catalog-flipbook/internal/logger"
	"github.com/example/catalog-flipbook/internal/readmodel"
)

// Fetcher downloads an image and reports its content type.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// Cache stores data URIs by product id across runs.
type Cache interface {
	Get(ctx context.Context, id int) (string, bool)
	Put(ctx context.Context, id int, dataURI string)
}

// Stats summarizes one Inline call.
type Stats struct {
	Cached  int `json:"cached"`
	Fetched int `json:"fetched"`
	Failed  int `json:"failed"`
}

// Inlined is the number of items that ended up with a data URI.
func (s Stats) Inlined() int { return s.Cached + s.Fetched }

type Inliner struct {
	fetcher Fetcher
	cache   Cache
	limit   int
	log     *logger.Logger
}

// NewInliner creates an inliner running at most limit fetches at once.
func NewInliner(fetcher Fetcher, cache Cache, limit int, log *logger.Logger) *Inliner {
	if limit <= 0 {
		limit = 1
	}
	return &Inliner{fetcher: fetcher, cache: cache, limit: limit, log: log.Component("ImageInliner")}
}

// Inline returns a copy of items with ImageBase64 attached where possible.
// Every item is returned, in input order; an item whose image could not be
// converted keeps only its remote URI.
func (in *Inliner) Inline(ctx context.Context, items []readmodel.CatalogItem) ([]readmodel.CatalogItem, Stats) {
	out := make([]readmodel.CatalogItem, len(items))
	copy(out, items)

	var cached, fetched, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(in.limit)

	for i := range out {
		item := &out[i]

		if uri, ok := in.cache.Get(ctx, item.ID); ok {
			item.ImageBase64 = uri
			cached.Add(1)
			continue
		}
		if item.Image == "" {
			failed.Add(1)
			continue
		}

		g.Go(func() error {
			data, contentType, err := in.fetcher.Fetch(ctx, item.Image)
			if err != nil {
				in.log.Warn("image conversion failed", "id", item.ID, "url", item.Image, "error", err)
				failed.Add(1)
				return nil
			}

			uri := DataURI(contentType, data)
			item.ImageBase64 = uri
			in.cache.Put(ctx, item.ID, uri)
			fetched.Add(1)
			return nil
		})
	}

	_ = g.Wait()

	stats := Stats{Cached: int(cached.Load()), Fetched: int(fetched.Load()), Failed: int(failed.Load())}
	in.log.Debug("images inlined", "cached", stats.Cached, "fetched", stats.Fetched, "failed", stats.Failed)
	return out, stats
}

// DataURI encodes data as a base64 data URI.
func DataURI(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
