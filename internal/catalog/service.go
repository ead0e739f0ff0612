package catalog

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/example/catalog-flipbook/internal/apperr"
	"github.com/example/catalog-flipbook/internal/domain/product"
	"github.com/example/catalog-flipbook/internal/events"
	"github.com/example/catalog-flipbook/internal/inline"
	"github.com/example/catalog-flipbook/internal/logger"
	"github.com/example/catalog-flipbook/internal/query"
	"github.com/example/catalog-flipbook/internal/readmodel"
)

// ExportFilename is the name of the downloadable catalog document.
const ExportFilename = "catalogo-productos.json"

// LoadFailedNotice is attached to a load result whose product list did not
// come from the network.
const LoadFailedNotice = "Error al cargar el catálogo"

// Inliner attaches data URIs to items.
type Inliner interface {
	Inline(ctx context.Context, items []readmodel.CatalogItem) ([]readmodel.CatalogItem, inline.Stats)
}

// AuthState reports whether a user is logged in. Images are only inlined
// for authenticated sessions.
type AuthState interface {
	IsAuthenticated() bool
}

// LoadResult describes one pipeline run.
type LoadResult struct {
	RunID      string                  `json:"runId"`
	Items      []readmodel.CatalogItem `json:"items"`
	Categories []string                `json:"categories"`
	Skipped    int                     `json:"skipped"`
	Origin     Origin                  `json:"origin"`
	Inlined    int                     `json:"inlined"`
	Notice     string                  `json:"notice,omitempty"`
	Superseded bool                    `json:"superseded"`
}

// Service runs the catalog pipeline and holds the items on display.
type Service struct {
	source  *Source
	inliner Inliner
	auth    AuthState
	engine  *query.Engine
	pub     events.Publisher
	log     *logger.Logger

	started atomic.Uint64

	mu         sync.RWMutex
	committed  uint64
	items      []readmodel.CatalogItem
	categories []string
	origin     Origin
}

// NewService wires the pipeline. inliner, auth and pub may be nil.
func NewService(source *Source, inliner Inliner, auth AuthState, engine *query.Engine, pub events.Publisher, log *logger.Logger) *Service {
	return &Service{
		source:  source,
		inliner: inliner,
		auth:    auth,
		engine:  engine,
		pub:     pub,
		log:     log.Component("CatalogService"),
	}
}

// Load fetches, normalizes and (for authenticated sessions) inlines the
// catalog, then commits it unless a newer run has already committed. A
// newer run that fails or is cancelled does not block older ones. A
// superseded run leaves the committed state untouched.
func (s *Service) Load(ctx context.Context) (LoadResult, error) {
	run := s.started.Add(1)
	res := LoadResult{RunID: uuid.NewString()}

	var (
		products   []product.Product
		productsAt Origin
		categories []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories, _ = s.source.Categories(gctx)
		return nil
	})
	g.Go(func() error {
		products, productsAt = s.source.Products(gctx)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return res, apperr.Network("catalog load cancelled", err)
	}

	items, skipped := Normalize(products)
	if skipped > 0 {
		s.log.Warn("skipped malformed products", "run_id", res.RunID, "skipped", skipped)
	}

	if s.inliner != nil && s.auth != nil && s.auth.IsAuthenticated() {
		var stats inline.Stats
		items, stats = s.inliner.Inline(ctx, items)
		res.Inlined = stats.Inlined()
	}

	res.Items = items
	res.Categories = categories
	res.Skipped = skipped
	res.Origin = productsAt
	if productsAt != OriginRemote {
		res.Notice = LoadFailedNotice
	}

	s.mu.Lock()
	if run < s.committed {
		s.mu.Unlock()
		res.Superseded = true
		s.log.Info("discarding superseded catalog run", "run_id", res.RunID)
		return res, nil
	}
	s.committed = run
	s.items = items
	s.categories = categories
	s.origin = productsAt
	s.mu.Unlock()

	s.log.Info("catalog loaded", "run_id", res.RunID, "count", len(items), "origin", productsAt, "inlined", res.Inlined)
	s.publishLoad(ctx, res)
	return res, nil
}

func (s *Service) publishLoad(ctx context.Context, res LoadResult) {
	if s.pub == nil {
		return
	}
	if res.Origin != OriginRemote {
		s.pub.Publish(ctx, events.CatalogLoadFailed{
			BaseEvent: events.NewBaseEvent(),
			RunID:     res.RunID,
			Origin:    string(res.Origin),
			Reason:    "product list unavailable from remote catalog",
		})
	}
	s.pub.Publish(ctx, events.CatalogLoaded{
		BaseEvent: events.NewBaseEvent(),
		RunID:     res.RunID,
		Count:     len(res.Items),
		Skipped:   res.Skipped,
		Origin:    string(res.Origin),
		Inlined:   res.Inlined,
	})
}

// Items returns a copy of the committed items.
func (s *Service) Items() []readmodel.CatalogItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]readmodel.CatalogItem, len(s.items))
	copy(out, s.items)
	return out
}

// Categories returns a copy of the committed categories.
func (s *Service) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// Origin returns where the committed product list came from.
func (s *Service) Origin() Origin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.origin
}

// DefaultPredicate is the initial filter state.
func (s *Service) DefaultPredicate() query.Predicate {
	return s.engine.DefaultPredicate()
}

// Query filters and orders the committed items.
func (s *Service) Query(p query.Predicate, o query.Order) []readmodel.CatalogItem {
	s.mu.RLock()
	items := s.items
	s.mu.RUnlock()

	return s.engine.Query(items, p, o)
}

// ByCategory fetches one category through the fallback chain. Images already
// inlined for the committed items are carried over.
func (s *Service) ByCategory(ctx context.Context, name string) ([]readmodel.CatalogItem, Origin) {
	products, origin := s.source.ProductsByCategory(ctx, name)
	items, skipped := Normalize(products)
	if skipped > 0 {
		s.log.Warn("skipped malformed products", "category", name, "skipped", skipped)
	}

	s.mu.RLock()
	inlined := make(map[int]string, len(s.items))
	for _, it := range s.items {
		if it.ImageBase64 != "" {
			inlined[it.ID] = it.ImageBase64
		}
	}
	s.mu.RUnlock()

	for i := range items {
		if uri, ok := inlined[items[i].ID]; ok {
			items[i].ImageBase64 = uri
		}
	}
	return s.engine.Query(items, query.Predicate{}, query.Order{Field: query.SortByName}), origin
}

// Export writes the filtered and ordered items as an indented JSON array.
func (s *Service) Export(w io.Writer, p query.Predicate, o query.Order) error {
	items := s.Query(p, o)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return apperr.Internal("export catalog", err)
	}
	return nil
}
