// Package app assembles the catalog service from configuration and wires the
// reactions between its parts through the event bus.
package app

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/example/catalog-flipbook/internal/api"
	"github.com/example/catalog-flipbook/internal/cache"
	"github.com/example/catalog-flipbook/internal/catalog"
	"github.com/example/catalog-flipbook/internal/config"
	"github.com/example/catalog-flipbook/internal/events"
	"github.com/example/catalog-flipbook/internal/infrastructure/fakestore"
	"github.com/example/catalog-flipbook/internal/infrastructure/kafka"
	"github.com/example/catalog-flipbook/internal/infrastructure/store"
	"github.com/example/catalog-flipbook/internal/inline"
	"github.com/example/catalog-flipbook/internal/logger"
	"github.com/example/catalog-flipbook/internal/projection"
	"github.com/example/catalog-flipbook/internal/query"
	"github.com/example/catalog-flipbook/internal/session"
)

// Remote is the catalog API including its login endpoint.
type Remote interface {
	catalog.Remote
	session.Authenticator
}

// Deps are the external collaborators. Nil fields are built from config.
type Deps struct {
	Remote   Remote
	Fetcher  inline.Fetcher
	Store    store.Store
	Producer *kafka.Producer
}

// App is a fully wired service.
type App struct {
	Catalog *catalog.Service
	Book    *projection.Book
	Session *session.Session
	Bus     *events.InMemoryBus
	Handler http.Handler

	log     *logger.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	closers []func() error

	mu      sync.Mutex
	closed  bool
	reloads sync.WaitGroup
}

// New opens the configured store and Kafka producer, then assembles the app.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	st, closeStore, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	deps := Deps{Store: st}
	if cfg.IsKafkaEnabled() {
		deps.Producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info("forwarding events to Kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	a := Assemble(cfg, log, deps)
	a.closers = append(a.closers, closeStore)
	return a, nil
}

// Assemble builds the app from deps, filling in defaults from cfg.
func Assemble(cfg *config.Config, log *logger.Logger, deps Deps) *App {
	if deps.Store == nil {
		deps.Store = store.NewMemoryStore()
	}
	if deps.Remote == nil {
		deps.Remote = fakestore.NewFromConfig(cfg)
	}
	if deps.Fetcher == nil {
		deps.Fetcher = inline.NewHTTPFetcher(cfg.CatalogTimeout)
	}

	bus := events.NewInMemoryBus(log)
	imageCache := cache.NewImageCache(deps.Store, cfg.ImageCacheTTL, cfg.ImageCacheMaxEntries, log)
	inliner := inline.NewInliner(deps.Fetcher, imageCache, cfg.ImageConcurrency, log)
	sess := session.New(deps.Remote, cfg, deps.Store, bus, log)
	engine := query.NewEngine(cfg.PriceCeiling, cfg.CatalogLocale)
	svc := catalog.NewService(catalog.NewSource(deps.Remote, deps.Store, log), inliner, sess, engine, bus, log)
	book := projection.NewBook(bus)

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Catalog: svc,
		Book:    book,
		Session: sess,
		Bus:     bus,
		log:     log.Component("App"),
		ctx:     ctx,
		cancel:  cancel,
	}

	// Every committed run regenerates the pages.
	bus.Subscribe(events.EventCatalogLoaded, events.HandlerFunc(func(ctx context.Context, _ events.Event) error {
		book.SetItems(ctx, svc.Items())
		return nil
	}))

	// Inlining depends on the session, so login and logout reload the catalog.
	bus.Subscribe(events.EventSessionChanged, events.HandlerFunc(func(context.Context, events.Event) error {
		a.reload()
		return nil
	}))

	bus.Subscribe(events.All, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		a.log.Debug("event", "name", e.EventName())
		return nil
	}))

	if deps.Producer != nil {
		bus.Subscribe(events.All, kafka.NewSink(deps.Producer))
		a.closers = append(a.closers, deps.Producer.Close)
	}

	a.Handler = api.NewRouter(api.NewHandlers(svc, book, sess, log), log)
	return a
}

// Start restores a stored session and runs the first catalog load.
func (a *App) Start(ctx context.Context) (catalog.LoadResult, error) {
	if a.Session.Restore(ctx) {
		a.log.Info("restored stored session")
	}
	return a.Catalog.Load(ctx)
}

// reload runs a pipeline load in the background. A newer run supersedes it.
func (a *App) reload() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.reloads.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.reloads.Done()
		if _, err := a.Catalog.Load(a.ctx); err != nil && a.ctx.Err() == nil {
			a.log.Warn("background reload failed", "error", err)
		}
	}()
}

// WaitReloads blocks until background reloads have finished.
func (a *App) WaitReloads() {
	a.reloads.Wait()
}

// Close cancels background reloads and releases the store and producer.
func (a *App) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.cancel()
	a.reloads.Wait()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
