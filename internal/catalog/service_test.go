package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/example/catalog-flipbook/internal/domain/product"
	"github.com/example/catalog-flipbook/internal/events"
	"github.com/example/catalog-flipbook/internal/infrastructure/store/mocks"
	"github.com/example/catalog-flipbook/internal/inline"
	"github.com/example/catalog-flipbook/internal/logger"
	"github.com/example/catalog-flipbook/internal/query"
	"github.com/example/catalog-flipbook/internal/readmodel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth bool

func (a stubAuth) IsAuthenticated() bool { return bool(a) }

type stubInliner struct {
	calls int
}

func (s *stubInliner) Inline(_ context.Context, items []readmodel.CatalogItem) ([]readmodel.CatalogItem, inline.Stats) {
	s.calls++
	out := make([]readmodel.CatalogItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].ImageBase64 = "data:image/png;base64,eA=="
	}
	return out, inline.Stats{Fetched: len(out)}
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, e)
}

func (r *recordingPublisher) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.published))
	for i, e := range r.published {
		out[i] = e.EventName()
	}
	return out
}

func newTestService(remote Remote, auth AuthState) (*Service, *stubInliner, *recordingPublisher) {
	inl := &stubInliner{}
	pub := &recordingPublisher{}
	src := NewSource(remote, mocks.NewMockStore(), logger.Nop())
	engine := query.NewEngine(decimal.NewFromInt(2000), "es")
	return NewService(src, inl, auth, engine, pub, logger.Nop()), inl, pub
}

// =============================================================================
// Load Tests
// =============================================================================

func TestService_Load_Remote(t *testing.T) {
	malformed := product.Product{Title: "no id"}
	remote := &fakeRemote{
		products:   append(remoteProducts(), malformed),
		categories: []string{"jewelery", "men's clothing"},
	}
	svc, inl, pub := newTestService(remote, stubAuth(false))

	res, err := svc.Load(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, OriginRemote, res.Origin)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, res.Items, 2)
	assert.Empty(t, res.Notice)
	assert.False(t, res.Superseded)
	assert.Equal(t, 0, inl.calls)
	assert.Equal(t, []string{"jewelery", "men's clothing"}, svc.Categories())
	assert.Len(t, svc.Items(), 2)
	assert.Equal(t, []string{events.EventCatalogLoaded}, pub.names())
}

func TestService_Load_InlinesForAuthenticatedSessions(t *testing.T) {
	svc, inl, _ := newTestService(&fakeRemote{products: remoteProducts()}, stubAuth(true))

	res, err := svc.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, inl.calls)
	assert.Equal(t, 2, res.Inlined)
	for _, it := range svc.Items() {
		assert.NotEmpty(t, it.ImageBase64)
	}
}

func TestService_Load_FallbackSurfacesNotice(t *testing.T) {
	svc, _, pub := newTestService(&fakeRemote{err: errUnreachable}, stubAuth(false))

	res, err := svc.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OriginBuiltin, res.Origin)
	assert.Equal(t, LoadFailedNotice, res.Notice)
	assert.Len(t, res.Items, 6)
	assert.Len(t, res.Categories, 4)
	assert.Equal(t, []string{events.EventCatalogLoadFailed, events.EventCatalogLoaded}, pub.names())
}

// gatedRemote blocks the first Products call until release is closed.
type gatedRemote struct {
	fakeRemote
	mu      sync.Mutex
	first   bool
	entered chan struct{}
	release chan struct{}
	old     []product.Product
}

func (g *gatedRemote) Products(ctx context.Context) ([]product.Product, error) {
	g.mu.Lock()
	isFirst := !g.first
	g.first = true
	g.mu.Unlock()

	if isFirst {
		close(g.entered)
		<-g.release
		return g.old, nil
	}
	return g.fakeRemote.Products(ctx)
}

func TestService_Load_SupersededRunDoesNotOverwrite(t *testing.T) {
	stale := []product.Product{product.New(99, "Stale", decimal.NewFromInt(1), "", "x", "", product.Rating{})}
	remote := &gatedRemote{
		fakeRemote: fakeRemote{products: remoteProducts()},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
		old:        stale,
	}
	svc, _, pub := newTestService(remote, stubAuth(false))

	firstDone := make(chan LoadResult)
	go func() {
		res, _ := svc.Load(context.Background())
		firstDone <- res
	}()
	<-remote.entered

	second, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, second.Superseded)

	close(remote.release)
	first := <-firstDone

	assert.True(t, first.Superseded)
	items := svc.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 10, items[0].ID)
	assert.Equal(t, []string{events.EventCatalogLoaded}, pub.names())
}

func TestService_Load_CancelledNewerRunDoesNotSupersede(t *testing.T) {
	older := []product.Product{product.New(7, "Older", decimal.NewFromInt(3), "", "x", "", product.Rating{})}
	remote := &gatedRemote{
		fakeRemote: fakeRemote{products: remoteProducts()},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
		old:        older,
	}
	svc, _, pub := newTestService(remote, stubAuth(false))

	firstDone := make(chan LoadResult)
	go func() {
		res, _ := svc.Load(context.Background())
		firstDone <- res
	}()
	<-remote.entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Load(ctx)
	require.Error(t, err)

	close(remote.release)
	first := <-firstDone

	assert.False(t, first.Superseded)
	items := svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].ID)
	assert.Equal(t, []string{events.EventCatalogLoaded}, pub.names())
}

// =============================================================================
// Query / ByCategory / Export Tests
// =============================================================================

func TestService_Query(t *testing.T) {
	svc, _, _ := newTestService(&fakeRemote{products: remoteProducts()}, stubAuth(false))
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	got := svc.Query(query.Predicate{}, query.Order{Field: query.SortByPrice})
	require.Len(t, got, 2)
	assert.Equal(t, 11, got[0].ID)

	got = svc.Query(query.Predicate{Search: "RING"}, query.Order{})
	require.Len(t, got, 1)
	assert.Equal(t, 11, got[0].ID)
}

func TestService_ByCategory_CarriesInlinedImages(t *testing.T) {
	remote := &fakeRemote{
		products:   remoteProducts(),
		byCategory: map[string][]product.Product{"jewelery": remoteProducts()[1:]},
	}
	svc, _, _ := newTestService(remote, stubAuth(true))
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	items, origin := svc.ByCategory(context.Background(), "jewelery")

	assert.Equal(t, OriginRemote, origin)
	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].ImageBase64)
}

func TestService_Export(t *testing.T) {
	svc, _, _ := newTestService(&fakeRemote{products: remoteProducts()}, stubAuth(false))
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(&buf, query.Predicate{Category: "jewelery"}, query.Order{}))

	assert.Contains(t, buf.String(), "\n  {\n    \"id\": 11,")
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Ring", decoded[0]["title"])
	assert.Equal(t, 9.99, decoded[0]["price"])
	assert.NotContains(t, decoded[0], "imageBase64")
}

func TestService_Export_Empty(t *testing.T) {
	svc, _, _ := newTestService(&fakeRemote{products: remoteProducts()}, stubAuth(false))

	var buf bytes.Buffer
	require.NoError(t, svc.Export(&buf, query.Predicate{}, query.Order{}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "catalogo-productos.json", ExportFilename)
}
