package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/example/catalog-flipbook/internal/catalog"
	"github.com/example/catalog-flipbook/internal/query"
	"github.com/example/catalog-flipbook/internal/readmodel"
)

// catalogParams are the query parameters shared by the list and export
// endpoints. Missing price bounds fall back to the default range.
type catalogParams struct {
	Search   string `validate:"max=200"`
	Category string `validate:"max=100"`
	MinPrice string `validate:"omitempty,numeric"`
	MaxPrice string `validate:"omitempty,numeric"`
	SortBy   string `validate:"omitempty,max=20"`
	Order    string `validate:"omitempty,oneof=asc desc"`
	Images   string `validate:"omitempty,oneof=base64 url"`
}

func readCatalogParams(r *http.Request) catalogParams {
	q := r.URL.Query()
	return catalogParams{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		MinPrice: q.Get("minPrice"),
		MaxPrice: q.Get("maxPrice"),
		SortBy:   q.Get("sortBy"),
		Order:    q.Get("order"),
		Images:   q.Get("images"),
	}
}

func (p catalogParams) predicate(defaults query.Predicate) query.Predicate {
	pred := defaults
	pred.Search = p.Search
	pred.Category = p.Category
	if d, err := decimal.NewFromString(p.MinPrice); err == nil {
		pred.MinPrice = &d
	}
	if d, err := decimal.NewFromString(p.MaxPrice); err == nil {
		pred.MaxPrice = &d
	}
	return pred
}

// order maps an unknown sort field to name.
func (p catalogParams) order() query.Order {
	return query.NormalizeOrder(query.Order{Field: p.SortBy, Direction: p.Order})
}

// itemView adds the image a client should render.
type itemView struct {
	readmodel.CatalogItem
	DisplayImage string `json:"displayImage"`
}

func toViews(items []readmodel.CatalogItem, showInline bool) []itemView {
	out := make([]itemView, len(items))
	for i, it := range items {
		out[i] = itemView{CatalogItem: it, DisplayImage: catalog.ImageSource(it, showInline)}
	}
	return out
}

type catalogResponse struct {
	Items  []itemView     `json:"items"`
	Total  int            `json:"total"`
	Origin catalog.Origin `json:"origin"`
	Notice string         `json:"notice,omitempty"`
}

func noticeFor(origin catalog.Origin) string {
	if origin == catalog.OriginRemote {
		return ""
	}
	return catalog.LoadFailedNotice
}

// ListCatalog returns the committed items filtered and ordered by the query string.
func (h *Handlers) ListCatalog(w http.ResponseWriter, r *http.Request) {
	params := readCatalogParams(r)
	if !h.check(w, params) {
		return
	}

	items := h.catalog.Query(params.predicate(h.catalog.DefaultPredicate()), params.order())
	origin := h.catalog.Origin()
	respondJSON(w, http.StatusOK, catalogResponse{
		Items:  toViews(items, params.Images != "url"),
		Total:  len(items),
		Origin: origin,
		Notice: noticeFor(origin),
	})
}

type refreshResponse struct {
	RunID      string         `json:"runId"`
	Count      int            `json:"count"`
	Skipped    int            `json:"skipped"`
	Origin     catalog.Origin `json:"origin"`
	Inlined    int            `json:"inlined"`
	Notice     string         `json:"notice,omitempty"`
	Superseded bool           `json:"superseded"`
}

// Refresh runs the pipeline again. A run overtaken by a newer one reports
// superseded and changes nothing.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalog.Load(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, refreshResponse{
		RunID:      res.RunID,
		Count:      len(res.Items),
		Skipped:    res.Skipped,
		Origin:     res.Origin,
		Inlined:    res.Inlined,
		Notice:     res.Notice,
		Superseded: res.Superseded,
	})
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{"categories": h.catalog.Categories()})
}

// ProductsByCategory fetches one category through the fallback chain.
func (h *Handlers) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "category")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	items, origin := h.catalog.ByCategory(r.Context(), name)
	respondJSON(w, http.StatusOK, catalogResponse{
		Items:  toViews(items, r.URL.Query().Get("images") != "url"),
		Total:  len(items),
		Origin: origin,
		Notice: noticeFor(origin),
	})
}

// Export downloads the filtered catalog as a JSON document.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	params := readCatalogParams(r)
	if !h.check(w, params) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", catalog.ExportFilename))
	if err := h.catalog.Export(w, params.predicate(h.catalog.DefaultPredicate()), params.order()); err != nil {
		h.log.WithContext(r.Context()).Error("export failed", "error", err)
	}
}
