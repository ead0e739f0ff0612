// Package api exposes the catalog over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/example/catalog-flipbook/internal/api/middleware"
	"github.com/example/catalog-flipbook/internal/logger"
)

// NewRouter mounts every route. Catalog and flipbook routes require a session.
func NewRouter(h *Handlers, log *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(h.session))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", h.ListCatalog)
			r.Post("/refresh", h.Refresh)
			r.Get("/categories", h.ListCategories)
			r.Get("/category/{category}", h.ProductsByCategory)
			r.Get("/export", h.Export)
		})

		r.Route("/flipbook", func(r chi.Router) {
			r.Get("/", h.Flipbook)
			r.Post("/next", h.NextPage)
			r.Post("/previous", h.PreviousPage)
			r.Post("/goto/{index}", h.GoToPage)
			r.Post("/flip", h.FlipPage)
		})
	})

	return r
}
