package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/catalog-flipbook/internal/apperr"
	"github.com/example/catalog-flipbook/internal/readmodel"
)

type moveResponse struct {
	Moved bool                   `json:"moved"`
	View  readmodel.FlipbookView `json:"flipbook"`
}

func (h *Handlers) Flipbook(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.book.View())
}

func (h *Handlers) NextPage(w http.ResponseWriter, r *http.Request) {
	moved := h.book.Next(r.Context())
	respondJSON(w, http.StatusOK, moveResponse{Moved: moved, View: h.book.View()})
}

func (h *Handlers) PreviousPage(w http.ResponseWriter, r *http.Request) {
	moved := h.book.Previous(r.Context())
	respondJSON(w, http.StatusOK, moveResponse{Moved: moved, View: h.book.View()})
}

// GoToPage jumps to a 0-based page index. An index outside the book is a
// no-op, not an error.
func (h *Handlers) GoToPage(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.respondError(w, r, apperr.Validation("index must be an integer"))
		return
	}
	moved := h.book.GoTo(r.Context(), index)
	respondJSON(w, http.StatusOK, moveResponse{Moved: moved, View: h.book.View()})
}

func (h *Handlers) FlipPage(w http.ResponseWriter, r *http.Request) {
	h.book.Flip()
	respondJSON(w, http.StatusOK, h.book.View())
}
