package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/example/catalog-flipbook/internal/apperr"
	"github.com/example/catalog-flipbook/internal/catalog"
	"github.com/example/catalog-flipbook/internal/logger"
	"github.com/example/catalog-flipbook/internal/projection"
	"github.com/example/catalog-flipbook/internal/session"
)

// Handlers serves the catalog, flipbook and session endpoints.
type Handlers struct {
	catalog  *catalog.Service
	book     *projection.Book
	session  *session.Session
	validate *validator.Validate
	log      *logger.Logger
}

func NewHandlers(svc *catalog.Service, book *projection.Book, sess *session.Session, log *logger.Logger) *Handlers {
	return &Handlers{
		catalog:  svc,
		book:     book,
		session:  sess,
		validate: validator.New(),
		log:      log.Component("API"),
	}
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return false
	}
	return h.check(w, dst)
}

// check runs struct validation and writes a 400 listing failed fields.
func (h *Handlers) check(w http.ResponseWriter, v any) bool {
	err := h.validate.Struct(v)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Details: details})
	return false
}

// respondError maps err to its status. Server-side failures hide their cause.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	msg := http.StatusText(status)

	var ae *apperr.Error
	if errors.As(err, &ae) && status < http.StatusInternalServerError {
		msg = ae.Message
	}
	if status >= http.StatusInternalServerError {
		h.log.WithContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}
	respondJSON(w, status, errorResponse{Error: msg})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
