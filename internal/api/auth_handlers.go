package api

import (
	"net/http"

	"github.com/example/catalog-flipbook/internal/api/middleware"
	"github.com/example/catalog-flipbook/internal/session"
)

// Login authenticates the single service user. The token is returned in the
// body for API clients and in an HttpOnly cookie for browsers.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var creds session.Credentials
	if !h.decodeAndValidate(w, r, &creds) {
		return
	}

	st, err := h.session.Login(r.Context(), creds)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    st.Token,
		Path:     "/",
		Expires:  st.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	respondJSON(w, http.StatusOK, st.View())
}

// Logout ends the session and clears the cookie. Logging out twice is not an error.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(r.Context())

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Me returns the session without its token.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	view := h.session.Snapshot().View()
	view.Token = ""
	respondJSON(w, http.StatusOK, view)
}
