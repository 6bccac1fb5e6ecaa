package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router serving site.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(site *Site, authEnabled bool, token string) chi.Router {
	h := NewHandler(site)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/_pages", h.ListPages)
	r.Get("/*", h.Preview)
	r.Head("/*", h.Preview)

	return r
}
