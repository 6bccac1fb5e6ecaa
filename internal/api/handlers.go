package api

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/pagewright/internal/apperr"
	"github.com/starford/pagewright/internal/checksum"
)

// Handler holds the preview route handlers.
type Handler struct {
	site *Site
}

// NewHandler creates a new Handler.
func NewHandler(site *Site) *Handler {
	return &Handler{site: site}
}

// requestPath returns the decoded wildcard path, keeping a trailing slash.
func requestPath(r *http.Request) string {
	raw := "/" + chi.URLParam(r, "*")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Preview handles GET /*.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	page, err := h.site.Page(r.Context(), requestPath(r))
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("page not found"))
		return
	}
	if err != nil {
		slog.Error("preview failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	w.Header().Set("ETag", `"`+page.Checksum+`"`)
	if checksum.Matches(page.Content, strings.Trim(r.Header.Get("If-None-Match"), `"`)) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	ctype := mime.TypeByExtension(path.Ext(page.Key))
	if ctype == "" {
		ctype = http.DetectContentType(page.Content)
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Length", strconv.Itoa(len(page.Content)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(page.Content)
	}
}

// ListPages handles GET /_pages.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	items, err := h.site.Pages(r.Context())
	if err != nil {
		slog.Error("list pages failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: items, Total: len(items)})
}
