package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"atl_hub/internal/app"
	"atl_hub/internal/domain"
)

type Handlers struct{ Pages *app.PageService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/neighborhoods/{slug}", h.getNeighborhood)
	s.mux.Get("/v1/cities/{slug}", h.getCity)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal page for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func slugParam(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(chi.URLParam(r, "slug")))
}

func (h *Handlers) getNeighborhood(w http.ResponseWriter, r *http.Request) {
	slug := slugParam(r)
	page, err := h.Pages.Neighborhood(r.Context(), slug, r.URL.Query().Get("q"))
	if err != nil {
		pageError(w, "neighborhood", slug, err)
		return
	}
	annotate(r, "neighborhood", page.Search != "", page.DegradedSections())
	writePage(w, r, page)
}

func (h *Handlers) getCity(w http.ResponseWriter, r *http.Request) {
	slug := slugParam(r)
	page, err := h.Pages.City(r.Context(), slug, r.URL.Query().Get("q"))
	if err != nil {
		pageError(w, "city", slug, err)
		return
	}
	annotate(r, "city", page.Search != "", page.DegradedSections())
	writePage(w, r, page)
}

func pageError(w http.ResponseWriter, kind, slug string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", kind+" not found")
		return
	}
	log.Error().Err(err).Str("kind", kind).Str("slug", slug).Msg("page assembly failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not load "+kind)
}

func writePage(w http.ResponseWriter, r *http.Request, page any) {
	etag, body := calcETagAndBody(page)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not encode page")
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write page body")
	}
}
