package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/joydiver/dive-atlas/backend/internal/derive"
	"github.com/joydiver/dive-atlas/backend/internal/domain"
)

// siteResponse decorates the view entity with the clustering hint the map
// layer uses: sites with a personal status are never clustered.
type siteResponse struct {
	domain.SiteWithStatus
	HasUserStatus bool `json:"has_user_status"`
}

// sitesBody is the envelope for site list responses.
type sitesBody struct {
	Sites   []siteResponse `json:"sites"`
	Loading bool           `json:"loading"`
}

// ListSites handles GET /api/sites — the currently filtered catalog, in
// catalog order.
func (s *Server) ListSites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sitesBody{
		Sites:   toSiteResponses(s.store.FilteredSites()),
		Loading: s.store.Loading(),
	})
}

// GetSite handles GET /api/sites/{siteID}.
func (s *Server) GetSite(w http.ResponseWriter, r *http.Request) {
	site, ok := s.store.Site(chi.URLParam(r, "siteID"))
	if !ok {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "site not found")
		return
	}
	writeJSON(w, http.StatusOK, toSiteResponse(site))
}

// ListDestinations handles GET /api/destinations — the drill-down grouping
// over the currently filtered sites.
func (s *Server) ListDestinations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.DestinationGroups())
}

// SelectDestination handles POST /api/destinations/select. Expanding a
// destination emits a one-shot fit-bounds command; selecting one with no
// filtered members is a no-op, not an error.
func (s *Server) SelectDestination(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Destination string `json:"destination"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Destination == "" {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, "destination is required")
		return
	}
	s.store.SelectDestination(req.Destination)
	writeJSON(w, http.StatusOK, s.store.Panel())
}

// GetHighlights handles GET /api/highlights?n= — the top tags across the
// currently filtered sites.
func (s *Server) GetHighlights(w http.ResponseWriter, r *http.Request) {
	n := 4
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "n must be a positive integer")
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"tags": derive.HighlightTags(s.store.FilteredSites(), n),
	})
}

// ListDived handles GET /api/me/dived.
func (s *Server) ListDived(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sitesBody{Sites: toSiteResponses(s.store.DivedSites())})
}

// ListFavorites handles GET /api/me/favorites.
func (s *Server) ListFavorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sitesBody{Sites: toSiteResponses(s.store.FavoriteSites())})
}

// ConsumeFitBounds handles GET /api/map/fit-bounds. The fit-bounds target
// is a one-shot command: this read clears it, so the map never re-applies
// the same viewport jump. 204 means nothing is pending.
func (s *Server) ConsumeFitBounds(w http.ResponseWriter, r *http.Request) {
	b := s.store.ConsumeFitBounds()
	if b == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, map[string]domain.Bounds{"bounds": *b})
}

// RefreshCatalog handles POST /api/catalog/refresh — a full idempotent
// reload of the projection (e.g. triggered by navigation).
func (s *Server) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	s.store.SetLoading(true)
	s.store.SetSites(s.catalog.Load(r.Context()))
	writeJSON(w, http.StatusOK, sitesBody{
		Sites: toSiteResponses(s.store.FilteredSites()),
	})
}

func toSiteResponse(site domain.SiteWithStatus) siteResponse {
	return siteResponse{SiteWithStatus: site, HasUserStatus: derive.HasUserStatus(site)}
}

func toSiteResponses(sites []domain.SiteWithStatus) []siteResponse {
	out := make([]siteResponse, len(sites))
	for i, site := range sites {
		out[i] = toSiteResponse(site)
	}
	return out
}
