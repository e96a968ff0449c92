package handler

import (
	"encoding/json"
	"net/http"

	"github.com/joydiver/dive-atlas/backend/internal/domain"
)

// filtersBody is the response for filter reads and writes: the effective
// filter state plus the count of sites passing it.
type filtersBody struct {
	Filters domain.Filters `json:"filters"`
	Matches int            `json:"matches"`
}

// GetFilters handles GET /api/filters.
func (s *Server) GetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, filtersBody{
		Filters: s.store.Filters(),
		Matches: len(s.store.FilteredSites()),
	})
}

// PatchFilters handles PATCH /api/filters. Absent fields are untouched; an
// empty string clears that dimension. Setting a region clears the current
// site selection; every change recomputes the one-shot fit-bounds target.
func (s *Server) PatchFilters(w http.ResponseWriter, r *http.Request) {
	var patch domain.FilterPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.Difficulty != nil && !domain.Difficulty(*patch.Difficulty).Valid() {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation,
			"difficulty must be one of beginner, intermediate, advanced, expert")
		return
	}
	s.store.SetFilters(patch)
	writeJSON(w, http.StatusOK, filtersBody{
		Filters: s.store.Filters(),
		Matches: len(s.store.FilteredSites()),
	})
}

// ClearFilters handles DELETE /api/filters.
func (s *Server) ClearFilters(w http.ResponseWriter, r *http.Request) {
	s.store.ClearFilters()
	w.WriteHeader(http.StatusNoContent)
}

// PutSelection handles PUT /api/selection. A null or empty site_id clears
// the selection.
func (s *Server) PutSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SiteID string `json:"site_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SiteID != "" {
		if _, ok := s.store.Site(req.SiteID); !ok {
			writeError(w, http.StatusNotFound, ErrCodeNotFound, "site not found")
			return
		}
	}
	s.store.SetSelectedSite(req.SiteID)
	writeJSON(w, http.StatusOK, s.store.Panel())
}

// GetPanel handles GET /api/panel.
func (s *Server) GetPanel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Panel())
}

// panelPatch carries the direct panel setters. Nil fields are untouched.
type panelPatch struct {
	View                *string `json:"view,omitempty"`
	ExpandedDestination *string `json:"expanded_destination,omitempty"`
	FilterSheetOpen     *bool   `json:"filter_sheet_open,omitempty"`
	SiteDetailOpen      *bool   `json:"site_detail_open,omitempty"`
}

// PatchPanel handles PATCH /api/panel — the direct state setters
// (panel view override, expanded destination, sheet visibility).
func (s *Server) PatchPanel(w http.ResponseWriter, r *http.Request) {
	var patch panelPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.View != nil {
		view := domain.PanelView(*patch.View)
		switch view {
		case domain.PanelNone, domain.PanelRegionBrowser, domain.PanelSiteDetail:
			s.store.SetPanelView(view)
		default:
			writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation,
				"view must be one of none, region-browser, site-detail")
			return
		}
	}
	if patch.ExpandedDestination != nil {
		s.store.SetExpandedDestination(*patch.ExpandedDestination)
	}
	if patch.FilterSheetOpen != nil {
		s.store.SetFilterSheetOpen(*patch.FilterSheetOpen)
	}
	if patch.SiteDetailOpen != nil {
		s.store.SetSiteDetailOpen(*patch.SiteDetailOpen)
	}
	writeJSON(w, http.StatusOK, s.store.Panel())
}

// ToggleCollapsed handles POST /api/panel/collapse/toggle.
func (s *Server) ToggleCollapsed(w http.ResponseWriter, r *http.Request) {
	s.store.TogglePanelCollapsed()
	writeJSON(w, http.StatusOK, s.store.Panel())
}

// decodeBody decodes the request body into v, writing a 400 and returning
// false on malformed JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid json body")
		return false
	}
	return true
}
