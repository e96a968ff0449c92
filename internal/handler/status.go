package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joydiver/dive-atlas/backend/internal/status"
)

// ToggleStatus handles POST /api/sites/{siteID}/status/{field}/toggle.
// The body carries the value the client currently displays; the protocol
// flips it optimistically and rolls back on persistence failure, so the
// response always reflects the post-protocol in-memory state.
func (s *Server) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "siteID")
	field := status.Field(chi.URLParam(r, "field"))

	var req struct {
		Current bool `json:"current"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.status.Toggle(r.Context(), siteID, field, req.Current); err != nil {
		writeDomainError(w, err)
		return
	}

	site, _ := s.store.Site(siteID)
	writeJSON(w, http.StatusOK, toSiteResponse(site))
}

// PutNotes handles PUT /api/sites/{siteID}/notes. The in-memory value
// updates immediately; persistence is debounced to coalesce keystrokes.
// ?flush=true forces an immediate persist — the blur-event path.
func (s *Server) PutNotes(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "siteID")

	var req struct {
		Notes string `json:"notes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.status.UpdateNotes(r.Context(), siteID, req.Notes); err != nil {
		writeDomainError(w, err)
		return
	}
	if r.URL.Query().Get("flush") == "true" {
		s.status.FlushNotes(siteID)
	}

	site, _ := s.store.Site(siteID)
	writeJSON(w, http.StatusOK, toSiteResponse(site))
}
