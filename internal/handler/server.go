// Package handler implements the JSON API the map view layer consumes.
// All handlers are methods on Server, split into domain-specific files
// (sites.go, filters.go, status.go, ...) but sharing the same struct so
// they can access its dependencies. The surface is a thin projection of
// the store: queries are pure reads, mutations are store actions or
// protocol calls — no business logic lives here.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joydiver/dive-atlas/backend/internal/domain"
	"github.com/joydiver/dive-atlas/backend/internal/status"
	"github.com/joydiver/dive-atlas/backend/internal/store"
)

// CatalogLoader defines the catalog operations the handler depends on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a stub without touching the adapter or database.
type CatalogLoader interface {
	Load(ctx context.Context) []domain.SiteWithStatus
}

// StatusMutator defines the mutation-protocol operations the handler
// depends on.
type StatusMutator interface {
	Toggle(ctx context.Context, siteID string, field status.Field, currentValue bool) error
	UpdateNotes(ctx context.Context, siteID, notes string) error
	FlushNotes(siteID string)
}

// Server holds the handler dependencies: the store it reads and mutates,
// the catalog loader for refreshes, and the status mutation protocol.
type Server struct {
	store   *store.Store
	catalog CatalogLoader
	status  StatusMutator
}

// NewServer constructs the Server with all its dependencies.
func NewServer(st *store.Store, catalog CatalogLoader, statusSvc StatusMutator) *Server {
	return &Server{store: st, catalog: catalog, status: statusSvc}
}

// Routes mounts every endpoint on a fresh chi router. Middleware is applied
// by the caller (main.go) so tests can exercise routes without it.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/sites", s.ListSites)
		r.Get("/sites/{siteID}", s.GetSite)
		r.Get("/destinations", s.ListDestinations)
		r.Post("/destinations/select", s.SelectDestination)
		r.Get("/highlights", s.GetHighlights)
		r.Get("/me/dived", s.ListDived)
		r.Get("/me/favorites", s.ListFavorites)

		r.Get("/filters", s.GetFilters)
		r.Patch("/filters", s.PatchFilters)
		r.Delete("/filters", s.ClearFilters)

		r.Put("/selection", s.PutSelection)
		r.Get("/map/fit-bounds", s.ConsumeFitBounds)

		r.Get("/panel", s.GetPanel)
		r.Patch("/panel", s.PatchPanel)
		r.Post("/panel/collapse/toggle", s.ToggleCollapsed)

		r.Post("/sites/{siteID}/status/{field}/toggle", s.ToggleStatus)
		r.Put("/sites/{siteID}/notes", s.PutNotes)

		r.Post("/catalog/refresh", s.RefreshCatalog)
	})

	return r
}

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
