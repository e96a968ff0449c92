// Package store holds the single source-of-truth state container for the
// Dive Atlas client: the catalog+status projection, filter and selection
// state, and panel visibility. All mutation goes through named actions;
// all reads return snapshots. The store is owned by the application root
// and passed by reference to consumers — there is no package-level
// singleton.
package store

import (
	"sync"

	"github.com/joydiver/dive-atlas/backend/internal/derive"
	"github.com/joydiver/dive-atlas/backend/internal/domain"
)

// PanelState is the snapshot of all transient panel/selection state,
// returned as one unit so readers never observe a half-applied action.
type PanelState struct {
	SelectedSiteID      string           `json:"selected_site_id,omitempty"`
	View                domain.PanelView `json:"view"`
	ExpandedDestination string           `json:"expanded_destination,omitempty"`
	Collapsed           bool             `json:"collapsed"`
	FilterSheetOpen     bool             `json:"filter_sheet_open"`
	SiteDetailOpen      bool             `json:"site_detail_open"`
}

// Store is the central mutable state container. Each action takes the lock
// for its whole duration, so actions are atomic with respect to readers.
type Store struct {
	mu sync.Mutex

	sites   []domain.SiteWithStatus
	loading bool
	filters domain.Filters
	panel   PanelState

	// fitBoundsTarget is a single-slot command queue, not ordinary state:
	// writing replaces any unconsumed command, and ConsumeFitBounds clears
	// it so repeated reads don't re-trigger the same viewport jump.
	fitBoundsTarget *domain.Bounds
}

// New returns an empty store in the loading state.
func New() *Store {
	return &Store{
		loading: true,
		panel:   PanelState{View: domain.PanelNone},
	}
}

// ---- actions ---------------------------------------------------------------

// SetSites replaces the full catalog+status projection. Called after the
// initial load and after any full refetch.
func (s *Store) SetSites(sites []domain.SiteWithStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sites = sites
	s.loading = false
}

// SetLoading sets the loading flag shown while a catalog fetch is in flight.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetFilters merges the patch into the current filters and applies the
// coupled side effects in one atomic step:
//   - recomputes the one-shot fit-bounds target over the newly filtered set
//   - clears the expanded destination
//   - clears the selection when the patch itself sets a region filter
//   - re-derives the panel view from (selection, region)
func (s *Store) SetFilters(patch domain.FilterPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = s.filters.Apply(patch)
	if patch.SetsRegion() {
		s.panel.SelectedSiteID = ""
	}

	filtered := derive.Filter(s.sites, s.filters)
	s.fitBoundsTarget = derive.FitBounds(filtered, s.filters)
	s.panel.ExpandedDestination = ""
	s.panel.View = domain.DerivePanelView(s.panel.SelectedSiteID, s.filters.Region)
}

// ClearFilters resets all filter dimensions and the expanded destination.
// The panel view is forced to none even if a selection survives — clearing
// filters is an explicit "back to the map" gesture, one of the two
// documented overrides of the usual panel-view derivation (the other being
// SetPanelView). The selection itself is preserved.
func (s *Store) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = domain.Filters{}
	s.panel.ExpandedDestination = ""
	s.panel.View = domain.PanelNone
}

// SetSelectedSite sets (or clears, with "") the selected site, opening the
// detail surface and uncollapsing the panel on selection.
func (s *Store) SetSelectedSite(siteID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.SelectedSiteID = siteID
	s.panel.SiteDetailOpen = siteID != ""
	if siteID != "" {
		s.panel.Collapsed = false
	}
	s.panel.View = domain.DerivePanelView(siteID, s.filters.Region)
}

// SelectDestination expands a destination group and emits a one-shot
// fit-bounds command framing its currently-filtered members. No-op when no
// filtered site belongs to the destination.
func (s *Store) SelectDestination(destination string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var members []domain.SiteWithStatus
	for _, site := range derive.Filter(s.sites, s.filters) {
		if domain.GroupLabel(site.Site) == destination {
			members = append(members, site)
		}
	}
	b, ok := domain.BoundsOf(members)
	if !ok {
		return
	}
	padded := b.Pad(derive.FitPadding)
	s.panel.ExpandedDestination = destination
	s.fitBoundsTarget = &padded
}

// UpdateSiteStatus merges the patch into the site's in-memory status,
// creating a default record when the user has none. This is a pure local
// state mutation — the optimistic half of the mutation protocol; it does
// not persist anything.
func (s *Store) UpdateSiteStatus(siteID string, patch domain.StatusPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sites {
		if s.sites[i].ID != siteID {
			continue
		}
		current := domain.NewStatus("", siteID)
		if s.sites[i].Status != nil {
			current = *s.sites[i].Status
		}
		updated := current.Apply(patch)
		s.sites[i].Status = &updated
		return
	}
}

// TogglePanelCollapsed flips the sidebar collapse state.
func (s *Store) TogglePanelCollapsed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.Collapsed = !s.panel.Collapsed
}

// SetFilterSheetOpen sets the mobile filter sheet visibility.
func (s *Store) SetFilterSheetOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.FilterSheetOpen = open
}

// SetSiteDetailOpen sets the mobile site-detail sheet visibility. Closing
// it also clears the selection; the panel view is re-derived either way.
func (s *Store) SetSiteDetailOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.SiteDetailOpen = open
	if !open {
		s.panel.SelectedSiteID = ""
	}
	s.panel.View = domain.DerivePanelView(s.panel.SelectedSiteID, s.filters.Region)
}

// SetPanelView explicitly overrides the derived panel view. The next action
// that changes the selection or region filter re-derives it.
func (s *Store) SetPanelView(view domain.PanelView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.View = view
}

// SetExpandedDestination sets which destination group is expanded in the
// region browser ("" collapses all).
func (s *Store) SetExpandedDestination(destination string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.ExpandedDestination = destination
}

// SetFitBoundsTarget loads the one-shot fit-bounds slot directly (nil
// clears it). Most callers should prefer SetFilters / SelectDestination,
// which compute the target themselves.
func (s *Store) SetFitBoundsTarget(b *domain.Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitBoundsTarget = b
}

// ConsumeFitBounds returns the pending fit-bounds command and clears the
// slot. Exactly one consumer observes each command; subsequent calls return
// nil until a new command is produced.
func (s *Store) ConsumeFitBounds() *domain.Bounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.fitBoundsTarget
	s.fitBoundsTarget = nil
	return b
}

// ---- reads -----------------------------------------------------------------

// Sites returns a snapshot of the full projection.
func (s *Store) Sites() []domain.SiteWithStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.sites)
}

// Loading reports whether a catalog load is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Filters returns the current filter state.
func (s *Store) Filters() domain.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Panel returns a snapshot of the selection/panel state.
func (s *Store) Panel() PanelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel
}

// FilteredSites returns the sites passing the current filters, in catalog
// order.
func (s *Store) FilteredSites() []domain.SiteWithStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return derive.Filter(s.sites, s.filters)
}

// DestinationGroups returns the destination drill-down over the currently
// filtered sites.
func (s *Store) DestinationGroups() []domain.DestinationGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return derive.Groups(derive.Filter(s.sites, s.filters))
}

// SelectedSite returns the selected site's view entity, or ok=false when
// nothing is selected or the id is stale.
func (s *Store) SelectedSite() (domain.SiteWithStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(s.panel.SelectedSiteID)
}

// Site returns the view entity for the given id.
func (s *Store) Site(siteID string) (domain.SiteWithStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(siteID)
}

// DivedSites returns every site the user has marked as dived.
func (s *Store) DivedSites() []domain.SiteWithStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.SiteWithStatus{}
	for _, site := range s.sites {
		if site.Status != nil && site.Status.Dived {
			out = append(out, site)
		}
	}
	return out
}

// FavoriteSites returns every site the user has favorited.
func (s *Store) FavoriteSites() []domain.SiteWithStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.SiteWithStatus{}
	for _, site := range s.sites {
		if site.Status != nil && site.Status.Favorite {
			out = append(out, site)
		}
	}
	return out
}

func (s *Store) findLocked(siteID string) (domain.SiteWithStatus, bool) {
	if siteID == "" {
		return domain.SiteWithStatus{}, false
	}
	for _, site := range s.sites {
		if site.ID == siteID {
			return site, true
		}
	}
	return domain.SiteWithStatus{}, false
}

// snapshot copies the slice so callers can't mutate store state through it.
// Element Status pointers are shared; statuses are only replaced whole, so
// readers never see a torn record.
func snapshot(sites []domain.SiteWithStatus) []domain.SiteWithStatus {
	out := make([]domain.SiteWithStatus, len(sites))
	copy(out, sites)
	return out
}
