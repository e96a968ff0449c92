// Package status implements the optimistic status-mutation protocol: apply
// the new value to the in-memory projection immediately, persist through
// the adapter, and roll back the named field if persistence fails. Each
// mutation moves Idle → Optimistic → Confirmed or RolledBack; there is no
// per-site serialization of concurrent mutations (last write wins).
package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joydiver/dive-atlas/backend/internal/domain"
	"github.com/joydiver/dive-atlas/backend/internal/persist"
	"github.com/joydiver/dive-atlas/backend/internal/store"
)

// Field identifies a toggleable status field.
type Field string

// Toggleable fields.
const (
	FieldDived    Field = "dived"
	FieldFavorite Field = "favorite"
)

// Valid reports whether f is a known toggleable field.
func (f Field) Valid() bool {
	return f == FieldDived || f == FieldFavorite
}

// Service runs the mutation protocol against the store and adapter.
type Service struct {
	store   *store.Store
	adapter persist.Adapter
	log     *slog.Logger
	notes   *notesDebouncer
}

// NewService constructs a Service. Notes persistence is debounced by
// debounce (the UI sends one update per keystroke); pass 0 to persist every
// update immediately, which tests do.
func NewService(st *store.Store, adapter persist.Adapter, log *slog.Logger, debounce time.Duration) *Service {
	s := &Service{store: st, adapter: adapter, log: log}
	s.notes = newNotesDebouncer(debounce, s.persistNotes)
	return s
}

// Toggle flips a boolean status field for a site. The in-memory value is
// updated before any I/O, then persisted; on failure only the named field
// is reverted to currentValue — never the whole record, which may have
// moved on by the time the failure lands.
//
// Returns domain.ErrUnauthorized when no user session is resolved, and a
// domain.ErrRemoteUnavailable-wrapped error on persistence failure; in both
// cases the in-memory value has already been reverted.
func (s *Service) Toggle(ctx context.Context, siteID string, field Field, currentValue bool) error {
	if !field.Valid() {
		return fmt.Errorf("status.Service.Toggle: %w: unknown field %q", domain.ErrValidation, field)
	}
	if _, ok := s.store.Site(siteID); !ok {
		return fmt.Errorf("status.Service.Toggle: site %s: %w", siteID, domain.ErrNotFound)
	}

	newValue := !currentValue
	s.store.UpdateSiteStatus(siteID, fieldPatch(field, newValue))

	userID, err := s.adapter.CurrentUser(ctx)
	if err != nil {
		s.store.UpdateSiteStatus(siteID, fieldPatch(field, currentValue))
		return fmt.Errorf("status.Service.Toggle: %w", err)
	}

	if _, err := s.adapter.UpsertStatus(ctx, userID, siteID, fieldPatch(field, newValue)); err != nil {
		s.log.Warn("status toggle not persisted, reverting", "site", siteID, "field", field, "error", err)
		s.store.UpdateSiteStatus(siteID, fieldPatch(field, currentValue))
		return fmt.Errorf("status.Service.Toggle: %w", err)
	}
	return nil
}

// UpdateNotes sets a site's notes. The in-memory value changes immediately;
// persistence is debounced per site to coalesce keystrokes into a single
// write. Only scheduling errors are possible here — persistence outcomes
// surface via the rollback in persistNotes.
func (s *Service) UpdateNotes(ctx context.Context, siteID, notes string) error {
	site, ok := s.store.Site(siteID)
	if !ok {
		return fmt.Errorf("status.Service.UpdateNotes: site %s: %w", siteID, domain.ErrNotFound)
	}

	previous := ""
	if site.Status != nil && site.Status.Notes != nil {
		previous = *site.Status.Notes
	}

	s.store.UpdateSiteStatus(siteID, domain.StatusPatch{Notes: &notes})
	s.notes.update(siteID, notes, previous)
	return nil
}

// FlushNotes persists any pending debounced notes for the site immediately.
// The UI calls this on loss of input focus regardless of the debounce
// timer. No-op when nothing is pending.
func (s *Service) FlushNotes(siteID string) {
	s.notes.flush(siteID)
}

// Close flushes all pending notes. Called on shutdown.
func (s *Service) Close() {
	s.notes.close()
}

// persistNotes is the debouncer's save callback: persist the notes value,
// reverting the in-memory notes to their pre-mutation value on failure.
func (s *Service) persistNotes(siteID, notes, previous string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	userID, err := s.adapter.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.log.Warn("notes not saved: authentication required", "site", siteID)
		} else {
			s.log.Warn("notes not saved", "site", siteID, "error", err)
		}
		s.store.UpdateSiteStatus(siteID, domain.StatusPatch{Notes: &previous})
		return
	}

	if _, err := s.adapter.UpsertStatus(ctx, userID, siteID, domain.StatusPatch{Notes: &notes}); err != nil {
		s.log.Warn("notes not persisted, reverting", "site", siteID, "error", err)
		s.store.UpdateSiteStatus(siteID, domain.StatusPatch{Notes: &previous})
	}
}

// fieldPatch builds the single-field patch for a toggle.
func fieldPatch(field Field, value bool) domain.StatusPatch {
	switch field {
	case FieldDived:
		return domain.StatusPatch{Dived: &value}
	default:
		return domain.StatusPatch{Favorite: &value}
	}
}
