// Package persist abstracts status/catalog durability behind one capability
// interface with two interchangeable implementations: a remote Postgres
// backend for authenticated use and an on-device JSON fallback for
// unauthenticated or unconfigured use. The implementation is chosen once at
// startup (presence of a database URL); callers never branch on the mode.
package persist

import (
	"context"

	"github.com/joydiver/dive-atlas/backend/internal/domain"
)

// Adapter is the persistence capability consumed by the catalog and status
// services.
type Adapter interface {
	// LoadCatalog returns all sites, ordered by name ascending.
	LoadCatalog(ctx context.Context) ([]domain.Site, error)

	// LoadStatuses returns the user's statuses keyed by site id. An empty
	// map is a normal result, not an error.
	LoadStatuses(ctx context.Context, userID string) (map[string]domain.UserStatus, error)

	// UpsertStatus merges the patch into the user's status for the site —
	// read-modify-write: the existing record (or a default one; absence is
	// not an error) is fetched first so fields the patch does not target
	// are preserved — and persists the whole record, returning it.
	UpsertStatus(ctx context.Context, userID, siteID string, patch domain.StatusPatch) (domain.UserStatus, error)

	// CurrentUser resolves the user identity all status operations are
	// scoped to. Returns domain.ErrUnauthorized when no session is
	// resolved; the local adapter always succeeds with a synthetic
	// per-device id.
	CurrentUser(ctx context.Context) (string, error)
}
