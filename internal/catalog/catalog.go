// Package catalog implements the catalog load path: fetch sites and the
// current user's statuses through the persistence adapter, merge them into
// the SiteWithStatus projection, and fall back to the embedded seed catalog
// on any failure so the UI is never empty.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/joydiver/dive-atlas/backend/internal/domain"
	"github.com/joydiver/dive-atlas/backend/internal/persist"
	"github.com/joydiver/dive-atlas/backend/seed"
)

// Service loads the catalog+status projection.
type Service struct {
	adapter persist.Adapter
	log     *slog.Logger
}

// NewService constructs a Service backed by the provided adapter.
func NewService(adapter persist.Adapter, log *slog.Logger) *Service {
	return &Service{adapter: adapter, log: log}
}

// Load returns the full SiteWithStatus projection. It never returns an
// error: remote failures are fully recovered by falling back to the seed
// catalog with no statuses, logged as a best-effort diagnostic. Load is
// idempotent and safe to re-invoke; repeated calls simply rebuild the
// projection.
//
// Sites and statuses are fetched concurrently. A missing user session is
// tolerated — the catalog is still browsable, just without statuses.
func (s *Service) Load(ctx context.Context) []domain.SiteWithStatus {
	userID, err := s.adapter.CurrentUser(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			s.log.Warn("could not resolve user", "error", err)
		}
		userID = ""
	}

	var (
		sites    []domain.Site
		statuses map[string]domain.UserStatus
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sites, err = s.loadCatalogWithRetry(gctx)
		return err
	})
	if userID != "" {
		g.Go(func() error {
			var err error
			statuses, err = s.adapter.LoadStatuses(gctx, userID)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Warn("catalog load failed, falling back to seed data", "error", err)
		return seedProjection(s.log)
	}

	merged := make([]domain.SiteWithStatus, 0, len(sites))
	for _, site := range sites {
		var status *domain.UserStatus
		if st, ok := statuses[site.ID]; ok {
			st := st
			status = &st
		}
		merged = append(merged, site.WithStatus(status))
	}
	return merged
}

// loadCatalogWithRetry retries transient remote failures with a short
// fibonacci backoff before giving up to the seed fallback. Only
// ErrRemoteUnavailable is retryable; validation errors are not going to
// get better on a second attempt.
func (s *Service) loadCatalogWithRetry(ctx context.Context) ([]domain.Site, error) {
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))

	var sites []domain.Site
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		sites, err = s.adapter.LoadCatalog(ctx)
		if err != nil && errors.Is(err, domain.ErrRemoteUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
	return sites, err
}

// seedProjection builds the emergency projection from the embedded seed
// catalog, with no statuses. The embedded catalog is validated at build
// time; if it somehow fails to decode, the projection is empty — the only
// case in which the UI can see zero sites.
func seedProjection(log *slog.Logger) []domain.SiteWithStatus {
	sites, err := seed.Sites()
	if err != nil {
		log.Error("seed catalog unreadable", "error", err)
		return []domain.SiteWithStatus{}
	}
	out := make([]domain.SiteWithStatus, 0, len(sites))
	for _, site := range sites {
		out = append(out, site.WithStatus(nil))
	}
	return out
}
