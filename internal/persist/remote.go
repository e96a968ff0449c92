package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/joydiver/dive-atlas/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and
// pgx.Tx. Accepting this interface instead of *pgxpool.Pool directly allows
// integration tests to pass a transaction that is rolled back after each
// test, giving free per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Remote is the Postgres implementation of Adapter. It requires a resolved
// session: userID is fixed at construction (resolved by the auth
// collaborator at startup) and may be empty, in which case CurrentUser
// fails and status mutations roll back.
type Remote struct {
	db     db
	userID string
}

// NewRemote constructs a Remote adapter. In production pass *pgxpool.Pool;
// in tests pass a pgx.Tx for rollback isolation. userID may be empty for an
// unauthenticated session.
func NewRemote(db db, userID string) *Remote {
	return &Remote{db: db, userID: userID}
}

// CurrentUser returns the session user, or domain.ErrUnauthorized when the
// adapter was built without one.
func (r *Remote) CurrentUser(ctx context.Context) (string, error) {
	if r.userID == "" {
		return "", fmt.Errorf("persist.Remote.CurrentUser: %w", domain.ErrUnauthorized)
	}
	return r.userID, nil
}

// LoadCatalog returns all sites ordered by name ascending.
func (r *Remote) LoadCatalog(ctx context.Context) ([]domain.Site, error) {
	const q = `
		SELECT id, name, destination, country, lat, lng, difficulty,
		       depth_min, depth_max, best_season, tags, created_at
		FROM sites
		ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("persist.Remote.LoadCatalog: %w", remoteErr(err))
	}
	defer rows.Close()

	var sites []domain.Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("persist.Remote.LoadCatalog: scan: %w", remoteErr(err))
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persist.Remote.LoadCatalog: rows: %w", remoteErr(err))
	}
	return sites, nil
}

// LoadStatuses returns all of the user's status rows keyed by site id.
func (r *Remote) LoadStatuses(ctx context.Context, userID string) (map[string]domain.UserStatus, error) {
	const q = `
		SELECT user_id, site_id, want, dived, favorite, notes, date_dived, updated_at
		FROM user_site_status
		WHERE user_id = @user_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("persist.Remote.LoadStatuses: %w", remoteErr(err))
	}
	defer rows.Close()

	statuses := map[string]domain.UserStatus{}
	for rows.Next() {
		st, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("persist.Remote.LoadStatuses: scan: %w", remoteErr(err))
		}
		statuses[st.SiteID] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persist.Remote.LoadStatuses: rows: %w", remoteErr(err))
	}
	return statuses, nil
}

// UpsertStatus fetches the existing row (absence is not an error), merges
// the patch into it, and writes the whole record back with the
// (user_id, site_id) pair as the conflict target. The fetch-then-upsert
// sequence is not transactional; concurrent updates to the same pair are
// last-write-wins.
func (r *Remote) UpsertStatus(ctx context.Context, userID, siteID string, patch domain.StatusPatch) (domain.UserStatus, error) {
	current, err := r.getStatus(ctx, userID, siteID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.UserStatus{}, fmt.Errorf("persist.Remote.UpsertStatus: fetch: %w", err)
		}
		current = domain.NewStatus(userID, siteID)
	}
	merged := current.Apply(patch)

	const q = `
		INSERT INTO user_site_status (user_id, site_id, want, dived, favorite, notes, date_dived, updated_at)
		VALUES (@user_id, @site_id, @want, @dived, @favorite, @notes, @date_dived, now())
		ON CONFLICT (user_id, site_id) DO UPDATE SET
			want       = EXCLUDED.want,
			dived      = EXCLUDED.dived,
			favorite   = EXCLUDED.favorite,
			notes      = EXCLUDED.notes,
			date_dived = EXCLUDED.date_dived,
			updated_at = now()
		RETURNING user_id, site_id, want, dived, favorite, notes, date_dived, updated_at`

	args := pgx.NamedArgs{
		"user_id":    userID,
		"site_id":    siteID,
		"want":       merged.Want,
		"dived":      merged.Dived,
		"favorite":   merged.Favorite,
		"notes":      merged.Notes,     // nil becomes NULL
		"date_dived": merged.DateDived, // nil becomes NULL
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanStatus(row)
	if err != nil {
		return domain.UserStatus{}, fmt.Errorf("persist.Remote.UpsertStatus: %w", remoteErr(err))
	}
	return result, nil
}

// getStatus fetches one status row. Returns domain.ErrNotFound when the
// user has no record for the site.
func (r *Remote) getStatus(ctx context.Context, userID, siteID string) (domain.UserStatus, error) {
	const q = `
		SELECT user_id, site_id, want, dived, favorite, notes, date_dived, updated_at
		FROM user_site_status
		WHERE user_id = @user_id AND site_id = @site_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID, "site_id": siteID})
	st, err := scanStatus(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.UserStatus{}, domain.ErrNotFound
		}
		return domain.UserStatus{}, remoteErr(err)
	}
	return st, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanSite maps a database row into a domain.Site, converting nullable
// columns to their absent representations.
func scanSite(sc scanner) (domain.Site, error) {
	var (
		s           domain.Site
		id          pgtype.UUID
		destination pgtype.Text
		country     pgtype.Text
		difficulty  pgtype.Text
		depthMin    pgtype.Int4
		depthMax    pgtype.Int4
		bestSeason  pgtype.Text
	)

	err := sc.Scan(&id, &s.Name, &destination, &country, &s.Lat, &s.Lng,
		&difficulty, &depthMin, &depthMax, &bestSeason, &s.Tags, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Site{}, domain.ErrNotFound
		}
		return domain.Site{}, err
	}

	s.ID = uuidString(id)
	s.Destination = destination.String
	s.Country = country.String
	s.Difficulty = domain.Difficulty(difficulty.String)
	if depthMin.Valid {
		v := int(depthMin.Int32)
		s.DepthMin = &v
	}
	if depthMax.Valid {
		v := int(depthMax.Int32)
		s.DepthMax = &v
	}
	s.BestSeason = bestSeason.String
	if err := s.Validate(); err != nil {
		return domain.Site{}, err
	}
	return s, nil
}

// scanStatus maps a database row into a domain.UserStatus.
func scanStatus(sc scanner) (domain.UserStatus, error) {
	var (
		st        domain.UserStatus
		userID    pgtype.UUID
		siteID    pgtype.UUID
		notes     pgtype.Text
		dateDived pgtype.Date
	)

	err := sc.Scan(&userID, &siteID, &st.Want, &st.Dived, &st.Favorite,
		&notes, &dateDived, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserStatus{}, domain.ErrNotFound
		}
		return domain.UserStatus{}, err
	}

	st.UserID = uuidString(userID)
	st.SiteID = uuidString(siteID)
	if notes.Valid {
		n := notes.String
		st.Notes = &n
	}
	if dateDived.Valid {
		d := dateDived.Time
		st.DateDived = &d
	}
	return st, nil
}

// remoteErr tags driver/network errors with domain.ErrRemoteUnavailable so
// callers can trigger their fallback/rollback paths with errors.Is.
func remoteErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
}

// uuidString renders a pgtype.UUID as its canonical string form, or ""
// when NULL.
func uuidString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	b := u.Bytes
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
