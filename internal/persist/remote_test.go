package persist_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joydiver/dive-atlas/backend/internal/domain"
	"github.com/joydiver/dive-atlas/backend/internal/persist"
	"github.com/joydiver/dive-atlas/backend/testutil"
)

// testTx begins a transaction that is rolled back when the test finishes,
// so every test sees a clean slate without manual cleanup. Skips without
// TEST_DATABASE_URL.
func testTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// insertSite creates a catalog row and returns its generated id.
func insertSite(t *testing.T, tx pgx.Tx, name string) string {
	t.Helper()
	const q = `
		INSERT INTO sites (name, destination, country, lat, lng, difficulty, tags)
		VALUES (@name, 'Cozumel', 'Mexico', 20.33, -87.03, 'beginner', '{reef,drift}')
		RETURNING id`

	var id string
	err := tx.QueryRow(context.Background(), q, pgx.NamedArgs{"name": name}).Scan(&id)
	require.NoError(t, err)
	return id
}

// ---- CurrentUser (unit, no database) ---------------------------------------

func TestRemoteCurrentUser_NoSession(t *testing.T) {
	r := persist.NewRemote(nil, "")

	_, err := r.CurrentUser(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRemoteCurrentUser_ReturnsFixedSession(t *testing.T) {
	r := persist.NewRemote(nil, "user-1")

	got, err := r.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", got)
}

// ---- LoadCatalog -----------------------------------------------------------

func TestRemoteLoadCatalog_OrderedByName(t *testing.T) {
	tx := testTx(t)
	zebra := insertSite(t, tx, "Zebra Reef")
	alpha := insertSite(t, tx, "Alpha Wall")

	r := persist.NewRemote(tx, "")
	sites, err := r.LoadCatalog(context.Background())
	require.NoError(t, err)

	pos := map[string]int{}
	for i, s := range sites {
		pos[s.ID] = i
	}
	require.Contains(t, pos, alpha)
	require.Contains(t, pos, zebra)
	assert.Less(t, pos[alpha], pos[zebra], "catalog must come back name-ascending")
}

func TestRemoteLoadCatalog_MapsColumns(t *testing.T) {
	tx := testTx(t)
	id := insertSite(t, tx, "Palancar Gardens")

	r := persist.NewRemote(tx, "")
	sites, err := r.LoadCatalog(context.Background())
	require.NoError(t, err)

	var got domain.Site
	for _, s := range sites {
		if s.ID == id {
			got = s
		}
	}
	require.NotEmpty(t, got.ID)
	assert.Equal(t, "Palancar Gardens", got.Name)
	assert.Equal(t, "Cozumel", got.Destination)
	assert.Equal(t, "Mexico", got.Country)
	assert.Equal(t, domain.DifficultyBeginner, got.Difficulty)
	assert.ElementsMatch(t, []string{"reef", "drift"}, got.Tags)
	assert.False(t, got.CreatedAt.IsZero())
}

// ---- statuses --------------------------------------------------------------

func TestRemoteUpsertStatus_CreatesWhenAbsent(t *testing.T) {
	tx := testTx(t)
	siteID := insertSite(t, tx, "New Site")
	userID := uuid.NewString()

	r := persist.NewRemote(tx, userID)
	got, err := r.UpsertStatus(context.Background(), userID, siteID, domain.StatusPatch{
		Dived: domain.BoolPtr(true),
	})
	require.NoError(t, err)

	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, siteID, got.SiteID)
	assert.True(t, got.Dived)
	assert.False(t, got.Favorite)
	assert.False(t, got.UpdatedAt.IsZero())
}

// The read-modify-write upsert must not clobber fields the patch does not
// target.
func TestRemoteUpsertStatus_PreservesUntargetedFields(t *testing.T) {
	tx := testTx(t)
	siteID := insertSite(t, tx, "Keeper")
	userID := uuid.NewString()
	ctx := context.Background()

	r := persist.NewRemote(tx, userID)
	_, err := r.UpsertStatus(ctx, userID, siteID, domain.StatusPatch{
		Dived: domain.BoolPtr(true),
		Notes: domain.StringPtr("epic drift"),
	})
	require.NoError(t, err)

	got, err := r.UpsertStatus(ctx, userID, siteID, domain.StatusPatch{
		Favorite: domain.BoolPtr(true),
	})
	require.NoError(t, err)

	assert.True(t, got.Dived)
	assert.True(t, got.Favorite)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "epic drift", *got.Notes)
}

func TestRemoteUpsertStatus_DateDivedRoundTrip(t *testing.T) {
	tx := testTx(t)
	siteID := insertSite(t, tx, "Dated")
	userID := uuid.NewString()
	when := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)

	r := persist.NewRemote(tx, userID)
	got, err := r.UpsertStatus(context.Background(), userID, siteID, domain.StatusPatch{
		Dived:     domain.BoolPtr(true),
		DateDived: &when,
	})
	require.NoError(t, err)

	require.NotNil(t, got.DateDived)
	assert.Equal(t, when.Year(), got.DateDived.Year())
	assert.Equal(t, when.Month(), got.DateDived.Month())
	assert.Equal(t, when.Day(), got.DateDived.Day())
}

func TestRemoteLoadStatuses_ScopedToUser(t *testing.T) {
	tx := testTx(t)
	siteID := insertSite(t, tx, "Shared Site")
	mine := uuid.NewString()
	theirs := uuid.NewString()
	ctx := context.Background()

	r := persist.NewRemote(tx, mine)
	_, err := r.UpsertStatus(ctx, mine, siteID, domain.StatusPatch{Favorite: domain.BoolPtr(true)})
	require.NoError(t, err)
	_, err = r.UpsertStatus(ctx, theirs, siteID, domain.StatusPatch{Dived: domain.BoolPtr(true)})
	require.NoError(t, err)

	statuses, err := r.LoadStatuses(ctx, mine)
	require.NoError(t, err)

	require.Len(t, statuses, 1)
	st := statuses[siteID]
	assert.True(t, st.Favorite)
	assert.False(t, st.Dived, "another user's marks must not bleed in")
}

func TestRemoteLoadStatuses_EmptyIsNotAnError(t *testing.T) {
	tx := testTx(t)

	r := persist.NewRemote(tx, "")
	statuses, err := r.LoadStatuses(context.Background(), uuid.NewString())

	require.NoError(t, err)
	assert.Empty(t, statuses)
}
