package persist_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joydiver/dive-atlas/backend/internal/domain"
	"github.com/joydiver/dive-atlas/backend/internal/persist"
)

func newLocal(t *testing.T) (*persist.Local, string) {
	t.Helper()
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return persist.NewLocal(dir, log), dir
}

// ---- CurrentUser -----------------------------------------------------------

func TestLocalCurrentUser_StableAcrossCallsAndRestarts(t *testing.T) {
	l, dir := newLocal(t)

	id1, err := l.CurrentUser(context.Background())
	require.NoError(t, err)
	require.NoError(t, uuid.Validate(id1))

	id2, err := l.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	// A fresh adapter over the same directory sees the same device id.
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reopened := persist.NewLocal(dir, log)
	id3, err := reopened.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id1, id3)
}

// ---- LoadCatalog -----------------------------------------------------------

func TestLocalLoadCatalog_ServesSeedData(t *testing.T) {
	l, _ := newLocal(t)

	sites, err := l.LoadCatalog(context.Background())

	require.NoError(t, err)
	require.NotEmpty(t, sites)
	seen := map[string]bool{}
	for _, s := range sites {
		assert.NoError(t, s.Validate())
		assert.False(t, seen[s.ID], "duplicate site id %s", s.ID)
		seen[s.ID] = true
	}
}

// ---- statuses --------------------------------------------------------------

func TestLocalStatuses_RoundTrip(t *testing.T) {
	l, _ := newLocal(t)
	ctx := context.Background()

	got, err := l.UpsertStatus(ctx, "device-1", "seed-0", domain.StatusPatch{
		Dived: domain.BoolPtr(true),
		Notes: domain.StringPtr("first dive here"),
	})
	require.NoError(t, err)
	assert.True(t, got.Dived)

	statuses, err := l.LoadStatuses(ctx, "device-1")
	require.NoError(t, err)
	require.Len(t, statuses, 1)

	st := statuses["seed-0"]
	assert.Equal(t, "device-1", st.UserID)
	assert.Equal(t, "seed-0", st.SiteID)
	assert.True(t, st.Dived)
	require.NotNil(t, st.Notes)
	assert.Equal(t, "first dive here", *st.Notes)
	assert.False(t, st.UpdatedAt.IsZero())
}

func TestLocalUpsert_PreservesUntargetedFields(t *testing.T) {
	l, _ := newLocal(t)
	ctx := context.Background()

	_, err := l.UpsertStatus(ctx, "d", "seed-1", domain.StatusPatch{Dived: domain.BoolPtr(true)})
	require.NoError(t, err)

	got, err := l.UpsertStatus(ctx, "d", "seed-1", domain.StatusPatch{Favorite: domain.BoolPtr(true)})
	require.NoError(t, err)

	assert.True(t, got.Dived, "earlier mark must survive the later patch")
	assert.True(t, got.Favorite)
}

func TestLocalStatuses_SurviveReopen(t *testing.T) {
	l, dir := newLocal(t)
	ctx := context.Background()

	_, err := l.UpsertStatus(ctx, "d", "seed-2", domain.StatusPatch{Favorite: domain.BoolPtr(true)})
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reopened := persist.NewLocal(dir, log)
	statuses, err := reopened.LoadStatuses(ctx, "d")
	require.NoError(t, err)
	assert.True(t, statuses["seed-2"].Favorite)
}

// A corrupt state file reads as empty rather than failing the session.
func TestLocal_CorruptFileStartsEmpty(t *testing.T) {
	l, dir := newLocal(t)
	ctx := context.Background()

	path := filepath.Join(dir, "dive-atlas-statuses.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	statuses, err := l.LoadStatuses(ctx, "d")
	require.NoError(t, err)
	assert.Empty(t, statuses)

	// And the adapter recovers: the next write replaces the corrupt file.
	_, err = l.UpsertStatus(ctx, "d", "seed-0", domain.StatusPatch{Dived: domain.BoolPtr(true)})
	require.NoError(t, err)
	statuses, err = l.LoadStatuses(ctx, "d")
	require.NoError(t, err)
	assert.Len(t, statuses, 1)
}

func TestLocalLoadStatuses_EmptyIsNotAnError(t *testing.T) {
	l, _ := newLocal(t)

	statuses, err := l.LoadStatuses(context.Background(), "d")

	require.NoError(t, err)
	assert.Empty(t, statuses)
}
