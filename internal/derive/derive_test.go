package derive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joydiver/dive-atlas/backend/internal/derive"
	"github.com/joydiver/dive-atlas/backend/internal/domain"
)

// ---- fixtures --------------------------------------------------------------

func site(id, destination, country string, lat, lng float64, diff domain.Difficulty, tags ...string) domain.SiteWithStatus {
	return domain.SiteWithStatus{Site: domain.Site{
		ID: id, Name: id,
		Destination: destination, Country: country,
		Lat: lat, Lng: lng,
		Difficulty: diff,
		Tags:       tags,
	}}
}

// catalog: 3 sites, only A is a Mexican beginner site.
func smallCatalog() []domain.SiteWithStatus {
	return []domain.SiteWithStatus{
		site("A", "Cozumel", "Mexico", 20.33, -87.03, domain.DifficultyBeginner, "reef"),
		site("B", "Cozumel", "Mexico", 20.40, -87.10, domain.DifficultyAdvanced, "wall"),
		site("C", "Sipadan", "Malaysia", 4.11, 118.63, domain.DifficultyBeginner, "sharks"),
	}
}

// ---- Filter ----------------------------------------------------------------

func TestFilter_NoConstraintsPassesAll(t *testing.T) {
	got := derive.Filter(smallCatalog(), domain.Filters{})
	assert.Len(t, got, 3)
}

// AND-composition: all non-empty dimensions must hold at once.
func TestFilter_ANDComposition(t *testing.T) {
	got := derive.Filter(smallCatalog(), domain.Filters{
		Region:     "Mexico",
		Difficulty: domain.DifficultyBeginner,
	})

	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].ID)
}

func TestFilter_ByTag(t *testing.T) {
	got := derive.Filter(smallCatalog(), domain.Filters{Type: "sharks"})

	require.Len(t, got, 1)
	assert.Equal(t, "C", got[0].ID)
}

func TestFilter_PreservesCatalogOrder(t *testing.T) {
	got := derive.Filter(smallCatalog(), domain.Filters{Region: "Mexico"})

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].ID)
	assert.Equal(t, "B", got[1].ID)
}

// ---- Groups ----------------------------------------------------------------

func TestGroups_PartitionInvariant(t *testing.T) {
	filtered := smallCatalog()
	groups := derive.Groups(filtered)

	// Every site appears in exactly one group.
	total := 0
	seen := map[string]bool{}
	for _, g := range groups {
		total += len(g.Spots)
		for _, s := range g.Spots {
			assert.False(t, seen[s.ID], "site %s in more than one group", s.ID)
			seen[s.ID] = true
		}
	}
	assert.Equal(t, len(filtered), total)
}

func TestGroups_SortedByDescendingSize(t *testing.T) {
	groups := derive.Groups(smallCatalog())

	require.Len(t, groups, 2)
	assert.Equal(t, "Cozumel", groups[0].Destination)
	assert.Len(t, groups[0].Spots, 2)
	assert.Equal(t, "Sipadan", groups[1].Destination)
}

func TestGroups_BoundsContainAllMembers(t *testing.T) {
	for _, g := range derive.Groups(smallCatalog()) {
		for _, s := range g.Spots {
			assert.True(t, g.Bounds.Contains(s.Lat, s.Lng),
				"group %s bounds must contain member %s", g.Destination, s.ID)
		}
	}
}

// Grouping label falls back destination → country → "Unknown".
func TestGroups_LabelFallback(t *testing.T) {
	groups := derive.Groups([]domain.SiteWithStatus{
		site("a", "", "Fiji", -17, 178, ""),
		site("b", "", "", 0, 0, ""),
	})

	labels := []string{groups[0].Destination, groups[1].Destination}
	assert.ElementsMatch(t, []string{"Fiji", domain.UnknownDestination}, labels)
}

// Ties keep insertion order of first encounter (stable sort).
func TestGroups_StableTieOrder(t *testing.T) {
	groups := derive.Groups([]domain.SiteWithStatus{
		site("a", "Zanzibar", "Tanzania", -6, 39, ""),
		site("b", "Anilao", "Philippines", 13, 120, ""),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "Zanzibar", groups[0].Destination)
	assert.Equal(t, "Anilao", groups[1].Destination)
}

// ---- FitBounds -------------------------------------------------------------

func TestFitBounds_NilWithoutActiveFilter(t *testing.T) {
	assert.Nil(t, derive.FitBounds(smallCatalog(), domain.Filters{}))
}

func TestFitBounds_NilWhenNothingMatches(t *testing.T) {
	assert.Nil(t, derive.FitBounds(nil, domain.Filters{Region: "Atlantis"}))
}

func TestFitBounds_SingleMatchGetsWidePadding(t *testing.T) {
	one := []domain.SiteWithStatus{site("A", "Cozumel", "Mexico", 20, -87, "")}

	b := derive.FitBounds(one, domain.Filters{Region: "Mexico"})

	require.NotNil(t, b)
	assert.InDelta(t, 20-derive.SingleSitePadding, b.MinLat, 1e-9)
	assert.InDelta(t, -87+derive.SingleSitePadding, b.MaxLng, 1e-9)
}

func TestFitBounds_MultipleMatchesGetNarrowPadding(t *testing.T) {
	two := []domain.SiteWithStatus{
		site("A", "Cozumel", "Mexico", 20, -87, ""),
		site("B", "Cozumel", "Mexico", 21, -86, ""),
	}

	b := derive.FitBounds(two, domain.Filters{Region: "Mexico"})

	require.NotNil(t, b)
	assert.InDelta(t, 20-derive.FitPadding, b.MinLat, 1e-9)
	assert.InDelta(t, 21+derive.FitPadding, b.MaxLat, 1e-9)
	for _, s := range two {
		assert.True(t, b.Contains(s.Lat, s.Lng))
	}
}

// ---- HighlightTags ---------------------------------------------------------

func TestHighlightTags_PriorityBeatsFrequency(t *testing.T) {
	sites := []domain.SiteWithStatus{
		site("a", "", "X", 0, 0, "", "muck", "sharks"),
		site("b", "", "X", 0, 0, "", "muck"),
		site("c", "", "X", 0, 0, "", "muck"),
	}

	got := derive.HighlightTags(sites, 2)

	// "sharks" is on the priority list, so it outranks the far more
	// frequent but unlisted "muck".
	require.Len(t, got, 2)
	assert.Equal(t, "sharks", got[0])
	assert.Equal(t, "muck", got[1])
}

func TestHighlightTags_PriorityListOrder(t *testing.T) {
	sites := []domain.SiteWithStatus{
		site("a", "", "X", 0, 0, "", "wreck", "turtles", "cave"),
	}

	got := derive.HighlightTags(sites, 3)

	// turtles < wreck < cave in curated order.
	assert.Equal(t, []string{"turtles", "wreck", "cave"}, got)
}

func TestHighlightTags_CaseInsensitiveCounting(t *testing.T) {
	sites := []domain.SiteWithStatus{
		site("a", "", "X", 0, 0, "", "Wreck"),
		site("b", "", "X", 0, 0, "", "wreck"),
	}

	got := derive.HighlightTags(sites, 4)

	assert.Equal(t, []string{"wreck"}, got)
}

func TestHighlightTags_EmptyInput(t *testing.T) {
	assert.Empty(t, derive.HighlightTags(nil, 4))
}

// ---- HasUserStatus ---------------------------------------------------------

func TestHasUserStatus(t *testing.T) {
	plain := site("a", "", "X", 0, 0, "")
	assert.False(t, derive.HasUserStatus(plain))

	dived := plain
	dived.Status = &domain.UserStatus{Dived: true}
	assert.True(t, derive.HasUserStatus(dived))

	favorite := plain
	favorite.Status = &domain.UserStatus{Favorite: true}
	assert.True(t, derive.HasUserStatus(favorite))

	// A note alone carries no marker state on the map.
	notes := "x"
	noted := plain
	noted.Status = &domain.UserStatus{Notes: &notes}
	assert.False(t, derive.HasUserStatus(noted))
}
