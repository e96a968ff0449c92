// Package derive contains the pure derivation functions computed on read
// over the store's state: the filtered subset, destination groupings with
// bounding boxes, viewport-fit targets, and highlight tags. Nothing here
// has side effects or owns state.
package derive

import (
	"sort"
	"strings"

	"github.com/joydiver/dive-atlas/backend/internal/domain"
)

// Padding margins, in degrees, for the various bounding boxes.
const (
	// GroupPadding pads destination group boxes.
	GroupPadding = 0.2
	// FitPadding pads the filter-change fit target when several sites match.
	FitPadding = 0.5
	// SingleSitePadding pads the fit target when exactly one site matches,
	// so the viewport is not unusably tight.
	SingleSitePadding = 2.0
)

// Filter returns the sites passing every constrained filter dimension,
// preserving catalog order.
func Filter(sites []domain.SiteWithStatus, f domain.Filters) []domain.SiteWithStatus {
	out := []domain.SiteWithStatus{}
	for _, s := range sites {
		if f.Match(s.Site) {
			out = append(out, s)
		}
	}
	return out
}

// Groups buckets the (already filtered) sites by destination label —
// destination, falling back to country, then "Unknown" — and computes a
// padded bounding box per group from its members' coordinate extrema.
// Groups are sorted by descending member count; ties keep the insertion
// order of first encounter.
func Groups(filtered []domain.SiteWithStatus) []domain.DestinationGroup {
	byLabel := map[string]int{}
	groups := []domain.DestinationGroup{}

	for _, s := range filtered {
		label := domain.GroupLabel(s.Site)
		i, ok := byLabel[label]
		if !ok {
			i = len(groups)
			byLabel[label] = i
			groups = append(groups, domain.DestinationGroup{
				Destination: label,
				Country:     s.Country,
			})
		}
		groups[i].Spots = append(groups[i].Spots, s)
	}

	for i := range groups {
		b, _ := domain.BoundsOf(groups[i].Spots) // groups are never empty
		groups[i].Bounds = b.Pad(GroupPadding)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Spots) > len(groups[j].Spots)
	})
	return groups
}

// FitBounds computes the one-shot viewport target produced by a filter
// change: the padded box over all matching sites. It returns nil unless at
// least one filter is active and at least one site matches. A single match
// gets the larger padding.
func FitBounds(filtered []domain.SiteWithStatus, f domain.Filters) *domain.Bounds {
	if !f.Active() || len(filtered) == 0 {
		return nil
	}
	b, _ := domain.BoundsOf(filtered)
	pad := FitPadding
	if len(filtered) == 1 {
		pad = SingleSitePadding
	}
	padded := b.Pad(pad)
	return &padded
}

// priorityTags is the curated ordering of "interesting" tags. Tags on this
// list rank before any unlisted tag, in list order; unlisted tags rank by
// descending frequency.
var priorityTags = []string{
	"sharks", "manta rays", "whale sharks", "turtles",
	"wreck", "cave", "macro", "reef", "wall", "cenote",
}

// HighlightTags extracts up to n tags to headline a set of sites:
// lowercased, counted across all sites, ranked by the curated priority list
// first and then by descending frequency. Ties among unlisted tags keep a
// stable alphabetical order so output is deterministic.
func HighlightTags(sites []domain.SiteWithStatus, n int) []string {
	counts := map[string]int{}
	for _, s := range sites {
		for _, tag := range s.Tags {
			counts[strings.ToLower(tag)]++
		}
	}
	if len(counts) == 0 {
		return []string{}
	}

	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	sort.SliceStable(tags, func(i, j int) bool {
		pi, pj := tagPriority(tags[i]), tagPriority(tags[j])
		if pi != -1 && pj != -1 {
			return pi < pj
		}
		if pi != -1 || pj != -1 {
			return pi != -1
		}
		return counts[tags[i]] > counts[tags[j]]
	})

	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}

// tagPriority returns the tag's index in the priority list, or -1.
func tagPriority(tag string) int {
	for i, p := range priorityTags {
		if p == tag {
			return i
		}
	}
	return -1
}

// HasUserStatus reports whether the user has marked the site as dived or
// favorited. The map layer uses this as a rendering hint: marked sites are
// never clustered, unmarked ones are. Notes alone do not count — a note
// without a mark carries no visual state on the map.
func HasUserStatus(s domain.SiteWithStatus) bool {
	return s.Status != nil && (s.Status.Dived || s.Status.Favorite)
}
