package domain

// UnknownDestination is the sentinel grouping label for sites that carry
// neither a destination nor a country.
const UnknownDestination = "Unknown"

// DestinationGroup is a derived drill-down grouping: all currently-filtered
// sites sharing a destination label, with a padded bounding box the map can
// frame when the group is selected. Groups are ordered by descending member
// count; ties keep the insertion order of first encounter.
type DestinationGroup struct {
	Destination string           `json:"destination"`
	Country     string           `json:"country"` // representative: first member's country
	Spots       []SiteWithStatus `json:"spots"`
	Bounds      Bounds           `json:"bounds"`
}

// GroupLabel returns the destination grouping key for a site:
// destination, falling back to country, then UnknownDestination.
func GroupLabel(s Site) string {
	if s.Destination != "" {
		return s.Destination
	}
	if s.Country != "" {
		return s.Country
	}
	return UnknownDestination
}
