package domain

// Filters is the transient filter state applied to the catalog. An empty
// string means "no constraint" for that dimension. All three dimensions are
// independent and combined with AND semantics.
type Filters struct {
	// Region filters by the site's country label.
	Region string `json:"region,omitempty"`
	// Difficulty filters by exact difficulty level.
	Difficulty Difficulty `json:"difficulty,omitempty"`
	// Type filters by tag membership (e.g. "wreck", "reef").
	Type string `json:"type,omitempty"`
}

// Active reports whether at least one filter dimension is constrained.
func (f Filters) Active() bool {
	return f.Region != "" || f.Difficulty != "" || f.Type != ""
}

// Match reports whether the site passes every constrained dimension.
func (f Filters) Match(s Site) bool {
	if f.Region != "" && s.Country != f.Region {
		return false
	}
	if f.Difficulty != "" && s.Difficulty != f.Difficulty {
		return false
	}
	if f.Type != "" && !containsTag(s.Tags, f.Type) {
		return false
	}
	return true
}

// FilterPatch is a partial filter update. Nil fields are left untouched;
// a pointer to the empty string clears that dimension.
type FilterPatch struct {
	Region     *string `json:"region,omitempty"`
	Difficulty *string `json:"difficulty,omitempty"`
	Type       *string `json:"type,omitempty"`
}

// Apply merges the patch into the filters.
func (f Filters) Apply(p FilterPatch) Filters {
	if p.Region != nil {
		f.Region = *p.Region
	}
	if p.Difficulty != nil {
		f.Difficulty = Difficulty(*p.Difficulty)
	}
	if p.Type != nil {
		f.Type = *p.Type
	}
	return f
}

// SetsRegion reports whether the patch itself sets a non-empty region.
// The store uses this to decide when a region filter is "newly set" and the
// current site selection should be cleared.
func (p FilterPatch) SetsRegion() bool {
	return p.Region != nil && *p.Region != ""
}

func containsTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}
