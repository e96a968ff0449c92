// Package domain contains the core data types for the Dive Atlas backend.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (persist, derive, store, catalog, status,
// handler).
package domain

import (
	"fmt"
	"time"
)

// Difficulty is the skill level required for a dive site.
// The zero value means the difficulty is unknown.
type Difficulty string

// Known difficulty levels, in ascending order of required skill.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// Valid reports whether d is one of the known difficulty levels or empty.
func (d Difficulty) Valid() bool {
	switch d {
	case "", DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert:
		return true
	}
	return false
}

// Site is an immutable catalog entry: a named dive location with a
// geographic coordinate. Destination is a finer-grained grouping label
// within Country; both may be empty for incomplete entries.
type Site struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Destination string     `json:"destination,omitempty"`
	Country     string     `json:"country,omitempty"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	DepthMin    *int       `json:"depth_min,omitempty"` // meters
	DepthMax    *int       `json:"depth_max,omitempty"` // meters
	BestSeason  string     `json:"best_season,omitempty"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Validate checks the required fields of a site. Only truly unusable
// entries fail: a missing id or name, or a coordinate outside the valid
// lat/lng range. Everything optional (destination, country, difficulty,
// depths, season, tags) is tolerated as absent so the catalog stays
// browsable with incomplete data. An unknown difficulty is normalized to
// empty rather than rejected.
func (s *Site) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: site id is required", ErrValidation)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: site name is required", ErrValidation)
	}
	if s.Lat < -90 || s.Lat > 90 {
		return fmt.Errorf("%w: lat %v out of range [-90, 90]", ErrValidation, s.Lat)
	}
	if s.Lng < -180 || s.Lng > 180 {
		return fmt.Errorf("%w: lng %v out of range [-180, 180]", ErrValidation, s.Lng)
	}
	if !s.Difficulty.Valid() {
		s.Difficulty = ""
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return nil
}

// WithStatus joins the site with an optional user status into the derived
// view entity the UI layer consumes. A nil status means the user has never
// interacted with the site.
func (s Site) WithStatus(status *UserStatus) SiteWithStatus {
	return SiteWithStatus{Site: s, Status: status}
}

// SiteWithStatus is the read-only view entity: a catalog site joined with
// the current user's status for it, if any.
type SiteWithStatus struct {
	Site
	Status *UserStatus `json:"status"`
}
