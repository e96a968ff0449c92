package domain

import "time"

// UserStatus is a user's mutable annotation for one site, keyed by the
// (UserID, SiteID) pair — at most one record per pair. Records are created
// lazily on the first status-affecting action, never deleted, and
// overwritten whole on every persist (upsert), preserving fields the
// current mutation does not target.
type UserStatus struct {
	UserID    string     `json:"user_id"`
	SiteID    string     `json:"site_id"`
	Want      bool       `json:"want"` // persisted but unused by the current UI
	Dived     bool       `json:"dived"`
	Favorite  bool       `json:"favorite"`
	Notes     *string    `json:"notes"`
	DateDived *time.Time `json:"date_dived"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewStatus returns the default (all-false, empty) status record for a
// (user, site) pair. Used when a mutation touches a site the user has no
// prior record for.
func NewStatus(userID, siteID string) UserStatus {
	return UserStatus{
		UserID:    userID,
		SiteID:    siteID,
		UpdatedAt: time.Now().UTC(),
	}
}

// StatusPatch is a partial status update. Nil fields are left untouched by
// Apply, which is what gives the mutation protocol its field-preservation
// guarantee: toggling "dived" must not clobber "favorite" or "notes".
type StatusPatch struct {
	Want      *bool      `json:"want,omitempty"`
	Dived     *bool      `json:"dived,omitempty"`
	Favorite  *bool      `json:"favorite,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	DateDived *time.Time `json:"date_dived,omitempty"`
}

// Apply merges the patch into the status, overwriting only the targeted
// fields, and bumps UpdatedAt.
func (s UserStatus) Apply(p StatusPatch) UserStatus {
	if p.Want != nil {
		s.Want = *p.Want
	}
	if p.Dived != nil {
		s.Dived = *p.Dived
	}
	if p.Favorite != nil {
		s.Favorite = *p.Favorite
	}
	if p.Notes != nil {
		notes := *p.Notes
		s.Notes = &notes
	}
	if p.DateDived != nil {
		d := *p.DateDived
		s.DateDived = &d
	}
	s.UpdatedAt = time.Now().UTC()
	return s
}

// BoolPtr returns a pointer to b, for building patches inline.
func BoolPtr(b bool) *bool { return &b }

// StringPtr returns a pointer to s, for building patches inline.
func StringPtr(s string) *string { return &s }
