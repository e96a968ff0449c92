package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joydiver/dive-atlas/backend/internal/domain"
	"github.com/joydiver/dive-atlas/backend/seed"
)

// stateFileName is the single namespaced on-device key holding the local
// state: a synthetic device user id plus a JSON mapping from site id to
// partial status.
const stateFileName = "dive-atlas-statuses.json"

// localState is the on-disk shape. Statuses hold only the user-editable
// fields; identity and timestamps are reconstructed on load.
type localState struct {
	DeviceID string                 `json:"device_id"`
	Statuses map[string]localStatus `json:"statuses"`
}

type localStatus struct {
	Want      bool       `json:"want"`
	Dived     bool       `json:"dived"`
	Favorite  bool       `json:"favorite"`
	Notes     *string    `json:"notes"`
	DateDived *time.Time `json:"date_dived"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Local is the on-device fallback implementation of Adapter, used when no
// remote backend is configured. The catalog comes from the embedded seed
// dataset; statuses live in one JSON file under dir. Load and save are
// best-effort: a missing or corrupt file reads as empty, and write errors
// are swallowed (logged at debug) rather than propagated — the worst case
// is an unsaved annotation, never a broken catalog view.
type Local struct {
	path string
	log  *slog.Logger
}

// NewLocal constructs a Local adapter storing state under dir, creating the
// directory if needed (best-effort).
func NewLocal(dir string, log *slog.Logger) *Local {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Debug("local state dir not created", "dir", dir, "error", err)
	}
	return &Local{path: filepath.Join(dir, stateFileName), log: log}
}

// CurrentUser returns the synthetic per-device user id, generating and
// persisting one on first use. It never fails: if the id cannot be saved,
// statuses simply won't survive a restart, which is acceptable for the
// fallback mode.
func (l *Local) CurrentUser(ctx context.Context) (string, error) {
	st := l.load()
	if st.DeviceID == "" {
		st.DeviceID = uuid.NewString()
		l.save(st)
	}
	return st.DeviceID, nil
}

// LoadCatalog returns the embedded seed catalog.
func (l *Local) LoadCatalog(ctx context.Context) ([]domain.Site, error) {
	sites, err := seed.Sites()
	if err != nil {
		return nil, fmt.Errorf("persist.Local.LoadCatalog: %w", err)
	}
	return sites, nil
}

// LoadStatuses returns the stored statuses keyed by site id. The userID
// argument is ignored beyond being stamped on the records — the file is
// per-device, not per-user.
func (l *Local) LoadStatuses(ctx context.Context, userID string) (map[string]domain.UserStatus, error) {
	st := l.load()
	out := make(map[string]domain.UserStatus, len(st.Statuses))
	for siteID, ls := range st.Statuses {
		out[siteID] = ls.toDomain(userID, siteID)
	}
	return out, nil
}

// UpsertStatus merges the patch into the stored record for the site and
// writes the file back. It is synchronous and treated as always succeeding.
func (l *Local) UpsertStatus(ctx context.Context, userID, siteID string, patch domain.StatusPatch) (domain.UserStatus, error) {
	st := l.load()
	if st.Statuses == nil {
		st.Statuses = map[string]localStatus{}
	}

	current := domain.NewStatus(userID, siteID)
	if ls, ok := st.Statuses[siteID]; ok {
		current = ls.toDomain(userID, siteID)
	}
	merged := current.Apply(patch)

	st.Statuses[siteID] = localStatus{
		Want:      merged.Want,
		Dived:     merged.Dived,
		Favorite:  merged.Favorite,
		Notes:     merged.Notes,
		DateDived: merged.DateDived,
		UpdatedAt: merged.UpdatedAt,
	}
	l.save(st)
	return merged, nil
}

// load reads the state file. Any failure — missing file, bad JSON — yields
// an empty state.
func (l *Local) load() localState {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return localState{}
	}
	var st localState
	if err := json.Unmarshal(data, &st); err != nil {
		l.log.Debug("local state unreadable, starting empty", "path", l.path, "error", err)
		return localState{}
	}
	return st
}

// save writes the state file, swallowing errors.
func (l *Local) save(st localState) {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		l.log.Debug("local state not serializable", "error", err)
		return
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		l.log.Debug("local state not saved", "path", l.path, "error", err)
	}
}

func (ls localStatus) toDomain(userID, siteID string) domain.UserStatus {
	return domain.UserStatus{
		UserID:    userID,
		SiteID:    siteID,
		Want:      ls.Want,
		Dived:     ls.Dived,
		Favorite:  ls.Favorite,
		Notes:     ls.Notes,
		DateDived: ls.DateDived,
		UpdatedAt: ls.UpdatedAt,
	}
}
