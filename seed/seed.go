// Package seed embeds the static bundled dive-site catalog. It serves two
// roles: the catalog for the local-fallback adapter, and the emergency
// fallback when the remote catalog fetch fails — guaranteeing the UI is
// never empty.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joydiver/dive-atlas/backend/internal/domain"
)

//go:embed sites.json
var fs embed.FS

// seedSite mirrors the JSON shape of sites.json: no id or created_at —
// those are synthesized at load time.
type seedSite struct {
	Name        string   `json:"name"`
	Destination string   `json:"destination"`
	Country     string   `json:"country"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Difficulty  string   `json:"difficulty"`
	DepthMin    *int     `json:"depth_min"`
	DepthMax    *int     `json:"depth_max"`
	BestSeason  string   `json:"best_season"`
	Tags        []string `json:"tags"`
}

// Sites decodes the embedded catalog into domain sites. IDs are synthetic
// and positional ("seed-0", "seed-1", ...) so local statuses keyed by them
// stay stable across restarts. An error here means the embedded file is
// broken, which is a build defect, not a runtime condition.
func Sites() ([]domain.Site, error) {
	data, err := fs.ReadFile("sites.json")
	if err != nil {
		return nil, fmt.Errorf("seed.Sites: read: %w", err)
	}

	var raw []seedSite
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("seed.Sites: decode: %w", err)
	}

	now := time.Now().UTC()
	sites := make([]domain.Site, 0, len(raw))
	for i, r := range raw {
		s := domain.Site{
			ID:          fmt.Sprintf("seed-%d", i),
			Name:        r.Name,
			Destination: r.Destination,
			Country:     r.Country,
			Lat:         r.Lat,
			Lng:         r.Lng,
			Difficulty:  domain.Difficulty(r.Difficulty),
			DepthMin:    r.DepthMin,
			DepthMax:    r.DepthMax,
			BestSeason:  r.BestSeason,
			Tags:        r.Tags,
			CreatedAt:   now,
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("seed.Sites: site %d (%s): %w", i, r.Name, err)
		}
		sites = append(sites, s)
	}
	return sites, nil
}
