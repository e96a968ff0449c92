package domain

import (
	"encoding/json"
	"fmt"
)

// Bounds is a geographic bounding box. It serializes as
// [[minLat, minLng], [maxLat, maxLng]] — the pair-of-corners shape the map
// view consumes directly as a fit-bounds instruction.
type Bounds struct {
	MinLat float64
	MinLng float64
	MaxLat float64
	MaxLng float64
}

// BoundsOf computes the tight bounding box over the sites' coordinates.
// ok is false when the slice is empty.
func BoundsOf(sites []SiteWithStatus) (b Bounds, ok bool) {
	if len(sites) == 0 {
		return Bounds{}, false
	}
	b = Bounds{
		MinLat: sites[0].Lat, MaxLat: sites[0].Lat,
		MinLng: sites[0].Lng, MaxLng: sites[0].Lng,
	}
	for _, s := range sites[1:] {
		if s.Lat < b.MinLat {
			b.MinLat = s.Lat
		}
		if s.Lat > b.MaxLat {
			b.MaxLat = s.Lat
		}
		if s.Lng < b.MinLng {
			b.MinLng = s.Lng
		}
		if s.Lng > b.MaxLng {
			b.MaxLng = s.Lng
		}
	}
	return b, true
}

// Pad returns the bounds expanded by margin degrees on every side.
// The result is not clamped to valid lat/lng ranges; map libraries accept
// (and clip) padded boxes that spill over the poles or antimeridian.
func (b Bounds) Pad(margin float64) Bounds {
	return Bounds{
		MinLat: b.MinLat - margin,
		MinLng: b.MinLng - margin,
		MaxLat: b.MaxLat + margin,
		MaxLng: b.MaxLng + margin,
	}
}

// Contains reports whether the coordinate lies within the box, inclusive.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// MarshalJSON encodes the bounds as [[minLat, minLng], [maxLat, maxLng]].
func (b Bounds) MarshalJSON() ([]byte, error) {
	return json.Marshal([2][2]float64{{b.MinLat, b.MinLng}, {b.MaxLat, b.MaxLng}})
}

// UnmarshalJSON decodes the [[minLat, minLng], [maxLat, maxLng]] shape.
func (b *Bounds) UnmarshalJSON(data []byte) error {
	var corners [2][2]float64
	if err := json.Unmarshal(data, &corners); err != nil {
		return fmt.Errorf("bounds: %w", err)
	}
	b.MinLat, b.MinLng = corners[0][0], corners[0][1]
	b.MaxLat, b.MaxLng = corners[1][0], corners[1][1]
	return nil
}
