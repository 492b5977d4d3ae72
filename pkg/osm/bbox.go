package osm

import (
	"fmt"
	"strings"
)

// BBox is a geographic bounding box. The zero value means no filtering.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero reports whether the box is unset.
func (b BBox) IsZero() bool {
	return b == BBox{}
}

// Contains reports whether the point lies inside the box, edges included.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

func (b BBox) String() string {
	return fmt.Sprintf("lat [%.4f, %.4f], lng [%.4f, %.4f]", b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
}

// ParseBBox parses "minLat,minLng,maxLat,maxLng". An empty string yields the
// zero box.
func ParseBBox(s string) (BBox, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BBox{}, nil
	}
	var b BBox
	if _, err := fmt.Sscanf(s, "%f,%f,%f,%f", &b.MinLat, &b.MinLng, &b.MaxLat, &b.MaxLng); err != nil {
		return BBox{}, fmt.Errorf("invalid bbox %q (expected minLat,minLng,maxLat,maxLng): %w", s, err)
	}
	if b.MinLat > b.MaxLat || b.MinLng > b.MaxLng {
		return BBox{}, fmt.Errorf("invalid bbox %q: min exceeds max", s)
	}
	if b.MinLat < -90 || b.MaxLat > 90 || b.MinLng < -180 || b.MaxLng > 180 {
		return BBox{}, fmt.Errorf("invalid bbox %q: out of range", s)
	}
	return b, nil
}
