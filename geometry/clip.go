package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
)

// ClipToBound returns the portion of mp that falls inside b, i.e. the
// geometric intersection "area ∩ polygon_of(rect)" from the Filler's
// refinement algorithm. Rings that are fully outside b vanish; rings fully
// inside b are kept unchanged.
func ClipToBound(mp orb.MultiPolygon, b orb.Bound) orb.MultiPolygon {
	var result orb.MultiPolygon

	for _, poly := range mp {
		var clipped orb.Polygon
		for i, ring := range poly {
			c := clip.Ring(b, ring)
			if len(c) == 0 {
				if i == 0 {
					// Outer ring vanished entirely: nothing of this polygon
					// survives the clip.
					clipped = nil
					break
				}
				continue
			}
			clipped = append(clipped, orb.Ring(c))
		}
		if len(clipped) > 0 {
			result = append(result, clipped)
		}
	}

	return result
}

// IsEmpty reports whether mp contains no rings at all.
func IsEmpty(mp orb.MultiPolygon) bool {
	for _, poly := range mp {
		if len(poly) > 0 {
			return false
		}
	}
	return true
}
