// Package geometry provides the small set of 2D polygon predicates the
// Filler and Resolver need: point-in-polygon containment, bounding-box
// containment/intersection, and bounding-box clipping. It operates on
// github.com/paulmach/orb types so geometry flows through the rest of the
// pipeline (GeoJSON I/O, the binary codec) without conversion.
package geometry

import "github.com/paulmach/orb"

// RingContainsPoint reports whether pt lies inside ring using the standard
// even-odd ray-casting rule. Points exactly on the boundary may resolve
// either way, which is acceptable for this index: such points are, by
// construction, vanishingly rare relative to cell sizes.
func RingContainsPoint(ring orb.Ring, pt orb.Point) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}

	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		intersects := (pi.Lat() > pt.Lat()) != (pj.Lat() > pt.Lat())
		if !intersects {
			continue
		}
		xCross := (pj.Lon()-pi.Lon())*(pt.Lat()-pi.Lat())/(pj.Lat()-pi.Lat()) + pi.Lon()
		if pt.Lon() < xCross {
			inside = !inside
		}
	}

	return inside
}

// PolygonContainsPoint reports whether pt is inside the outer ring of poly
// and not inside any of its holes.
func PolygonContainsPoint(poly orb.Polygon, pt orb.Point) bool {
	if len(poly) == 0 {
		return false
	}
	if !RingContainsPoint(poly[0], pt) {
		return false
	}
	for _, hole := range poly[1:] {
		if RingContainsPoint(hole, pt) {
			return false
		}
	}
	return true
}

// MultiPolygonContainsPoint reports whether pt is inside any polygon of mp.
func MultiPolygonContainsPoint(mp orb.MultiPolygon, pt orb.Point) bool {
	for _, poly := range mp {
		if PolygonContainsPoint(poly, pt) {
			return true
		}
	}
	return false
}

// boundCorners returns the four corners of b in ring order (counter-clockwise
// starting at the lower-left corner).
func boundCorners(b orb.Bound) [4]orb.Point {
	return [4]orb.Point{
		{b.Min.Lon(), b.Min.Lat()},
		{b.Max.Lon(), b.Min.Lat()},
		{b.Max.Lon(), b.Max.Lat()},
		{b.Min.Lon(), b.Max.Lat()},
	}
}

// segmentsIntersect reports whether segments p1-p2 and p3-p4 cross.
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d := func(a, b, c orb.Point) float64 {
		return (b.Lon()-a.Lon())*(c.Lat()-a.Lat()) - (b.Lat()-a.Lat())*(c.Lon()-a.Lon())
	}

	d1 := d(p3, p4, p1)
	d2 := d(p3, p4, p2)
	d3 := d(p1, p2, p3)
	d4 := d(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

// ringCrossesBound reports whether any edge of ring crosses the boundary of
// b, i.e. whether ring's boundary passes through the interior of b.
func ringCrossesBound(ring orb.Ring, b orb.Bound) bool {
	corners := boundCorners(b)
	n := len(ring)
	for i := 0; i < n; i++ {
		p1 := ring[i]
		p2 := ring[(i+1)%n]
		for c := 0; c < 4; c++ {
			if segmentsIntersect(p1, p2, corners[c], corners[(c+1)%4]) {
				return true
			}
		}
	}
	return false
}

// BoundFullyInside reports whether the rectangle b lies entirely within mp:
// every corner of b is contained in mp and no ring of mp crosses b's
// boundary (which would carve a hole or notch out of the rectangle).
func BoundFullyInside(mp orb.MultiPolygon, b orb.Bound) bool {
	for _, corner := range boundCorners(b) {
		if !MultiPolygonContainsPoint(mp, corner) {
			return false
		}
	}

	for _, poly := range mp {
		for _, ring := range poly {
			if ringCrossesBound(ring, b) {
				return false
			}
		}
	}

	return true
}

// BoundIntersects reports whether b and mp share any area at all: a quick
// bounding-box reject followed by a corner-containment / boundary-crossing
// test.
func BoundIntersects(mp orb.MultiPolygon, b orb.Bound) bool {
	if !mp.Bound().Intersects(b) {
		return false
	}

	for _, corner := range boundCorners(b) {
		if MultiPolygonContainsPoint(mp, corner) {
			return true
		}
	}

	for _, poly := range mp {
		for _, ring := range poly {
			for _, pt := range ring {
				if b.Contains(pt) {
					return true
				}
			}
			if ringCrossesBound(ring, b) {
				return true
			}
		}
	}

	return false
}
