package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func square(minX, minY, maxX, maxY float64) orb.Ring {
	return orb.Ring{
		{minX, minY},
		{maxX, minY},
		{maxX, maxY},
		{minX, maxY},
		{minX, minY},
	}
}

func TestRingContainsPoint(t *testing.T) {
	ring := square(0, 0, 10, 10)

	assert.True(t, RingContainsPoint(ring, orb.Point{5, 5}))
	assert.False(t, RingContainsPoint(ring, orb.Point{50, 50}))
}

func TestPolygonContainsPoint_Hole(t *testing.T) {
	outer := square(0, 0, 10, 10)
	hole := square(2, 2, 4, 4)
	poly := orb.Polygon{outer, hole}

	assert.True(t, PolygonContainsPoint(poly, orb.Point{1, 1}), "outside the hole, inside the outer ring")
	assert.False(t, PolygonContainsPoint(poly, orb.Point{3, 3}), "inside the hole")
}

func TestMultiPolygonContainsPoint(t *testing.T) {
	mp := orb.MultiPolygon{
		{square(0, 0, 5, 5)},
		{square(10, 10, 15, 15)},
	}

	assert.True(t, MultiPolygonContainsPoint(mp, orb.Point{12, 12}))
	assert.False(t, MultiPolygonContainsPoint(mp, orb.Point{7, 7}))
}

func TestBoundFullyInside(t *testing.T) {
	mp := orb.MultiPolygon{{square(0, 0, 10, 10)}}
	inner := orb.Bound{Min: orb.Point{2, 2}, Max: orb.Point{8, 8}}
	straddling := orb.Bound{Min: orb.Point{8, 8}, Max: orb.Point{12, 12}}

	assert.True(t, BoundFullyInside(mp, inner))
	assert.False(t, BoundFullyInside(mp, straddling))
}

func TestBoundIntersects(t *testing.T) {
	mp := orb.MultiPolygon{{square(0, 0, 10, 10)}}
	overlapping := orb.Bound{Min: orb.Point{8, 8}, Max: orb.Point{12, 12}}
	disjoint := orb.Bound{Min: orb.Point{20, 20}, Max: orb.Point{30, 30}}

	assert.True(t, BoundIntersects(mp, overlapping))
	assert.False(t, BoundIntersects(mp, disjoint))
}
