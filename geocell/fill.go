// Package geocell implements the Filler: breadth-first geohash refinement
// of one polygon's coverage, producing Direct entries for fully contained
// cells and Partial entries (with clipped geometry) for the cells a
// max-depth boundary only partially covers.
package geocell

import (
	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"geohashidx/geometry"
)

// Alphabet is the base32 geohash character set used throughout the index:
// digits and lowercase letters, excluding "a", "i", "l" and "o".
const Alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// Direct asserts that the cell identified by Hash is fully contained in the
// polygon whose indexed attribute is Value.
type Direct struct {
	Hash  string
	Value string
}

// Partial asserts that, at the maximum configured depth, the cell
// identified by Hash is only partially covered. Shape is the intersection
// of the polygon with the cell's bounding box, retained for point-in-polygon
// tie-breaking at query time.
type Partial struct {
	Hash  string
	Value string
	Shape orb.MultiPolygon
}

// Result is everything the Filler produced for one polygon.
type Result struct {
	Direct  []Direct
	Partial []Partial
}

type frontierCell struct {
	hash string
	area orb.MultiPolygon
}

// Fill computes the Direct/Partial decomposition of shape up to maxLevel
// characters of geohash precision. Order of the returned entries is
// unspecified; callers must tolerate arbitrary order.
func Fill(shape orb.MultiPolygon, value string, maxLevel int) (Result, error) {
	if maxLevel < 1 {
		return Result{}, errors.Errorf("max geohash level must be >= 1, got %d", maxLevel)
	}

	frontier := make([]frontierCell, 0, len(Alphabet))
	for _, ch := range Alphabet {
		frontier = append(frontier, frontierCell{hash: string(ch), area: shape})
	}

	var result Result

	for level := 1; level <= maxLevel; level++ {
		next := make([]frontierCell, 0, len(frontier)*len(Alphabet))

		for _, cell := range frontier {
			rect := cellBound(cell.hash)

			if geometry.BoundFullyInside(cell.area, rect) {
				result.Direct = append(result.Direct, Direct{Hash: cell.hash, Value: value})
				continue
			}

			if !geometry.BoundIntersects(cell.area, rect) {
				continue // disjoint: prune this subtree
			}

			clipped := geometry.ClipToBound(cell.area, rect)
			if geometry.IsEmpty(clipped) {
				continue
			}

			if level < maxLevel {
				for _, ch := range Alphabet {
					next = append(next, frontierCell{hash: cell.hash + string(ch), area: clipped})
				}
			} else {
				result.Partial = append(result.Partial, Partial{Hash: cell.hash, Value: value, Shape: clipped})
			}
		}

		frontier = next
	}

	return result, nil
}

// cellBound decodes a geohash string into its lon/lat bounding rectangle.
func cellBound(hash string) orb.Bound {
	box := geohash.BoundingBox(hash)
	return orb.Bound{
		Min: orb.Point{box.MinLng, box.MinLat},
		Max: orb.Point{box.MaxLng, box.MaxLat},
	}
}
