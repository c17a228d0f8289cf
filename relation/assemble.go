// Package relation reconstructs closed multi-polygons from the raw
// relation/way/node triples the Extractor collects from a PBF file. Ring
// stitching tolerates partial data: any ring that cannot be closed causes
// the whole relation to be skipped rather than failing the import.
package relation

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"geohashidx/geometry"
)

// Role distinguishes outer and inner members of a relation. It is modelled
// as its own type rather than a boolean flag so the outer/inner partition is
// type-level, matching the tagged pair the source format uses.
type Role int

const (
	Outer Role = iota
	Inner
)

func (r Role) String() string {
	switch r {
	case Outer:
		return "outer"
	case Inner:
		return "inner"
	}
	return "inner"
}

// RoleFromString maps an OSM member role string to a Role. Any role other
// than "outer" is treated as Inner, matching the spec's classification.
func RoleFromString(role string) Role {
	if role == "outer" {
		return Outer
	}
	return Inner
}

// Member is a tagged (way-id, role) pair, preserving the order in which the
// relation referenced its ways.
type Member struct {
	WayID osm.WayID
	Role  Role
}

// WithMembers is a selected relation together with its ordered member list
// and the filtered/renamed attribute map the config asked for.
type WithMembers struct {
	ID         osm.RelationID
	Members    []Member
	Attributes map[string]any
}

// Way is the minimal way data ring stitching needs: its ordered node list.
type Way struct {
	ID    osm.WayID
	Nodes []osm.NodeID
}

// NodeCoords maps node ids to their coordinates.
type NodeCoords map[osm.NodeID]orb.Point

// Assemble builds the multi-polygon for one relation. It returns false
// (with no error) whenever the relation's data is incomplete: a referenced
// way is missing, a referenced node is missing, or a ring cannot be closed.
// These are the soft per-relation failures the Extractor is required to
// tolerate.
func Assemble(rel WithMembers, ways map[osm.WayID]*Way, coords NodeCoords) (orb.MultiPolygon, bool) {
	var outerWays, innerWays []*Way

	for _, member := range rel.Members {
		way, ok := ways[member.WayID]
		if !ok {
			return nil, false
		}
		if member.Role == Outer {
			outerWays = append(outerWays, way)
		} else {
			innerWays = append(innerWays, way)
		}
	}

	outerRings, ok := stitchRings(outerWays, coords)
	if !ok {
		return nil, false
	}
	innerRings, ok := stitchRings(innerWays, coords)
	if !ok {
		return nil, false
	}

	var outerPolygons []orb.Polygon
	for _, ring := range outerRings {
		outerPolygons = append(outerPolygons, orb.Polygon{ring})
	}

	for _, hole := range innerRings {
		attachHoleToOuter(outerPolygons, hole)
	}

	if len(outerPolygons) == 0 {
		return nil, false
	}

	return orb.MultiPolygon(outerPolygons), true
}

// attachHoleToOuter appends hole as an interior ring of the first outer
// polygon that geometrically contains it.
func attachHoleToOuter(outerPolygons []orb.Polygon, hole orb.Ring) {
	if len(hole) == 0 {
		return
	}
	representative := hole[0]

	for i := range outerPolygons {
		if geometry.PolygonContainsPoint(outerPolygons[i], representative) {
			outerPolygons[i] = append(outerPolygons[i], hole)
			return
		}
	}
}

// stitchRings concatenates an unordered set of ways head-to-tail into closed
// rings. A single partition (all outer members, or all inner members) may
// yield more than one ring. Returns ok=false if any ring cannot be closed.
func stitchRings(ways []*Way, coords NodeCoords) ([]orb.Ring, bool) {
	remaining := make([]*Way, len(ways))
	copy(remaining, ways)

	var rings []orb.Ring

	for len(remaining) > 0 {
		current := remaining[0]
		remaining = remaining[1:]

		nodeIDs := append([]osm.NodeID{}, current.Nodes...)
		if len(nodeIDs) == 0 {
			return nil, false
		}
		start := nodeIDs[0]
		end := nodeIDs[len(nodeIDs)-1]

		for start != end {
			idx, reversed, found := findJoiningWay(remaining, end)
			if !found {
				return nil, false
			}

			next := remaining[idx]
			remaining = append(remaining[:idx], remaining[idx+1:]...)

			nextNodes := append([]osm.NodeID{}, next.Nodes...)
			if len(nextNodes) == 0 {
				return nil, false
			}
			if reversed {
				reverseNodeIDs(nextNodes)
			}

			// Append all of the matched way's nodes except the joining
			// endpoint, which already ends the accumulated ring.
			nodeIDs = append(nodeIDs, nextNodes[1:]...)
			end = nodeIDs[len(nodeIDs)-1]
		}

		ring, ok := ringFromNodeIDs(nodeIDs, coords)
		if !ok {
			return nil, false
		}
		rings = append(rings, ring)
	}

	return rings, true
}

// findJoiningWay searches remaining for a way whose first or last node
// equals end. If the match is on the way's last node, reversed is true: the
// caller must reverse that way's node order before appending it.
func findJoiningWay(remaining []*Way, end osm.NodeID) (index int, reversed bool, found bool) {
	for i, way := range remaining {
		if len(way.Nodes) == 0 {
			continue
		}
		if way.Nodes[0] == end {
			return i, false, true
		}
		if way.Nodes[len(way.Nodes)-1] == end {
			return i, true, true
		}
	}
	return 0, false, false
}

func reverseNodeIDs(ids []osm.NodeID) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// ringFromNodeIDs resolves coordinates for a closed node-id loop. Returns
// ok=false if any referenced node's coordinates are missing.
func ringFromNodeIDs(ids []osm.NodeID, coords NodeCoords) (orb.Ring, bool) {
	ring := make(orb.Ring, len(ids))
	for i, id := range ids {
		pt, ok := coords[id]
		if !ok {
			return nil, false
		}
		ring[i] = pt
	}
	return ring, true
}
