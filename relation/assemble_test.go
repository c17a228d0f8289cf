package relation

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_SimpleSquare(t *testing.T) {
	// Four ways, each one edge of a square, in scrambled order and
	// orientation, all tagged Outer.
	ways := map[osm.WayID]*Way{
		1: {ID: 1, Nodes: []osm.NodeID{1, 2}},
		2: {ID: 2, Nodes: []osm.NodeID{4, 3}}, // reversed relative to walk direction
		3: {ID: 3, Nodes: []osm.NodeID{3, 2}}, // reversed
		4: {ID: 4, Nodes: []osm.NodeID{4, 1}},
	}
	coords := NodeCoords{
		1: {0, 0},
		2: {10, 0},
		3: {10, 10},
		4: {0, 10},
	}

	rel := WithMembers{
		ID: 100,
		Members: []Member{
			{WayID: 1, Role: Outer},
			{WayID: 2, Role: Outer},
			{WayID: 3, Role: Outer},
			{WayID: 4, Role: Outer},
		},
	}

	shape, ok := Assemble(rel, ways, coords)
	require.True(t, ok)
	require.Len(t, shape, 1)
	require.Len(t, shape[0], 1) // no holes
	assert.Equal(t, shape[0][0][0], shape[0][0][len(shape[0][0])-1], "ring must close")
}

func TestAssemble_OuterWithHole(t *testing.T) {
	ways := map[osm.WayID]*Way{
		1: {ID: 1, Nodes: []osm.NodeID{1, 2, 3, 4, 1}},    // outer square, closed in one way
		2: {ID: 2, Nodes: []osm.NodeID{5, 6, 7, 8, 5}}, // inner square, closed in one way
	}
	coords := NodeCoords{
		1: {0, 0},
		2: {10, 0},
		3: {10, 10},
		4: {0, 10},
		5: {4, 4},
		6: {6, 4},
		7: {6, 6},
		8: {4, 6},
	}

	rel := WithMembers{
		ID: 200,
		Members: []Member{
			{WayID: 1, Role: Outer},
			{WayID: 2, Role: Inner},
		},
	}

	shape, ok := Assemble(rel, ways, coords)
	require.True(t, ok)
	require.Len(t, shape, 1)
	require.Len(t, shape[0], 2, "outer ring plus one attached hole")
}

func TestAssemble_UnclosableRing_Skipped(t *testing.T) {
	// Way 2 does not connect back to way 1's start: the ring cannot close.
	ways := map[osm.WayID]*Way{
		1: {ID: 1, Nodes: []osm.NodeID{1, 2}},
		2: {ID: 2, Nodes: []osm.NodeID{3, 4}},
	}
	coords := NodeCoords{
		1: {0, 0},
		2: {10, 0},
		3: {20, 0},
		4: {30, 0},
	}

	rel := WithMembers{
		ID: 300,
		Members: []Member{
			{WayID: 1, Role: Outer},
			{WayID: 2, Role: Outer},
		},
	}

	_, ok := Assemble(rel, ways, coords)
	assert.False(t, ok)
}

func TestAssemble_MissingWay_Skipped(t *testing.T) {
	ways := map[osm.WayID]*Way{
		1: {ID: 1, Nodes: []osm.NodeID{1, 2}},
	}
	coords := NodeCoords{1: {0, 0}, 2: {10, 0}}

	rel := WithMembers{
		ID: 400,
		Members: []Member{
			{WayID: 1, Role: Outer},
			{WayID: 99, Role: Outer}, // not present in ways
		},
	}

	_, ok := Assemble(rel, ways, coords)
	assert.False(t, ok)
}

func TestAssemble_MissingNode_Skipped(t *testing.T) {
	ways := map[osm.WayID]*Way{
		1: {ID: 1, Nodes: []osm.NodeID{1, 2, 3, 1}},
	}
	coords := NodeCoords{
		1: {0, 0},
		2: {10, 0},
		// node 3's coordinate is missing
	}

	rel := WithMembers{
		ID: 500,
		Members: []Member{
			{WayID: 1, Role: Outer},
		},
	}

	_, ok := Assemble(rel, ways, coords)
	assert.False(t, ok)
}

func TestAssemble_ZeroOuterPolygons_Skipped(t *testing.T) {
	rel := WithMembers{ID: 600}

	_, ok := Assemble(rel, map[osm.WayID]*Way{}, NodeCoords{})
	assert.False(t, ok)
}

func TestRoleFromString(t *testing.T) {
	assert.Equal(t, Outer, RoleFromString("outer"))
	assert.Equal(t, Inner, RoleFromString("inner"))
	assert.Equal(t, Inner, RoleFromString(""))
	assert.Equal(t, Inner, RoleFromString("something-else"))
}
