package feature

import (
	"bytes"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFeature() Feature {
	return Feature{
		ID:         "12345",
		Attributes: map[string]any{"country": "Germany"},
		Shape:      orb.MultiPolygon{{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}},
	}
}

func TestGeoJSONRoundTrip(t *testing.T) {
	f := sampleFeature()

	gj := f.ToGeoJSON()
	assert.Equal(t, "12345", gj.Properties["@osm_id"])
	assert.Equal(t, "Germany", gj.Properties["country"])

	restored, err := FromGeoJSON(gj)
	require.NoError(t, err)
	assert.Equal(t, f.ID, restored.ID)
	assert.Equal(t, f.Attributes["country"], restored.Attributes["country"])
	assert.Equal(t, f.Shape, restored.Shape)
}

func TestWriteReadLineDelimited_RoundTrip(t *testing.T) {
	features := []Feature{sampleFeature(), {
		ID:         "999",
		Attributes: map[string]any{"country": "France"},
		Shape:      orb.MultiPolygon{{{{2, 2}, {3, 2}, {3, 3}, {2, 3}, {2, 2}}}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteLineDelimited(features, &buf))

	restored, err := ReadLineDelimited(&buf)
	require.NoError(t, err)
	require.Len(t, restored, 2)
	assert.Equal(t, "12345", restored[0].ID)
	assert.Equal(t, "999", restored[1].ID)
	assert.Equal(t, "France", restored[1].Attributes["country"])
}

func TestFromGeoJSON_WrongGeometryType(t *testing.T) {
	gj := sampleFeature().ToGeoJSON()
	gj.Geometry = orb.Point{0, 0}

	_, err := FromGeoJSON(gj)
	assert.Error(t, err)
}
