// Package feature holds the Feature record that flows from the Extractor
// into the Filler, and its line-delimited GeoJSON serialization.
package feature

import (
	"bufio"
	"io"
	"time"

	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// Feature is a single assembled relation: its id, the filtered/renamed
// attribute map, and its multi-polygon shape.
type Feature struct {
	ID         string
	Attributes map[string]any
	Shape      orb.MultiPolygon
}

// ToGeoJSON converts f into a *geojson.Feature with "@osm_id" alongside the
// configured attributes, matching the property-prefixing convention the
// teacher repo uses for OSM-derived metadata.
func (f Feature) ToGeoJSON() *geojson.Feature {
	gj := geojson.NewFeature(f.Shape)
	gj.Properties["@osm_id"] = f.ID
	for key, value := range f.Attributes {
		gj.Properties[key] = value
	}
	return gj
}

// FromGeoJSON reconstructs a Feature from a parsed *geojson.Feature.
func FromGeoJSON(gj *geojson.Feature) (Feature, error) {
	mp, ok := gj.Geometry.(orb.MultiPolygon)
	if !ok {
		return Feature{}, errors.Errorf("feature geometry is %T, want MultiPolygon", gj.Geometry)
	}

	id, _ := gj.Properties["@osm_id"].(string)
	attributes := make(map[string]any, len(gj.Properties))
	for key, value := range gj.Properties {
		if key == "@osm_id" {
			continue
		}
		attributes[key] = value
	}

	return Feature{ID: id, Attributes: attributes, Shape: mp}, nil
}

// WriteLineDelimited writes one GeoJSON Feature object per line, the format
// the "extract" command produces and the "process" command consumes.
func WriteLineDelimited(features []Feature, writer io.Writer) error {
	sigolo.Debugf("Write %d features as line-delimited GeoJSON", len(features))
	startTime := time.Now()

	buffered := bufio.NewWriter(writer)
	for _, f := range features {
		data, err := f.ToGeoJSON().MarshalJSON()
		if err != nil {
			return errors.Wrapf(err, "unable to marshal feature %s", f.ID)
		}
		if _, err = buffered.Write(data); err != nil {
			return errors.Wrap(err, "unable to write feature line")
		}
		if err = buffered.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "unable to write newline")
		}
	}

	if err := buffered.Flush(); err != nil {
		return errors.Wrap(err, "unable to flush feature writer")
	}

	sigolo.Debugf("Wrote features in %s", time.Since(startTime))
	return nil
}

// ReadLineDelimited reads the line-delimited GeoJSON Feature stream produced
// by WriteLineDelimited.
func ReadLineDelimited(reader io.Reader) ([]Feature, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	var features []Feature
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		gj, err := geojson.UnmarshalFeature(line)
		if err != nil {
			return nil, errors.Wrap(err, "unable to parse GeoJSON feature line")
		}

		f, err := FromGeoJSON(gj)
		if err != nil {
			return nil, errors.Wrap(err, "unable to convert GeoJSON feature")
		}
		features = append(features, f)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading feature stream")
	}

	return features, nil
}
