// Package osmsrc wraps the OSM PBF blob reader and tag iterator used by the
// Extractor. It loads a PBF file once into memory and hands out fresh,
// independent scanners for each of the Extractor's three passes.
package osmsrc

import (
	"bytes"
	"context"
	"os"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/pkg/errors"

	"geohashidx/workerpool"
)

// Reader gives repeated, independent passes over one PBF file's contents.
type Reader struct {
	data []byte
}

// Open reads the whole PBF file into memory so that it can be scanned
// multiple times without touching disk again.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read OSM PBF file %s", path)
	}
	return &Reader{data: data}, nil
}

func (r *Reader) scanner() osm.Scanner {
	return osmpbf.New(context.Background(), bytes.NewReader(r.data), workerpool.Size())
}

// ScanRelations decodes every relation in the file, calling visit for each.
func (r *Reader) ScanRelations(visit func(*osm.Relation) error) error {
	scanner := r.scanner()
	defer scanner.Close()

	for scanner.Scan() {
		if relation, ok := scanner.Object().(*osm.Relation); ok {
			if err := visit(relation); err != nil {
				return err
			}
		}
	}
	return errors.Wrap(scanner.Err(), "error scanning relations")
}

// ScanWays decodes every way in the file, calling visit for each.
func (r *Reader) ScanWays(visit func(*osm.Way) error) error {
	scanner := r.scanner()
	defer scanner.Close()

	for scanner.Scan() {
		if way, ok := scanner.Object().(*osm.Way); ok {
			if err := visit(way); err != nil {
				return err
			}
		}
	}
	return errors.Wrap(scanner.Err(), "error scanning ways")
}

// ScanNodes decodes every node (dense or sparse) in the file, calling visit
// for each.
func (r *Reader) ScanNodes(visit func(*osm.Node) error) error {
	scanner := r.scanner()
	defer scanner.Close()

	for scanner.Scan() {
		if node, ok := scanner.Object().(*osm.Node); ok {
			if err := visit(node); err != nil {
				return err
			}
		}
	}
	return errors.Wrap(scanner.Err(), "error scanning nodes")
}
