// Package resolve implements the single-point and batch-point lookup
// protocols that consume the persisted geohash index.
package resolve

import (
	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"geohashidx/codec"
	"geohashidx/geometry"
	"geohashidx/store"
)

// Resolver answers point lookups against a read-only store.
type Resolver struct {
	s        *store.Store
	maxLevel int
}

// New creates a Resolver bound to s, encoding points to maxLevel geohash
// characters.
func New(s *store.Store, maxLevel int) *Resolver {
	return &Resolver{s: s, maxLevel: maxLevel}
}

// Point is one (longitude, latitude) query coordinate.
type Point struct {
	Lon float64
	Lat float64
}

// Lookup resolves a single point, walking its geohash prefixes from length 1
// upward. It returns the empty string, with no error, if no prefix yields a
// match — that is a normal "unmatched" outcome, not a failure.
func (r *Resolver) Lookup(p Point) (string, error) {
	hash := geohash.EncodeWithPrecision(p.Lat, p.Lon, uint(r.maxLevel))

	for length := 1; length <= r.maxLevel; length++ {
		prefix := hash[:length]

		raw, found, err := r.s.Get(prefix)
		if err != nil {
			return "", errors.Wrapf(err, "store read failed for prefix %s", prefix)
		}
		if !found {
			continue
		}

		value, err := codec.Decode(raw)
		if err != nil {
			return "", errors.Wrapf(err, "corrupt value at prefix %s", prefix)
		}

		if match, ok := resolveValue(value, p); ok {
			return match, nil
		}
	}

	return "", nil
}

// LookupBatch resolves N points with a single multi-get against the store,
// building the concatenated list of all prefix keys (N * maxLevel of them)
// in point-major order. Output order equals input order; unmatched points
// yield the empty string rather than being omitted.
func (r *Resolver) LookupBatch(points []Point) ([]string, error) {
	keys := make([]string, 0, len(points)*r.maxLevel)
	hashes := make([]string, len(points))

	for i, p := range points {
		hash := geohash.EncodeWithPrecision(p.Lat, p.Lon, uint(r.maxLevel))
		hashes[i] = hash
		for length := 1; length <= r.maxLevel; length++ {
			keys = append(keys, hash[:length])
		}
	}

	values, found, err := r.s.MultiGet(keys)
	if err != nil {
		return nil, errors.Wrap(err, "batch store read failed")
	}

	results := make([]string, len(points))
	for i, p := range points {
		base := i * r.maxLevel

		for length := 1; length <= r.maxLevel; length++ {
			idx := base + length - 1
			if !found[idx] {
				continue
			}

			value, decodeErr := codec.Decode(values[idx])
			if decodeErr != nil {
				return nil, errors.Wrapf(decodeErr, "corrupt value at prefix %s", hashes[i][:length])
			}

			if match, ok := resolveValue(value, p); ok {
				results[i] = match
				break
			}
		}
	}

	return results, nil
}

// resolveValue applies the single-prefix resolution rule: a DirectValue
// always matches; an Undecided value matches its first option (in stored
// order) whose clipped shape contains p.
func resolveValue(value codec.GeohashValue, p Point) (string, bool) {
	switch value.Kind {
	case codec.KindDirect:
		return value.Direct, true
	case codec.KindUndecided:
		pt := orb.Point{p.Lon, p.Lat}
		for _, option := range value.Options {
			if geometry.MultiPolygonContainsPoint(option.Shape, pt) {
				return option.Value, true
			}
		}
	}
	return "", false
}
