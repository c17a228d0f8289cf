// Package codec implements the compact, length-prefixed tagged-union binary
// encoding for the persisted GeohashValue, following the little-endian,
// explicit-field-width conventions the teacher repo uses for its own binary
// formats (see DESIGN.md for why this is a purpose-built codec rather than
// an adaptation of the teacher's reflection-based BinarySchema).
package codec

import (
	"encoding/binary"
	"math"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Kind tags which variant of GeohashValue is encoded.
type Kind byte

const (
	KindDirect Kind = iota
	KindUndecided
)

// Option is one competing polygon at an Undecided cell.
type Option struct {
	Value string
	Shape orb.MultiPolygon
}

// GeohashValue is the persisted value stored at a geohash-prefix key.
type GeohashValue struct {
	Kind    Kind
	Direct  string   // set when Kind == KindDirect
	Options []Option // set when Kind == KindUndecided
}

// NewDirect builds a DirectValue.
func NewDirect(value string) GeohashValue {
	return GeohashValue{Kind: KindDirect, Direct: value}
}

// NewUndecided builds an Undecided value, preserving the given option order.
func NewUndecided(options []Option) GeohashValue {
	return GeohashValue{Kind: KindUndecided, Options: options}
}

// Encode serializes v into the persisted binary format:
//
//	byte    kind (0 = Direct, 1 = Undecided)
//	Direct:   uint32 len | bytes value
//	Undecided: uint32 count | count * (uint32 len | bytes value | encoded MultiPolygon)
func Encode(v GeohashValue) ([]byte, error) {
	buf := make([]byte, 0, 64)
	buf = append(buf, byte(v.Kind))

	switch v.Kind {
	case KindDirect:
		buf = appendString(buf, v.Direct)
	case KindUndecided:
		buf = appendUint32(buf, uint32(len(v.Options)))
		for _, option := range v.Options {
			buf = appendString(buf, option.Value)
			buf = appendMultiPolygon(buf, option.Shape)
		}
	default:
		return nil, errors.Errorf("unknown GeohashValue kind %d", v.Kind)
	}

	return buf, nil
}

// Decode deserializes a value produced by Encode. It errors on truncated or
// malformed input rather than panicking, since store corruption must never
// bring down the Resolver.
func Decode(data []byte) (GeohashValue, error) {
	if len(data) < 1 {
		return GeohashValue{}, errors.New("encoded GeohashValue is empty")
	}

	kind := Kind(data[0])
	pos := 1

	switch kind {
	case KindDirect:
		value, newPos, err := readString(data, pos)
		if err != nil {
			return GeohashValue{}, errors.Wrap(err, "decoding DirectValue")
		}
		pos = newPos
		return GeohashValue{Kind: KindDirect, Direct: value}, checkExhausted(data, pos)

	case KindUndecided:
		count, pos, err := readUint32(data, pos)
		if err != nil {
			return GeohashValue{}, errors.Wrap(err, "decoding Undecided option count")
		}

		options := make([]Option, 0, count)
		for i := uint32(0); i < count; i++ {
			var value string
			value, pos, err = readString(data, pos)
			if err != nil {
				return GeohashValue{}, errors.Wrapf(err, "decoding Undecided option %d value", i)
			}

			var shape orb.MultiPolygon
			shape, pos, err = readMultiPolygon(data, pos)
			if err != nil {
				return GeohashValue{}, errors.Wrapf(err, "decoding Undecided option %d shape", i)
			}

			options = append(options, Option{Value: value, Shape: shape})
		}

		return GeohashValue{Kind: KindUndecided, Options: options}, checkExhausted(data, pos)

	default:
		return GeohashValue{}, errors.Errorf("unknown GeohashValue kind byte %d", kind)
	}
}

func checkExhausted(data []byte, pos int) error {
	if pos != len(data) {
		return errors.Errorf("trailing %d bytes after decoding GeohashValue", len(data)-pos)
	}
	return nil
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendFloat64(buf []byte, v float64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	return append(buf, tmp[:]...)
}

func appendString(buf []byte, s string) []byte {
	buf = appendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func appendMultiPolygon(buf []byte, mp orb.MultiPolygon) []byte {
	buf = appendUint32(buf, uint32(len(mp)))
	for _, poly := range mp {
		buf = appendUint32(buf, uint32(len(poly)))
		for _, ring := range poly {
			buf = appendUint32(buf, uint32(len(ring)))
			for _, pt := range ring {
				buf = appendFloat64(buf, pt.Lon())
				buf = appendFloat64(buf, pt.Lat())
			}
		}
	}
	return buf
}

func readUint32(data []byte, pos int) (uint32, int, error) {
	if pos+4 > len(data) {
		return 0, pos, errors.New("unexpected end of data reading uint32")
	}
	return binary.LittleEndian.Uint32(data[pos:]), pos + 4, nil
}

func readFloat64(data []byte, pos int) (float64, int, error) {
	if pos+8 > len(data) {
		return 0, pos, errors.New("unexpected end of data reading float64")
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(data[pos:])), pos + 8, nil
}

func readString(data []byte, pos int) (string, int, error) {
	length, pos, err := readUint32(data, pos)
	if err != nil {
		return "", pos, err
	}
	if pos+int(length) > len(data) {
		return "", pos, errors.New("unexpected end of data reading string")
	}
	return string(data[pos : pos+int(length)]), pos + int(length), nil
}

func readMultiPolygon(data []byte, pos int) (orb.MultiPolygon, int, error) {
	numPolygons, pos, err := readUint32(data, pos)
	if err != nil {
		return nil, pos, err
	}

	mp := make(orb.MultiPolygon, 0, numPolygons)
	for p := uint32(0); p < numPolygons; p++ {
		numRings, newPos, err := readUint32(data, pos)
		if err != nil {
			return nil, pos, err
		}
		pos = newPos

		poly := make(orb.Polygon, 0, numRings)
		for r := uint32(0); r < numRings; r++ {
			numPoints, newPos, err := readUint32(data, pos)
			if err != nil {
				return nil, pos, err
			}
			pos = newPos

			ring := make(orb.Ring, numPoints)
			for i := uint32(0); i < numPoints; i++ {
				var lon, lat float64
				lon, pos, err = readFloat64(data, pos)
				if err != nil {
					return nil, pos, err
				}
				lat, pos, err = readFloat64(data, pos)
				if err != nil {
					return nil, pos, err
				}
				ring[i] = orb.Point{lon, lat}
			}
			poly = append(poly, ring)
		}
		mp = append(mp, poly)
	}

	return mp, pos, nil
}
