// Package mergewriter aggregates GeohashIndex entries produced by many
// Filler runs into the persisted prefix-keyed store, applying the
// Direct/Undecided merge rules from the index design.
package mergewriter

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"geohashidx/codec"
	"geohashidx/geocell"
	"geohashidx/store"
)

// cellContribution accumulates, per key, either the last Direct value seen
// or the ordered list of Partial options.
type cellContribution struct {
	lastDirect  string
	hasDirect   bool
	partials    []codec.Option
	mixedWarned bool
}

// Aggregator collects contributions from many Fill results before they are
// flushed to the store. It is not safe for concurrent use; callers run one
// Aggregator per build and feed it sequentially (the Merger is order-
// insensitive except for the documented last-write-wins rule among
// Directs at the same key).
type Aggregator struct {
	cells map[string]*cellContribution
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{cells: map[string]*cellContribution{}}
}

// Add folds one Filler Result into the aggregation.
func (a *Aggregator) Add(result geocell.Result) {
	for _, d := range result.Direct {
		a.addDirect(d.Hash, d.Value)
	}
	for _, p := range result.Partial {
		a.addPartial(p.Hash, p.Value, p.Shape)
	}
}

func (a *Aggregator) get(hash string) *cellContribution {
	c, ok := a.cells[hash]
	if !ok {
		c = &cellContribution{}
		a.cells[hash] = c
	}
	return c
}

func (a *Aggregator) addDirect(hash, value string) {
	c := a.get(hash)
	if c.hasDirect {
		sigolo.Warnf("Geohash cell %s has colliding Direct contributions ('%s' overwritten by '%s'); indexed polygons may overlap", hash, c.lastDirect, value)
	}
	if len(c.partials) > 0 && !c.mixedWarned {
		sigolo.Warnf("Geohash cell %s has both Direct and Partial contributions; dropping partials in favor of Direct '%s'. This usually means the indexed polygons overlap", hash, value)
		c.mixedWarned = true
	}
	c.hasDirect = true
	c.lastDirect = value
}

func (a *Aggregator) addPartial(hash, value string, shape orb.MultiPolygon) {
	c := a.get(hash)
	if c.hasDirect {
		sigolo.Warnf("Geohash cell %s has both Direct and Partial contributions; dropping partial '%s' in favor of Direct. This usually means the indexed polygons overlap", hash, value)
		return
	}
	c.partials = append(c.partials, codec.Option{Value: value, Shape: shape})
}

// Flush writes every aggregated cell to s as an encoded GeohashValue and
// flushes the store to stable storage.
func (a *Aggregator) Flush(s *store.Store) error {
	for hash, contribution := range a.cells {
		value := resolveValue(contribution)

		encoded, err := codec.Encode(value)
		if err != nil {
			return errors.Wrapf(err, "unable to encode value for key %s", hash)
		}

		if err = s.Set(hash, encoded); err != nil {
			return errors.Wrapf(err, "unable to write key %s", hash)
		}
	}

	return errors.Wrap(s.Flush(), "unable to flush store after merge")
}

func resolveValue(c *cellContribution) codec.GeohashValue {
	if c.hasDirect {
		return codec.NewDirect(c.lastDirect)
	}
	return codec.NewUndecided(c.partials)
}
