// Package process orchestrates the Filler and Merger/Writer stages: it
// computes each feature's geohash-cell decomposition in parallel, merges
// all contributions into the prefix-keyed store, and optionally emits a
// diagnostic GeoJSON union of everything indexed.
package process

import (
	"os"
	"time"

	"github.com/hauke96/sigolo/v2"
	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"geohashidx/config"
	"geohashidx/feature"
	"geohashidx/geocell"
	"geohashidx/mergewriter"
	"geohashidx/store"
	"geohashidx/workerpool"
)

// Options configures one run of the process command.
type Options struct {
	FeaturesInputPath           string
	MaxGeohashLevel             int
	GeohashDBOutputPath         string
	Config                      *config.Config
	ProcessedFeaturesOutputPath string // optional; empty disables the diagnostic
}

// Run reads the line-delimited GeoJSON feature stream, fills each feature's
// geohash decomposition, merges the contributions, and persists the index.
func Run(opts Options) error {
	startTime := time.Now()

	file, err := os.Open(opts.FeaturesInputPath)
	if err != nil {
		return errors.Wrapf(err, "unable to open features input file %s", opts.FeaturesInputPath)
	}
	defer file.Close()

	features, err := feature.ReadLineDelimited(file)
	if err != nil {
		return errors.Wrap(err, "unable to read features input file")
	}
	sigolo.Infof("Loaded %d features in %s", len(features), time.Since(startTime))

	fillStart := time.Now()
	results := make([]geocell.Result, len(features))

	err = workerpool.Run(indices(len(features)), func(i int) error {
		f := features[i]
		value, ok := f.Attributes[opts.Config.ProcessPropertyName].(string)
		if !ok {
			sigolo.Warnf("Feature %s has no string attribute %q; skipping", f.ID, opts.Config.ProcessPropertyName)
			return nil
		}

		result, fillErr := geocell.Fill(f.Shape, value, opts.MaxGeohashLevel)
		if fillErr != nil {
			sigolo.Errorf("Error filling feature %s: %+v", f.ID, fillErr)
			return nil
		}
		results[i] = result
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "filling stage failed")
	}
	sigolo.Infof("Filled %d features in %s", len(features), time.Since(fillStart))

	mergeStart := time.Now()
	aggregator := mergewriter.NewAggregator()
	for _, result := range results {
		aggregator.Add(result)
	}

	db, err := store.OpenForBuild(opts.GeohashDBOutputPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = aggregator.Flush(db); err != nil {
		return err
	}
	sigolo.Infof("Merged and wrote index in %s", time.Since(mergeStart))

	if opts.ProcessedFeaturesOutputPath != "" {
		if err = writeDiagnosticUnion(results, opts.ProcessedFeaturesOutputPath); err != nil {
			sigolo.Warnf("Error writing diagnostic processed-features output: %+v", err)
		}
	}

	sigolo.Infof("Finished processing in %s", time.Since(startTime))
	return nil
}

func indices(n int) []int {
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	return result
}

// writeDiagnosticUnion emits every indexed cell (Direct and Partial) as a
// single GeoJSON MultiPolygon Feature, for visual inspection of coverage.
func writeDiagnosticUnion(results []geocell.Result, path string) error {
	var union orb.MultiPolygon

	for _, result := range results {
		for _, d := range result.Direct {
			union = append(union, directCellPolygon(d.Hash))
		}
		for _, p := range result.Partial {
			union = append(union, p.Shape...)
		}
	}

	gjFeature := geojson.NewFeature(union)
	data, err := gjFeature.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "unable to marshal diagnostic union")
	}

	return errors.Wrap(os.WriteFile(path, data, 0644), "unable to write diagnostic union file")
}

func directCellPolygon(hash string) orb.Polygon {
	box := geohash.BoundingBox(hash)
	ring := orb.Ring{
		{box.MinLng, box.MinLat},
		{box.MaxLng, box.MinLat},
		{box.MaxLng, box.MaxLat},
		{box.MinLng, box.MaxLat},
		{box.MinLng, box.MinLat},
	}
	return orb.Polygon{ring}
}
