// Package extractor orchestrates the Extractor stage: three passes over an
// OSM PBF file (relations, then ways, then nodes), tag-predicate selection,
// ring-stitched relation assembly, and Feature emission.
package extractor

import (
	"strconv"
	"time"

	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"

	"geohashidx/config"
	"geohashidx/feature"
	"geohashidx/osmsrc"
	"geohashidx/relation"
	"geohashidx/workerpool"
)

// Extract runs the three-pass extraction described in the Extractor's
// algorithm: select relations by tag predicate, retain only the ways and
// nodes those relations reference, then assemble each relation's
// multi-polygon and emit it as a Feature.
func Extract(pbfPath string, cfg *config.Config) ([]feature.Feature, error) {
	reader, err := osmsrc.Open(pbfPath)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()

	selected, wayIDs, err := selectRelations(reader, cfg)
	if err != nil {
		return nil, err
	}
	sigolo.Debugf("Pass 1: selected %d relations referencing %d ways", len(selected), len(wayIDs))

	ways, nodeIDs, err := collectWays(reader, wayIDs)
	if err != nil {
		return nil, err
	}
	sigolo.Debugf("Pass 2: retained %d ways referencing %d nodes", len(ways), len(nodeIDs))

	coords, err := collectNodes(reader, nodeIDs)
	if err != nil {
		return nil, err
	}
	sigolo.Debugf("Pass 3: retained %d node coordinates", len(coords))

	features, skipped := assembleFeatures(selected, ways, coords)
	sigolo.Infof("Assembled %d features (%d relations skipped as incomplete) in %s", len(features), skipped, time.Since(startTime))

	return features, nil
}

// selectRelations decodes every relation and keeps those whose tags satisfy
// the config's filter predicate, recording the union of ways they
// reference.
func selectRelations(reader *osmsrc.Reader, cfg *config.Config) ([]relation.WithMembers, map[osm.WayID]bool, error) {
	var selected []relation.WithMembers
	wayIDs := map[osm.WayID]bool{}

	err := reader.ScanRelations(func(rel *osm.Relation) error {
		tags := rel.Tags.Map()
		if !cfg.MatchesAll(tags) {
			return nil
		}

		members := make([]relation.Member, 0, len(rel.Members))
		for _, m := range rel.Members {
			if m.Type != osm.TypeWay {
				continue
			}
			wayID := osm.WayID(m.Ref)
			members = append(members, relation.Member{
				WayID: wayID,
				Role:  relation.RoleFromString(m.Role),
			})
			wayIDs[wayID] = true
		}

		selected = append(selected, relation.WithMembers{
			ID:         rel.ID,
			Members:    members,
			Attributes: cfg.ExtractTags(tags),
		})
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "relations pass failed")
	}

	return selected, wayIDs, nil
}

// collectWays decodes every way and keeps those referenced by wayIDs,
// recording the union of nodes they reference.
func collectWays(reader *osmsrc.Reader, wayIDs map[osm.WayID]bool) (map[osm.WayID]*relation.Way, map[osm.NodeID]bool, error) {
	ways := map[osm.WayID]*relation.Way{}
	nodeIDs := map[osm.NodeID]bool{}

	err := reader.ScanWays(func(way *osm.Way) error {
		if !wayIDs[way.ID] {
			return nil
		}

		nodes := make([]osm.NodeID, len(way.Nodes))
		for i, ref := range way.Nodes {
			nodes[i] = ref.ID
			nodeIDs[ref.ID] = true
		}

		ways[way.ID] = &relation.Way{ID: way.ID, Nodes: nodes}
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "ways pass failed")
	}

	return ways, nodeIDs, nil
}

// collectNodes decodes every node (dense or sparse) and keeps the
// coordinates of those referenced by nodeIDs.
func collectNodes(reader *osmsrc.Reader, nodeIDs map[osm.NodeID]bool) (relation.NodeCoords, error) {
	coords := relation.NodeCoords{}

	err := reader.ScanNodes(func(node *osm.Node) error {
		if nodeIDs[node.ID] {
			coords[node.ID] = node.Point()
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "nodes pass failed")
	}

	return coords, nil
}

// assembleFeatures stitches each selected relation's rings into a
// multi-polygon, in parallel across the worker pool. A relation whose
// data is incomplete is skipped with no error, per the Extractor's soft
// per-relation failure policy.
func assembleFeatures(selected []relation.WithMembers, ways map[osm.WayID]*relation.Way, coords relation.NodeCoords) ([]feature.Feature, int) {
	type outcome struct {
		feature feature.Feature
		ok      bool
	}
	type indexed struct {
		index int
		rel   relation.WithMembers
	}

	items := make([]indexed, len(selected))
	for i, rel := range selected {
		items[i] = indexed{index: i, rel: rel}
	}
	outcomes := make([]outcome, len(selected))

	_ = workerpool.Run(items, func(item indexed) error {
		shape, ok := relation.Assemble(item.rel, ways, coords)
		if !ok {
			sigolo.Debugf("Skipping relation %d: incomplete ring data", item.rel.ID)
			return nil
		}
		outcomes[item.index] = outcome{
			feature: feature.Feature{
				ID:         formatRelationID(item.rel.ID),
				Attributes: item.rel.Attributes,
				Shape:      shape,
			},
			ok: true,
		}
		return nil
	})

	var features []feature.Feature
	skipped := 0
	for _, o := range outcomes {
		if o.ok {
			features = append(features, o.feature)
		} else {
			skipped++
		}
	}

	return features, skipped
}

func formatRelationID(id osm.RelationID) string {
	return strconv.FormatInt(int64(id), 10)
}
