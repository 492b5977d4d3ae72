// Package osm extracts a drivable road graph from an OpenStreetMap PBF file.
package osm

import (
	"context"
	"fmt"
	"io"
	"log"
	"slices"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"github.com/azybler/roadgraph/pkg/geo"
	"github.com/azybler/roadgraph/pkg/graph"
)

// ParseResult is the extracted road graph: every node used by at least one
// kept edge, sorted by id, and directed edges in way order.
type ParseResult struct {
	Nodes []graph.Node
	Edges []graph.Edge
}

// ParseOptions configures the extractor.
type ParseOptions struct {
	BBox BBox // if non-zero, keep only segments with both endpoints inside
}

// Direction is the travel allowed along a way relative to its node order.
type Direction uint8

const (
	Closed   Direction = 0
	Forward  Direction = 1 << 0
	Backward Direction = 1 << 1
	Both               = Forward | Backward
)

// drivable reports whether a car may use a way with these tags.
func drivable(tags osm.Tags) bool {
	switch tags.Find("highway") {
	case "motorway", "motorway_link",
		"trunk", "trunk_link",
		"primary", "primary_link",
		"secondary", "secondary_link",
		"tertiary", "tertiary_link",
		"unclassified", "residential", "living_street", "service":
	default:
		return false
	}
	if tags.Find("area") == "yes" {
		return false
	}
	switch tags.Find("access") {
	case "no", "private":
		return false
	}
	return tags.Find("motor_vehicle") != "no"
}

// direction derives the allowed travel from the highway class and oneway tags.
// An explicit oneway value wins over the one implied by motorways and
// roundabouts. Reversible ways are time-dependent and treated as closed.
func direction(tags osm.Tags) Direction {
	d := Both
	if hw := tags.Find("highway"); hw == "motorway" || hw == "motorway_link" ||
		tags.Find("junction") == "roundabout" {
		d = Forward
	}

	switch tags.Find("oneway") {
	case "yes", "true", "1":
		d = Forward
	case "-1", "reverse":
		d = Backward
	case "no":
		d = Both
	case "reversible":
		d = Closed
	}
	return d
}

type way struct {
	nodes []osm.NodeID
	dir   Direction
}

type coord struct {
	lat, lng float64
}

// Parse reads a PBF file in two passes: ways first to learn which nodes are
// needed, then nodes for their coordinates. The reader is rewound between
// passes.
func Parse(ctx context.Context, rs io.ReadSeeker, opt ParseOptions) (*ParseResult, error) {
	needed := make(map[osm.NodeID]struct{})
	var ways []way

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || len(w.Nodes) < 2 || !drivable(w.Tags) {
			continue
		}
		dir := direction(w.Tags)
		if dir == Closed {
			continue
		}
		ids := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			ids[i] = wn.ID
			needed[wn.ID] = struct{}{}
		}
		ways = append(ways, way{nodes: ids, dir: dir})
	}
	err := scanner.Err()
	scanner.Close()
	if err != nil {
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	log.Printf("Pass 1 complete: %d ways, %d referenced nodes", len(ways), len(needed))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	coords := make(map[osm.NodeID]coord, len(needed))
	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, ok := needed[n.ID]; ok {
			coords[n.ID] = coord{lat: n.Lat, lng: n.Lon}
		}
	}
	err = scanner.Err()
	scanner.Close()
	if err != nil {
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	log.Printf("Pass 2 complete: %d node coordinates collected", len(coords))

	res, skipped, outside := buildRecords(ways, coords, opt.BBox)
	if skipped > 0 {
		log.Printf("Warning: skipped %d segments due to missing node coordinates", skipped)
	}
	if outside > 0 {
		log.Printf("Filtered %d segments outside bounding box", outside)
	}
	log.Printf("Built %d nodes, %d directed edges", len(res.Nodes), len(res.Edges))
	return res, nil
}

// buildRecords turns ways into directed edges. Each segment yields a forward
// edge, a backward edge, or both, all carrying the segment's great-circle
// length rounded to centimeters.
func buildRecords(ways []way, coords map[osm.NodeID]coord, box BBox) (res *ParseResult, skipped, outside int) {
	res = &ParseResult{}
	used := make(map[osm.NodeID]struct{})
	useBBox := !box.IsZero()

	for _, w := range ways {
		for i := 0; i < len(w.nodes)-1; i++ {
			from, to := w.nodes[i], w.nodes[i+1]
			a, okA := coords[from]
			b, okB := coords[to]
			if !okA || !okB {
				skipped++
				continue
			}
			if useBBox && (!box.Contains(a.lat, a.lng) || !box.Contains(b.lat, b.lng)) {
				outside++
				continue
			}

			dist := geo.RoundCentimeters(geo.Haversine(a.lat, a.lng, b.lat, b.lng))
			if w.dir&Forward != 0 {
				res.Edges = append(res.Edges, graph.Edge{From: int64(from), To: int64(to), Distance: dist})
			}
			if w.dir&Backward != 0 {
				res.Edges = append(res.Edges, graph.Edge{From: int64(to), To: int64(from), Distance: dist})
			}
			used[from] = struct{}{}
			used[to] = struct{}{}
		}
	}

	ids := make([]osm.NodeID, 0, len(used))
	for id := range used {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	res.Nodes = make([]graph.Node, len(ids))
	for i, id := range ids {
		c := coords[id]
		res.Nodes[i] = graph.Node{ID: int64(id), Lat: c.lat, Lng: c.lng}
	}
	return res, skipped, outside
}
