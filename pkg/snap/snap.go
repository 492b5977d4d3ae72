// Package snap finds the graph node closest to an arbitrary coordinate.
package snap

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"github.com/azybler/roadgraph/pkg/geo"
	"github.com/azybler/roadgraph/pkg/graph"
)

// DefaultMaxDistance is the snapping radius used when none is given.
const DefaultMaxDistance = 500.0

var (
	// ErrPointTooFar is returned when the nearest node is beyond the snapping radius.
	ErrPointTooFar = errors.New("point too far from any node")
	// ErrNoNodes is returned when the snapper was built from an empty node set.
	ErrNoNodes = errors.New("no nodes to snap to")
)

// Result is a snapped query point.
type Result struct {
	Node     graph.Node
	Distance float64 // meters from the query point
}

// Snapper answers nearest-node queries over a fixed node set.
type Snapper struct {
	tree    rtree.RTreeG[uint32]
	nodes   []graph.Node
	maxDist float64
}

// NewSnapper indexes nodes in an R-tree keyed by (lng, lat). A maxDist of
// zero or less selects DefaultMaxDistance.
func NewSnapper(nodes []graph.Node, maxDist float64) *Snapper {
	if maxDist <= 0 {
		maxDist = DefaultMaxDistance
	}
	s := &Snapper{nodes: nodes, maxDist: maxDist}
	for i, n := range nodes {
		p := [2]float64{n.Lng, n.Lat}
		s.tree.Insert(p, p, uint32(i))
	}
	return s
}

// Len returns the number of indexed nodes.
func (s *Snapper) Len() int {
	return s.tree.Len()
}

// Nearest returns the node closest to (lat, lng). Ties on distance go to the
// node listed first.
//
// The R-tree yields nodes by planar distance in degrees, which is not the
// great-circle order once longitude degrees shrink away from the equator.
// Candidates are re-ranked by haversine distance until the planar distance,
// converted to a lower bound in meters, exceeds the best match found.
func (s *Snapper) Nearest(lat, lng float64) (Result, error) {
	if s.tree.Len() == 0 {
		return Result{}, ErrNoNodes
	}

	scale := s.metersPerDegreeBound(lat)
	p := [2]float64{lng, lat}
	best := uint32(math.MaxUint32)
	bestDist := math.Inf(1)
	s.tree.Nearby(rtree.BoxDist[float64, uint32](p, p, nil),
		func(_, _ [2]float64, idx uint32, dist float64) bool {
			if math.Sqrt(dist)*scale > math.Min(bestDist, s.maxDist) {
				return false
			}
			n := s.nodes[idx]
			d := geo.Haversine(lat, lng, n.Lat, n.Lng)
			if d < bestDist || (d == bestDist && idx < best) {
				best, bestDist = idx, d
			}
			return true
		})

	if bestDist > s.maxDist {
		return Result{}, ErrPointTooFar
	}
	return Result{Node: s.nodes[best], Distance: bestDist}, nil
}

// metersPerDegreeBound returns a scale that turns a planar distance in degrees
// into a lower bound on the great-circle distance, valid for any node within
// maxDist of a query at lat. A degree of longitude is shortest at the highest
// latitude such a node can have; the 1% margin covers the planar approximation.
// Near the poles the bound drops to zero and every node is examined.
func (s *Snapper) metersPerDegreeBound(lat float64) float64 {
	maxLat := math.Min(math.Abs(lat)+s.maxDist/geo.MetersPerDegree, 90)
	return geo.MetersPerDegree * math.Cos(maxLat*math.Pi/180) * 0.99
}
