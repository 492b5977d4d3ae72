package graph

import "math"

// Ingest validates raw node and edge records and loads them into a Graph.
// Parallel edges are kept, in input order. The input slices are copied.
func Ingest(nodes []Node, edges []Edge) (*Graph, error) {
	// Step 1: Register node ids, rejecting duplicates and bad coordinates.
	seen := make(map[int64]struct{}, len(nodes))
	for i, n := range nodes {
		if _, dup := seen[n.ID]; dup {
			return nil, &ValidationError{Reason: ReasonDuplicateNode, Position: i, NodeID: n.ID}
		}
		if detail := checkCoord(n.Lat, n.Lng); detail != "" {
			return nil, &ValidationError{Reason: ReasonMalformedNode, Position: i, NodeID: n.ID, Detail: detail}
		}
		seen[n.ID] = struct{}{}
	}

	// Step 2: Every edge must connect two known nodes with a usable distance.
	for i, e := range edges {
		if _, ok := seen[e.From]; !ok {
			return nil, &ValidationError{Reason: ReasonUnknownNode, Position: i, NodeID: e.From, From: e.From, To: e.To}
		}
		if _, ok := seen[e.To]; !ok {
			return nil, &ValidationError{Reason: ReasonUnknownNode, Position: i, NodeID: e.To, From: e.From, To: e.To}
		}
		if math.IsNaN(e.Distance) || math.IsInf(e.Distance, 0) {
			return nil, &ValidationError{Reason: ReasonMalformedEdge, Position: i, From: e.From, To: e.To, Detail: "distance must be finite"}
		}
		if e.Distance < 0 {
			return nil, &ValidationError{Reason: ReasonMalformedEdge, Position: i, From: e.From, To: e.To, Detail: "distance must not be negative"}
		}
	}

	return newGraph(append([]Node(nil), nodes...), append([]Edge(nil), edges...)), nil
}

// checkCoord returns a non-empty description if lat/lng is not a usable coordinate.
func checkCoord(lat, lng float64) string {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return "coordinates must be finite numbers"
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return "coordinates out of range"
	}
	return ""
}
