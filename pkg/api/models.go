package api

import "github.com/azybler/roadgraph/pkg/graph"

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NeighborsResponse is the JSON response for a node's outgoing adjacency list.
type NeighborsResponse struct {
	Dataset   string           `json:"dataset"`
	NodeID    int64            `json:"node_id"`
	Neighbors []graph.Neighbor `json:"neighbors"`
}

// NearestResponse is the JSON response for a nearest-node query.
type NearestResponse struct {
	Dataset        string     `json:"dataset"`
	NodeID         int64      `json:"node_id"`
	Location       LatLngJSON `json:"location"`
	DistanceMeters float64    `json:"distance_meters"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// DatasetStats describes one loaded dataset.
type DatasetStats struct {
	Name     string `json:"name"`
	NumNodes int    `json:"num_nodes"`
	NumEdges int    `json:"num_edges"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	Datasets []DatasetStats `json:"datasets"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
