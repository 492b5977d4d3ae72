package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/azybler/roadgraph/pkg/graph"
	"github.com/azybler/roadgraph/pkg/snap"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	datasets *Registry
}

// NewHandlers creates handlers serving the datasets in reg.
func NewHandlers(reg *Registry) *Handlers {
	return &Handlers{datasets: reg}
}

// HandleNeighbors handles GET /api/v1/datasets/{dataset}/nodes/{id}/neighbors.
func (h *Handlers) HandleNeighbors(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_node_id", "id")
		return
	}

	nbrs, ok := ds.Snapshot.Index.Neighbors(id)
	if !ok {
		writeError(w, http.StatusNotFound, "node_not_found", "id")
		return
	}
	if nbrs == nil {
		nbrs = []graph.Neighbor{}
	}

	writeJSON(w, NeighborsResponse{Dataset: ds.Name, NodeID: id, Neighbors: nbrs})
}

// HandleNearest handles GET /api/v1/datasets/{dataset}/nearest?lat=..&lng=..
func (h *Handlers) HandleNearest(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "lat")
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "lng")
		return
	}
	if err := validateCoord(LatLngJSON{Lat: lat, Lng: lng}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "")
		return
	}

	res, err := ds.Snapper.Nearest(lat, lng)
	if err != nil {
		switch {
		case errors.Is(err, snap.ErrPointTooFar):
			writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "")
		case errors.Is(err, snap.ErrNoNodes):
			writeError(w, http.StatusNotFound, "no_nodes", "")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "")
		}
		return
	}

	writeJSON(w, NearestResponse{
		Dataset:        ds.Name,
		NodeID:         res.Node.ID,
		Location:       LatLngJSON{Lat: res.Node.Lat, Lng: res.Node.Lng},
		DistanceMeters: res.Distance,
	})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.datasets.Stats())
}

// dataset resolves the {dataset} path value, writing a 404 when it is not served.
func (h *Handlers) dataset(w http.ResponseWriter, r *http.Request) (*Dataset, bool) {
	ds, ok := h.datasets.Get(r.PathValue("dataset"))
	if !ok {
		writeError(w, http.StatusNotFound, "dataset_not_found", "dataset")
		return nil, false
	}
	return ds, true
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
