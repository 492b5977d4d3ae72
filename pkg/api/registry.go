package api

import (
	"fmt"
	"slices"

	"github.com/azybler/roadgraph/pkg/graph"
	"github.com/azybler/roadgraph/pkg/snap"
)

// Dataset is a served adjacency index with its nearest-node lookup.
type Dataset struct {
	Name     string
	Snapshot *graph.Snapshot
	Snapper  *snap.Snapper
}

// Registry holds the datasets a server answers for. It is filled before the
// server starts and read-only afterwards.
type Registry struct {
	datasets map[string]*Dataset
	names    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{datasets: make(map[string]*Dataset)}
}

// Add registers a snapshot under name. maxSnap bounds nearest-node queries in
// meters; zero selects snap.DefaultMaxDistance.
func (r *Registry) Add(name string, s *graph.Snapshot, maxSnap float64) error {
	if _, dup := r.datasets[name]; dup {
		return fmt.Errorf("dataset %s registered twice", name)
	}
	if s == nil || s.Index == nil {
		return fmt.Errorf("dataset %s: nil snapshot", name)
	}
	r.datasets[name] = &Dataset{
		Name:     name,
		Snapshot: s,
		Snapper:  snap.NewSnapper(s.Nodes, maxSnap),
	}
	r.names = append(r.names, name)
	slices.Sort(r.names)
	return nil
}

// Get returns the dataset registered under name.
func (r *Registry) Get(name string) (*Dataset, bool) {
	d, ok := r.datasets[name]
	return d, ok
}

// Names returns the registered dataset names, sorted.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Stats summarizes every registered dataset in name order.
func (r *Registry) Stats() StatsResponse {
	resp := StatsResponse{Datasets: make([]DatasetStats, 0, len(r.names))}
	for _, name := range r.names {
		idx := r.datasets[name].Snapshot.Index
		resp.Datasets = append(resp.Datasets, DatasetStats{
			Name:     name,
			NumNodes: idx.NumNodes(),
			NumEdges: idx.NumEntries(),
		})
	}
	return resp
}
