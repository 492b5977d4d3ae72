// Package dataset reads and writes the per-dataset JSON files:
// <name>_nodes.json, <name>_edges.json and <name>_adjacency.json.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/azybler/roadgraph/pkg/graph"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// NodeRecord is one entry of <name>_nodes.json.
type NodeRecord struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EdgeRecord is one entry of <name>_edges.json.
type EdgeRecord struct {
	FromNodeID int64   `json:"from_node_id"`
	ToNodeID   int64   `json:"to_node_id"`
	Distance   float64 `json:"distance"`
}

// nodeJSON and edgeJSON decode records with pointer fields so that an absent
// or null field is told apart from a zero value.
type nodeJSON struct {
	ID  *int64   `json:"id" validate:"required"`
	Lat *float64 `json:"lat" validate:"required"`
	Lng *float64 `json:"lng" validate:"required"`
}

type edgeJSON struct {
	FromNodeID *int64   `json:"from_node_id" validate:"required"`
	ToNodeID   *int64   `json:"to_node_id" validate:"required"`
	Distance   *float64 `json:"distance" validate:"required"`
}

// Records holds the raw input of one dataset.
type Records struct {
	Nodes []NodeRecord
	Edges []EdgeRecord
}

// NodesPath returns the path of the node file for dataset name.
func NodesPath(dir, name string) string {
	return filepath.Join(dir, name+"_nodes.json")
}

// EdgesPath returns the path of the edge file for dataset name.
func EdgesPath(dir, name string) string {
	return filepath.Join(dir, name+"_edges.json")
}

// AdjacencyPath returns the path of the adjacency output for dataset name.
func AdjacencyPath(dir, name string) string {
	return filepath.Join(dir, name+"_adjacency.json")
}

// BinaryPath returns the path of the binary snapshot for dataset name.
func BinaryPath(dir, name string) string {
	return filepath.Join(dir, name+".adj.bin")
}

// Load reads the node and edge files of a dataset. A record missing one of
// its fields is reported as a *graph.ValidationError carrying its position.
func Load(dir, name string) (*Records, error) {
	var (
		rawNodes []nodeJSON
		rawEdges []edgeJSON
	)
	if err := readJSON(NodesPath(dir, name), &rawNodes); err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	if err := readJSON(EdgesPath(dir, name), &rawEdges); err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}

	rec := &Records{
		Nodes: make([]NodeRecord, len(rawNodes)),
		Edges: make([]EdgeRecord, len(rawEdges)),
	}
	for i, n := range rawNodes {
		if field := missingField(n); field != "" {
			return nil, fmt.Errorf("load nodes: %w", &graph.ValidationError{
				Reason:   graph.ReasonMalformedNode,
				Position: i,
				NodeID:   deref(n.ID),
				Detail:   fmt.Sprintf("missing %q", field),
			})
		}
		rec.Nodes[i] = NodeRecord{ID: *n.ID, Lat: *n.Lat, Lng: *n.Lng}
	}
	for i, e := range rawEdges {
		if field := missingField(e); field != "" {
			return nil, fmt.Errorf("load edges: %w", &graph.ValidationError{
				Reason:   graph.ReasonMalformedEdge,
				Position: i,
				From:     deref(e.FromNodeID),
				To:       deref(e.ToNodeID),
				Detail:   fmt.Sprintf("missing %q", field),
			})
		}
		rec.Edges[i] = EdgeRecord{FromNodeID: *e.FromNodeID, ToNodeID: *e.ToNodeID, Distance: *e.Distance}
	}
	return rec, nil
}

// missingField returns the JSON name of the first absent field of a decoded
// record, or "" when the record is complete.
func missingField(v any) string {
	err := validate.Struct(v)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field()
	}
	return err.Error()
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// WriteRecords writes the node and edge files of a dataset.
func WriteRecords(dir, name string, rec *Records) error {
	if err := writeJSON(NodesPath(dir, name), rec.Nodes); err != nil {
		return fmt.Errorf("write nodes: %w", err)
	}
	if err := writeJSON(EdgesPath(dir, name), rec.Edges); err != nil {
		return fmt.Errorf("write edges: %w", err)
	}
	return nil
}

// WriteAdjacency writes the adjacency index of a dataset.
func WriteAdjacency(dir, name string, idx *graph.AdjacencyIndex) error {
	if err := writeJSON(AdjacencyPath(dir, name), idx); err != nil {
		return fmt.Errorf("write adjacency: %w", err)
	}
	return nil
}

// ReadAdjacency reads an adjacency index written by WriteAdjacency.
func ReadAdjacency(dir, name string) (*graph.AdjacencyIndex, error) {
	var idx graph.AdjacencyIndex
	if err := readJSON(AdjacencyPath(dir, name), &idx); err != nil {
		return nil, fmt.Errorf("read adjacency: %w", err)
	}
	return &idx, nil
}

// GraphInput converts records into the core types.
func (r *Records) GraphInput() ([]graph.Node, []graph.Edge) {
	nodes := make([]graph.Node, len(r.Nodes))
	for i, n := range r.Nodes {
		nodes[i] = graph.Node{ID: n.ID, Lat: n.Lat, Lng: n.Lng}
	}
	edges := make([]graph.Edge, len(r.Edges))
	for i, e := range r.Edges {
		edges[i] = graph.Edge{From: e.FromNodeID, To: e.ToNodeID, Distance: e.Distance}
	}
	return nodes, edges
}

// FromGraph converts core types into records.
func FromGraph(nodes []graph.Node, edges []graph.Edge) *Records {
	rec := &Records{
		Nodes: make([]NodeRecord, len(nodes)),
		Edges: make([]EdgeRecord, len(edges)),
	}
	for i, n := range nodes {
		rec.Nodes[i] = NodeRecord{ID: n.ID, Lat: n.Lat, Lng: n.Lng}
	}
	for i, e := range edges {
		rec.Edges[i] = EdgeRecord{FromNodeID: e.From, ToNodeID: e.To, Distance: e.Distance}
	}
	return rec
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON writes v indented with two spaces, via a temp file and rename.
func writeJSON(path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
