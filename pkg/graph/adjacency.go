package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Neighbor is one outgoing entry of an adjacency list.
type Neighbor struct {
	To       int64   `json:"to"`
	Distance float64 `json:"distance"`
}

// MarshalJSON writes the distance as a float literal, so a whole distance is
// written as 5.0 rather than 5.
func (n Neighbor) MarshalJSON() ([]byte, error) {
	b := make([]byte, 0, 48)
	b = append(b, `{"to":`...)
	b = strconv.AppendInt(b, n.To, 10)
	b = append(b, `,"distance":`...)
	b, err := appendFloat(b, n.Distance)
	if err != nil {
		return nil, err
	}
	return append(b, '}'), nil
}

// appendFloat appends f the way encoding/json does, plus a ".0" suffix when
// the result would otherwise read as an integer.
func appendFloat(b []byte, f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("unsupported distance %v", f)
	}
	start := len(b)
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b = strconv.AppendFloat(b, f, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(b)
		if n-start >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
		return b, nil
	}
	if bytes.IndexByte(b[start:], '.') < 0 {
		b = append(b, '.', '0')
	}
	return b, nil
}

// AdjacencyIndex maps each node id to the ordered list of edges leaving it.
// Keys iterate in node order. It is not modified after BuildIndex returns.
type AdjacencyIndex struct {
	ids   []int64
	lists map[int64][]Neighbor
}

// BuildIndex builds the adjacency index for nodes and edges.
// Every node gets an entry, possibly empty; each edge is appended under its
// source node in edge order. Edge endpoints must be among nodes.
func BuildIndex(nodes []Node, edges []Edge) *AdjacencyIndex {
	idx := &AdjacencyIndex{
		ids:   make([]int64, len(nodes)),
		lists: make(map[int64][]Neighbor, len(nodes)),
	}
	for i, n := range nodes {
		idx.ids[i] = n.ID
		idx.lists[n.ID] = []Neighbor{}
	}
	for _, e := range edges {
		idx.lists[e.From] = append(idx.lists[e.From], Neighbor{To: e.To, Distance: e.Distance})
	}
	return idx
}

// Neighbors returns the outgoing entries of id. The slice must not be modified.
func (a *AdjacencyIndex) Neighbors(id int64) ([]Neighbor, bool) {
	l, ok := a.lists[id]
	return l, ok
}

// IDs returns the node ids in key order.
func (a *AdjacencyIndex) IDs() []int64 {
	return append([]int64(nil), a.ids...)
}

// NumNodes returns the number of keys.
func (a *AdjacencyIndex) NumNodes() int { return len(a.ids) }

// NumEntries returns the total number of neighbor entries across all keys.
func (a *AdjacencyIndex) NumEntries() int {
	var n int
	for _, l := range a.lists {
		n += len(l)
	}
	return n
}

// MarshalJSON encodes the index as an object keyed by the decimal node id,
// with keys in node order.
func (a *AdjacencyIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range a.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.FormatInt(id, 10))
		buf.WriteString(`":`)
		list, err := json.Marshal(a.lists[id])
		if err != nil {
			return nil, fmt.Errorf("encode node %d: %w", id, err)
		}
		buf.Write(list)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the form written by MarshalJSON, keeping key order.
func (a *AdjacencyIndex) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("adjacency index: expected object, got %v", tok)
	}

	a.ids = nil
	a.lists = make(map[int64][]Neighbor)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("adjacency index: invalid node id %q", key)
		}
		if _, dup := a.lists[id]; dup {
			return fmt.Errorf("adjacency index: duplicate node id %d", id)
		}
		list := []Neighbor{}
		if err := dec.Decode(&list); err != nil {
			return fmt.Errorf("adjacency index: node %d: %w", id, err)
		}
		if list == nil {
			list = []Neighbor{}
		}
		a.ids = append(a.ids, id)
		a.lists[id] = list
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
