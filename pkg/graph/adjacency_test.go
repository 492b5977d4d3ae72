package graph

import (
	"encoding/json"
	"math"
	"testing"
)

func TestBuildIndexTwoNodes(t *testing.T) {
	nodes := nodesWithIDs(1, 2)
	edges := []Edge{{From: 1, To: 2, Distance: 5.0}}

	idx := BuildIndex(nodes, edges)

	got, err := json.Marshal(idx)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"1":[{"to":2,"distance":5.0}],"2":[]}`
	if string(got) != want {
		t.Errorf("json = %s, want %s", got, want)
	}
}

func TestBuildIndexKeyCompletenessAndAccounting(t *testing.T) {
	nodes := nodesWithIDs(5, 3, 9, 1)
	edges := []Edge{
		{From: 5, To: 3, Distance: 1},
		{From: 3, To: 9, Distance: 2},
		{From: 5, To: 9, Distance: 3},
		{From: 5, To: 3, Distance: 1},
	}

	idx := BuildIndex(nodes, edges)

	if idx.NumNodes() != len(nodes) {
		t.Fatalf("NumNodes = %d, want %d", idx.NumNodes(), len(nodes))
	}
	for i, id := range idx.IDs() {
		if id != nodes[i].ID {
			t.Errorf("IDs()[%d] = %d, want %d", i, id, nodes[i].ID)
		}
	}
	if idx.NumEntries() != len(edges) {
		t.Errorf("NumEntries = %d, want %d", idx.NumEntries(), len(edges))
	}

	// Stable edge order under the source node, duplicates kept.
	nbrs, ok := idx.Neighbors(5)
	if !ok {
		t.Fatal("node 5 missing")
	}
	wantTo := []int64{3, 9, 3}
	if len(nbrs) != len(wantTo) {
		t.Fatalf("len(Neighbors(5)) = %d, want %d", len(nbrs), len(wantTo))
	}
	for i, to := range wantTo {
		if nbrs[i].To != to {
			t.Errorf("Neighbors(5)[%d].To = %d, want %d", i, nbrs[i].To, to)
		}
	}

	// Zero out-degree nodes are present with an empty list.
	for _, id := range []int64{9, 1} {
		l, ok := idx.Neighbors(id)
		if !ok || l == nil || len(l) != 0 {
			t.Errorf("Neighbors(%d) = %v, %v; want empty, true", id, l, ok)
		}
	}
	if _, ok := idx.Neighbors(77); ok {
		t.Error("Neighbors(77) found a node that does not exist")
	}
}

func TestBuildIndexDirectionality(t *testing.T) {
	idx := BuildIndex(nodesWithIDs(1, 2), []Edge{{From: 1, To: 2, Distance: 4}})
	if l, _ := idx.Neighbors(2); len(l) != 0 {
		t.Errorf("Neighbors(2) = %v, edge 1 -> 2 must only appear under 1", l)
	}
}

func TestPipelineAsymmetricDistancesInIndex(t *testing.T) {
	g := mustIngest(t, nodesWithIDs(1, 2), []Edge{
		{From: 1, To: 2, Distance: 5.0},
		{From: 2, To: 1, Distance: 7.2},
	})
	r, err := Reduce(g)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	m := Materialize(r, MaterializePassThrough)
	idx := BuildIndex(r.Nodes, m.Edges)

	one, _ := idx.Neighbors(1)
	two, _ := idx.Neighbors(2)
	if len(one) != 1 || one[0] != (Neighbor{To: 2, Distance: 5.0}) {
		t.Errorf("Neighbors(1) = %v, want [{2 5}]", one)
	}
	if len(two) != 1 || two[0] != (Neighbor{To: 1, Distance: 7.2}) {
		t.Errorf("Neighbors(2) = %v, want [{1 7.2}]", two)
	}
}

func TestIndexClosure(t *testing.T) {
	g := mustIngest(t, nodesWithIDs(1, 2, 3, 4, 5), []Edge{
		{From: 1, To: 2, Distance: 1},
		{From: 2, To: 3, Distance: 1},
		{From: 4, To: 5, Distance: 1},
	})
	r, err := Reduce(g)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	idx := BuildIndex(r.Nodes, Materialize(r, MaterializeExpand).Edges)
	for _, id := range idx.IDs() {
		nbrs, _ := idx.Neighbors(id)
		for _, nb := range nbrs {
			if _, ok := idx.Neighbors(nb.To); !ok {
				t.Errorf("node %d points at %d which is not a key", id, nb.To)
			}
		}
	}
}

func TestIndexJSONDeterministic(t *testing.T) {
	nodes := nodesWithIDs(30, 10, 20)
	edges := []Edge{
		{From: 10, To: 20, Distance: 1.25},
		{From: 20, To: 30, Distance: 2.5},
		{From: 30, To: 10, Distance: 3.75},
	}

	a, err := json.Marshal(BuildIndex(nodes, edges))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, err := json.Marshal(BuildIndex(nodes, edges))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("serializations differ:\n%s\n%s", a, b)
	}
	want := `{"30":[{"to":10,"distance":3.75}],"10":[{"to":20,"distance":1.25}],"20":[{"to":30,"distance":2.5}]}`
	if string(a) != want {
		t.Errorf("json = %s, want %s", a, want)
	}
}

func TestIndexJSONRoundTrip(t *testing.T) {
	orig := BuildIndex(nodesWithIDs(7, 3, 5), []Edge{
		{From: 7, To: 3, Distance: 10.5},
		{From: 7, To: 5, Distance: 4},
	})
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var loaded AdjacencyIndex
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	again, err := json.Marshal(&loaded)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(again) != string(data) {
		t.Errorf("round trip changed json:\n%s\n%s", data, again)
	}
}

func TestIndexUnmarshalRejectsBadKeys(t *testing.T) {
	for _, in := range []string{
		`{"abc":[]}`,
		`{"1":[],"1":[]}`,
		`[]`,
	} {
		var idx AdjacencyIndex
		if err := json.Unmarshal([]byte(in), &idx); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", in)
		}
	}
}

func TestNeighborDistanceFormatting(t *testing.T) {
	tests := []struct {
		dist float64
		want string
	}{
		{5, `{"to":2,"distance":5.0}`},
		{0, `{"to":2,"distance":0.0}`},
		{108.27, `{"to":2,"distance":108.27}`},
		{1500, `{"to":2,"distance":1500.0}`},
		{1e-7, `{"to":2,"distance":1e-7}`},
		{2.5e21, `{"to":2,"distance":2.5e+21}`},
	}
	for _, tt := range tests {
		got, err := json.Marshal(Neighbor{To: 2, Distance: tt.dist})
		if err != nil {
			t.Fatalf("Marshal(%v): %v", tt.dist, err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.dist, got, tt.want)
		}
		var back Neighbor
		if err := json.Unmarshal(got, &back); err != nil {
			t.Fatalf("Unmarshal(%s): %v", got, err)
		}
		if back.Distance != tt.dist {
			t.Errorf("Unmarshal(%s).Distance = %v, want %v", got, back.Distance, tt.dist)
		}
	}
}

func TestNeighborRejectsNaN(t *testing.T) {
	if _, err := json.Marshal(Neighbor{To: 1, Distance: math.NaN()}); err == nil {
		t.Error("Marshal(NaN) succeeded, want error")
	}
}
