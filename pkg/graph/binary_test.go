package graph_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/azybler/roadgraph/pkg/graph"
)

func buildTestSnapshot(t *testing.T) *graph.Snapshot {
	t.Helper()
	nodes := []graph.Node{
		{ID: 10, Lat: 1.0, Lng: 103.0},
		{ID: 20, Lat: 1.1, Lng: 103.1},
		{ID: 30, Lat: 1.2, Lng: 103.2},
		{ID: 40, Lat: 1.3, Lng: 103.3},
	}
	edges := []graph.Edge{
		{From: 10, To: 20, Distance: 100.5},
		{From: 20, To: 10, Distance: 101.25},
		{From: 20, To: 30, Distance: 200},
		{From: 30, To: 20, Distance: 200},
		{From: 10, To: 40, Distance: 300},
	}
	return &graph.Snapshot{Nodes: nodes, Index: graph.BuildIndex(nodes, edges)}
}

func TestBinaryRoundTrip(t *testing.T) {
	original := buildTestSnapshot(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.adj.bin")

	if err := graph.WriteBinary(path, original); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	loaded, err := graph.ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if len(loaded.Nodes) != len(original.Nodes) {
		t.Fatalf("len(Nodes): got %d, want %d", len(loaded.Nodes), len(original.Nodes))
	}
	for i := range original.Nodes {
		if loaded.Nodes[i] != original.Nodes[i] {
			t.Errorf("Nodes[%d]: got %+v, want %+v", i, loaded.Nodes[i], original.Nodes[i])
		}
	}

	if loaded.Index.NumEntries() != original.Index.NumEntries() {
		t.Fatalf("NumEntries: got %d, want %d", loaded.Index.NumEntries(), original.Index.NumEntries())
	}

	want, _ := json.Marshal(original.Index)
	got, _ := json.Marshal(loaded.Index)
	if string(got) != string(want) {
		t.Errorf("index differs after round trip:\n got %s\nwant %s", got, want)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestBinaryEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.adj.bin")
	snap := &graph.Snapshot{Index: graph.BuildIndex(nil, nil)}

	if err := graph.WriteBinary(path, snap); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	loaded, err := graph.ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}
	if len(loaded.Nodes) != 0 || loaded.Index.NumNodes() != 0 {
		t.Errorf("expected empty snapshot, got %d nodes", len(loaded.Nodes))
	}
}

func TestBinaryRejectsOpenIndex(t *testing.T) {
	nodes := []graph.Node{{ID: 1}}
	snap := &graph.Snapshot{
		Nodes: nodes,
		Index: graph.BuildIndex(nodes, []graph.Edge{{From: 1, To: 2, Distance: 1}}),
	}
	if err := graph.WriteBinary(filepath.Join(t.TempDir(), "bad.adj.bin"), snap); err == nil {
		t.Fatal("expected error for neighbor outside the snapshot")
	}
}

func TestBinaryCorruptedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.adj.bin")
	if err := graph.WriteBinary(path, buildTestSnapshot(t)); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	data[len(data)-10] ^= 0xFF
	os.WriteFile(path, data, 0644)

	if _, err := graph.ReadBinary(path); err == nil {
		t.Fatal("expected CRC error for corrupted file")
	}
}

func TestBinaryInvalidMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.adj.bin")
	os.WriteFile(path, []byte("NOT_RGADJIDX_HEADER_BLAH_BLAH_BLAH_MORE_DATA"), 0644)

	_, err := graph.ReadBinary(path)
	if err == nil {
		t.Fatal("expected error for invalid magic bytes")
	}
}

func TestBinaryTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "truncated.adj.bin")
	os.WriteFile(path, []byte("RGADJIDX"), 0644)

	_, err := graph.ReadBinary(path)
	if err == nil {
		t.Fatal("expected error for truncated file")
	}
}
