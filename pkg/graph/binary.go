package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

const (
	magicBytes = "RGADJIDX"
	version    = uint32(1)
	maxNodes   = 50_000_000
	maxEdges   = 200_000_000
)

// Snapshot is a finished dataset: the reduced node set and its adjacency index.
// Index keys are expected in the same order as Nodes.
type Snapshot struct {
	Nodes []Node
	Index *AdjacencyIndex
}

// fileHeader is the binary header.
type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumEdges uint32
}

// WriteBinary serializes a Snapshot to a binary file in CSR layout.
// Uses unsafe.Slice for fast zero-copy I/O.
func WriteBinary(path string, snap *Snapshot) error {
	nodeIDs, nodeLat, nodeLon, firstOut, head, dist, err := toCSR(snap)
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	hdr := fileHeader{
		Version:  version,
		NumNodes: uint32(len(nodeIDs)),
		NumEdges: uint32(len(head)),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	// Node data.
	if err := writeInt64Slice(w, nodeIDs); err != nil {
		return fmt.Errorf("write NodeIDs: %w", err)
	}
	if err := writeFloat64Slice(w, nodeLat); err != nil {
		return fmt.Errorf("write NodeLat: %w", err)
	}
	if err := writeFloat64Slice(w, nodeLon); err != nil {
		return fmt.Errorf("write NodeLon: %w", err)
	}

	// Adjacency.
	if err := writeUint32Slice(w, firstOut); err != nil {
		return fmt.Errorf("write FirstOut: %w", err)
	}
	if err := writeUint32Slice(w, head); err != nil {
		return fmt.Errorf("write Head: %w", err)
	}
	if err := writeFloat64Slice(w, dist); err != nil {
		return fmt.Errorf("write Distance: %w", err)
	}

	// Write CRC32 trailer.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// toCSR flattens a snapshot. Neighbor targets become positions in Nodes.
func toCSR(snap *Snapshot) (ids []int64, lat, lon []float64, firstOut, head []uint32, dist []float64, err error) {
	n := len(snap.Nodes)
	pos := make(map[int64]uint32, n)
	ids = make([]int64, n)
	lat = make([]float64, n)
	lon = make([]float64, n)
	for i, node := range snap.Nodes {
		pos[node.ID] = uint32(i)
		ids[i] = node.ID
		lat[i] = node.Lat
		lon[i] = node.Lng
	}
	if snap.Index.NumNodes() != n {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("index has %d keys, snapshot has %d nodes", snap.Index.NumNodes(), n)
	}

	firstOut = make([]uint32, n+1)
	for i, id := range ids {
		nbrs, ok := snap.Index.Neighbors(id)
		if !ok {
			return nil, nil, nil, nil, nil, nil, fmt.Errorf("node %d missing from index", id)
		}
		for _, nb := range nbrs {
			p, ok := pos[nb.To]
			if !ok {
				return nil, nil, nil, nil, nil, nil, fmt.Errorf("node %d: neighbor %d is not a snapshot node", id, nb.To)
			}
			head = append(head, p)
			dist = append(dist, nb.Distance)
		}
		firstOut[i+1] = uint32(len(head))
	}
	return ids, lat, lon, firstOut, head, dist, nil
}

// ReadBinary deserializes a Snapshot from a binary file.
func ReadBinary(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	// Read and validate header.
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	n := int(hdr.NumNodes)
	ids, err := readInt64Slice(r, n)
	if err != nil {
		return nil, fmt.Errorf("read NodeIDs: %w", err)
	}
	lat, err := readFloat64Slice(r, n)
	if err != nil {
		return nil, fmt.Errorf("read NodeLat: %w", err)
	}
	lon, err := readFloat64Slice(r, n)
	if err != nil {
		return nil, fmt.Errorf("read NodeLon: %w", err)
	}
	firstOut, err := readUint32Slice(r, n+1)
	if err != nil {
		return nil, fmt.Errorf("read FirstOut: %w", err)
	}
	head, err := readUint32Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("read Head: %w", err)
	}
	dist, err := readFloat64Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("read Distance: %w", err)
	}

	// Read and validate CRC32.
	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if err := validateCSR(firstOut, head, hdr.NumNodes); err != nil {
		return nil, fmt.Errorf("adjacency CSR invalid: %w", err)
	}

	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = Node{ID: ids[i], Lat: lat[i], Lng: lon[i]}
	}
	edges := make([]Edge, 0, len(head))
	for u := 0; u < n; u++ {
		for e := firstOut[u]; e < firstOut[u+1]; e++ {
			edges = append(edges, Edge{From: ids[u], To: ids[head[e]], Distance: dist[e]})
		}
	}

	return &Snapshot{Nodes: nodes, Index: BuildIndex(nodes, edges)}, nil
}

// validateCSR checks CSR invariants.
func validateCSR(firstOut, head []uint32, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("FirstOut length %d != NumNodes+1 %d", len(firstOut), numNodes+1)
	}
	if firstOut[0] != 0 {
		return fmt.Errorf("FirstOut[0]=%d, want 0", firstOut[0])
	}
	numEdges := firstOut[numNodes]
	if uint32(len(head)) != numEdges {
		return fmt.Errorf("Head length %d != FirstOut[NumNodes] %d", len(head), numEdges)
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("FirstOut not monotonic at %d: %d < %d", i, firstOut[i], firstOut[i-1])
		}
	}
	for i, h := range head {
		if h >= numNodes {
			return fmt.Errorf("Head[%d]=%d >= NumNodes=%d", i, h, numNodes)
		}
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeInt64Slice(w io.Writer, s []int64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readInt64Slice(r io.Reader, n int) ([]int64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]int64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
