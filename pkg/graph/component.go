package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // max rank stays small (~log2 n)
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	// Union by rank.
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the number of elements in the set containing x.
func (uf *UnionFind) Size(x uint32) uint32 {
	return uf.size[uf.Find(x)]
}

// LargestComponent returns the node indices belonging to the largest
// weakly connected component (treating the directed graph as undirected),
// in node order.
//
// When several components share the maximum size, the one containing the
// smallest node id wins.
func LargestComponent(g *Graph) []uint32 {
	if g.NumNodes() == 0 {
		return nil
	}

	uf := NewUnionFind(g.NumNodes())

	// Union all edges (both directions treated as undirected).
	for _, e := range g.Edges {
		uf.Union(g.index[e.From], g.index[e.To])
	}

	// Smallest node id per component root, for the tie-break.
	minID := make(map[uint32]int64)
	for i, n := range g.Nodes {
		root := uf.Find(uint32(i))
		if cur, ok := minID[root]; !ok || n.ID < cur {
			minID[root] = n.ID
		}
	}

	// Find the representative with the largest size.
	bestRoot := uf.Find(0)
	bestSize := uf.size[bestRoot]
	for root, id := range minID {
		size := uf.size[root]
		if size > bestSize || (size == bestSize && id < minID[bestRoot]) {
			bestRoot = root
			bestSize = size
		}
	}

	// Collect all nodes in the largest component.
	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < g.NumNodes(); i++ {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}

	return nodes
}

// FilterToComponent creates the subgraph induced by the given node indices:
// those nodes, and every edge with both endpoints among them. Input order of
// nodes and edges is preserved.
func FilterToComponent(g *Graph, nodes []uint32) *Graph {
	if len(nodes) == 0 {
		return newGraph(nil, nil)
	}

	keep := make(map[int64]struct{}, len(nodes))
	kept := make([]Node, 0, len(nodes))
	for _, idx := range nodes {
		n := g.Nodes[idx]
		keep[n.ID] = struct{}{}
		kept = append(kept, n)
	}

	// Collect edges that are fully within the component.
	var edges []Edge
	for _, e := range g.Edges {
		if _, ok := keep[e.From]; !ok {
			continue
		}
		if _, ok := keep[e.To]; !ok {
			continue
		}
		edges = append(edges, e)
	}

	return newGraph(kept, edges)
}

// Reduce returns the subgraph induced by g's largest weakly connected component.
func Reduce(g *Graph) (*Graph, error) {
	if g.NumNodes() == 0 {
		return nil, ErrEmptyGraph
	}
	return FilterToComponent(g, LargestComponent(g)), nil
}
