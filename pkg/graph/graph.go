package graph

// Node is an intersection in the road network.
type Node struct {
	ID  int64
	Lat float64
	Lng float64
}

// Edge is a directed road segment. Distance is in meters.
type Edge struct {
	From     int64
	To       int64
	Distance float64
}

// Graph is a directed multigraph over Nodes.
// Nodes and Edges keep their input order; every edge endpoint references a node.
type Graph struct {
	Nodes []Node
	Edges []Edge

	index map[int64]uint32 // node id -> position in Nodes
}

// newGraph wraps already-validated nodes and edges.
func newGraph(nodes []Node, edges []Edge) *Graph {
	index := make(map[int64]uint32, len(nodes))
	for i, n := range nodes {
		index[n.ID] = uint32(i)
	}
	return &Graph{Nodes: nodes, Edges: edges, index: index}
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() uint32 { return uint32(len(g.Nodes)) }

// NumEdges returns the number of edges, parallel edges included.
func (g *Graph) NumEdges() uint32 { return uint32(len(g.Edges)) }

// Index returns the compact position of node id.
func (g *Graph) Index(id int64) (uint32, bool) {
	idx, ok := g.index[id]
	return idx, ok
}

// HasNode reports whether id is a node of g.
func (g *Graph) HasNode(id int64) bool {
	_, ok := g.index[id]
	return ok
}
