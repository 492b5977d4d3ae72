package graph

import "fmt"

// MaterializeMode selects how two-way segments appear in the final edge set.
type MaterializeMode int

const (
	// MaterializePassThrough keeps every edge exactly once and only annotates
	// it with its reverse partner.
	MaterializePassThrough MaterializeMode = iota
	// MaterializeExpand emits, after each edge that has a reverse partner, a
	// copy of that partner with its own distance. Two-way segments therefore
	// appear twice per direction, as in edge lists exported per direction.
	MaterializeExpand
)

func (m MaterializeMode) String() string {
	switch m {
	case MaterializePassThrough:
		return "passthrough"
	case MaterializeExpand:
		return "expand"
	default:
		return fmt.Sprintf("MaterializeMode(%d)", int(m))
	}
}

// ParseMaterializeMode parses the String form of a mode. Empty means pass-through.
func ParseMaterializeMode(s string) (MaterializeMode, error) {
	switch s {
	case "", "passthrough":
		return MaterializePassThrough, nil
	case "expand":
		return MaterializeExpand, nil
	}
	return 0, fmt.Errorf("unknown materialize mode %q", s)
}

// Pair describes the reverse partner of an edge u→v, if the data has one.
type Pair struct {
	HasReverse      bool
	ReverseDistance float64 // the partner's own recorded distance
}

// Materialized is the final edge set of a graph.
type Materialized struct {
	Edges []Edge
	Pairs []Pair // parallel to Edges

	TwoWay     int // input edges with a reverse partner
	OneWay     int // input edges without one
	Asymmetric int // two-way edges whose partner has a different distance
}

type nodePair struct{ from, to int64 }

// Materialize resolves the reverse direction of every edge in g.
//
// A reverse edge v→u is only ever taken from g itself (the first such record
// in input order), so no reachability is added that the data does not have.
func Materialize(g *Graph, mode MaterializeMode) *Materialized {
	// First record per ordered pair.
	first := make(map[nodePair]int, len(g.Edges))
	for i, e := range g.Edges {
		k := nodePair{e.From, e.To}
		if _, ok := first[k]; !ok {
			first[k] = i
		}
	}

	m := &Materialized{
		Edges: make([]Edge, 0, len(g.Edges)),
		Pairs: make([]Pair, 0, len(g.Edges)),
	}

	for _, e := range g.Edges {
		var p Pair
		var rev Edge
		if j, ok := first[nodePair{e.To, e.From}]; ok {
			rev = g.Edges[j]
			p = Pair{HasReverse: true, ReverseDistance: rev.Distance}
			m.TwoWay++
			if rev.Distance != e.Distance {
				m.Asymmetric++
			}
		} else {
			m.OneWay++
		}

		m.Edges = append(m.Edges, e)
		m.Pairs = append(m.Pairs, p)

		if mode == MaterializeExpand && p.HasReverse {
			m.Edges = append(m.Edges, rev)
			m.Pairs = append(m.Pairs, Pair{HasReverse: true, ReverseDistance: e.Distance})
		}
	}

	return m
}
