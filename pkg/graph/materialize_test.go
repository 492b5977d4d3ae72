package graph

import "testing"

func TestMaterializeAsymmetricDistances(t *testing.T) {
	g := mustIngest(t, nodesWithIDs(1, 2), []Edge{
		{From: 1, To: 2, Distance: 5.0},
		{From: 2, To: 1, Distance: 7.2},
	})

	m := Materialize(g, MaterializePassThrough)

	if len(m.Edges) != 2 {
		t.Fatalf("len(Edges) = %d, want 2", len(m.Edges))
	}
	if m.Edges[0].Distance != 5.0 || m.Edges[1].Distance != 7.2 {
		t.Errorf("distances = %v, %v; want 5.0, 7.2", m.Edges[0].Distance, m.Edges[1].Distance)
	}
	if !m.Pairs[0].HasReverse || m.Pairs[0].ReverseDistance != 7.2 {
		t.Errorf("Pairs[0] = %+v, want reverse distance 7.2", m.Pairs[0])
	}
	if !m.Pairs[1].HasReverse || m.Pairs[1].ReverseDistance != 5.0 {
		t.Errorf("Pairs[1] = %+v, want reverse distance 5.0", m.Pairs[1])
	}
	if m.TwoWay != 2 || m.OneWay != 0 || m.Asymmetric != 2 {
		t.Errorf("stats = %d two-way, %d one-way, %d asymmetric; want 2, 0, 2", m.TwoWay, m.OneWay, m.Asymmetric)
	}
}

func TestMaterializeNeverInventsReverse(t *testing.T) {
	g := mustIngest(t, nodesWithIDs(1, 2, 3), []Edge{
		{From: 1, To: 2, Distance: 4},
		{From: 2, To: 3, Distance: 6},
		{From: 3, To: 2, Distance: 6},
	})

	for _, mode := range []MaterializeMode{MaterializePassThrough, MaterializeExpand} {
		m := Materialize(g, mode)
		for _, e := range m.Edges {
			if e.From == 2 && e.To == 1 {
				t.Errorf("%s: invented reverse edge 2 -> 1", mode)
			}
		}
		if m.Pairs[0].HasReverse {
			t.Errorf("%s: one-way edge 1 -> 2 reported as two-way", mode)
		}
		if m.OneWay != 1 || m.TwoWay != 2 || m.Asymmetric != 0 {
			t.Errorf("%s: stats = %d one-way, %d two-way, %d asymmetric; want 1, 2, 0", mode, m.OneWay, m.TwoWay, m.Asymmetric)
		}
	}
}

func TestMaterializeExpandRepeatsPartner(t *testing.T) {
	g := mustIngest(t, nodesWithIDs(1, 2, 3), []Edge{
		{From: 1, To: 2, Distance: 5.0},
		{From: 2, To: 1, Distance: 7.2},
		{From: 2, To: 3, Distance: 1.0},
	})

	m := Materialize(g, MaterializeExpand)

	want := []Edge{
		{From: 1, To: 2, Distance: 5.0},
		{From: 2, To: 1, Distance: 7.2},
		{From: 2, To: 1, Distance: 7.2},
		{From: 1, To: 2, Distance: 5.0},
		{From: 2, To: 3, Distance: 1.0},
	}
	if len(m.Edges) != len(want) {
		t.Fatalf("len(Edges) = %d, want %d", len(m.Edges), len(want))
	}
	for i := range want {
		if m.Edges[i] != want[i] {
			t.Errorf("Edges[%d] = %+v, want %+v", i, m.Edges[i], want[i])
		}
	}
	if len(m.Pairs) != len(m.Edges) {
		t.Errorf("len(Pairs) = %d, want %d", len(m.Pairs), len(m.Edges))
	}
}

func TestMaterializeUsesFirstParallelReverse(t *testing.T) {
	g := mustIngest(t, nodesWithIDs(1, 2), []Edge{
		{From: 2, To: 1, Distance: 8},
		{From: 1, To: 2, Distance: 3},
		{From: 2, To: 1, Distance: 9},
	})

	m := Materialize(g, MaterializePassThrough)
	if m.Pairs[1].ReverseDistance != 8 {
		t.Errorf("reverse distance = %v, want 8 (first 2 -> 1 record)", m.Pairs[1].ReverseDistance)
	}
	if len(m.Edges) != 3 {
		t.Errorf("len(Edges) = %d, want 3", len(m.Edges))
	}
}

func TestParseMaterializeMode(t *testing.T) {
	tests := []struct {
		in      string
		want    MaterializeMode
		wantErr bool
	}{
		{"", MaterializePassThrough, false},
		{"passthrough", MaterializePassThrough, false},
		{"expand", MaterializeExpand, false},
		{"mirror", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMaterializeMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMaterializeMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMaterializeMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
