package graph

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
)

// Graph is an undirected interaction graph over vehicle indices 0..n-1.
// The zero value is not usable; call New.
type Graph struct {
	n int
	g *simple.UndirectedGraph
}

// New returns a graph with n isolated vehicles.
func New(n int) *Graph {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	return &Graph{n: n, g: g}
}

// Len returns the number of vehicles.
func (g *Graph) Len() int {
	return g.n
}

// AddEdge connects i and j. Self-loops and out-of-range indices are ignored.
func (g *Graph) AddEdge(i, j int) {
	if i == j || !g.valid(i) || !g.valid(j) {
		return
	}
	g.g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
}

// IsAdjacent reports whether i and j share an edge. A nil graph has no edges.
func (g *Graph) IsAdjacent(i, j int) bool {
	if g == nil || i == j {
		return false
	}
	return g.g.HasEdgeBetween(int64(i), int64(j))
}

// Neighbours returns the vehicles adjacent to i in ascending order.
func (g *Graph) Neighbours(i int) []int {
	if g == nil || !g.valid(i) {
		return nil
	}
	var out []int
	it := g.g.From(int64(i))
	for it.Next() {
		out = append(out, int(it.Node().ID()))
	}
	slices.Sort(out)
	return out
}

// NeighbourMap returns Neighbours for every vehicle that has at least one.
func (g *Graph) NeighbourMap() map[int][]int {
	out := make(map[int][]int)
	if g == nil {
		return out
	}
	for i := 0; i < g.n; i++ {
		if nb := g.Neighbours(i); len(nb) > 0 {
			out[i] = nb
		}
	}
	return out
}

// Edges lists every edge once as (i, j) with i < j, sorted.
func (g *Graph) Edges() [][2]int {
	if g == nil {
		return nil
	}
	var out [][2]int
	it := g.g.Edges()
	for it.Next() {
		e := it.Edge()
		i, j := int(e.From().ID()), int(e.To().ID())
		if i > j {
			i, j = j, i
		}
		out = append(out, [2]int{i, j})
	}
	slices.SortFunc(out, func(a, b [2]int) int {
		if a[0] != b[0] {
			return a[0] - b[0]
		}
		return a[1] - b[1]
	})
	return out
}

func (g *Graph) valid(i int) bool {
	return i >= 0 && i < g.n
}
