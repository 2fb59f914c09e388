package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/intersim/internal/sim/l3poses"
)

func TestGraph_Edges(t *testing.T) {
	t.Parallel()

	g := New(4)
	g.AddEdge(2, 0)
	g.AddEdge(1, 3)
	g.AddEdge(0, 2) // duplicate
	g.AddEdge(1, 1) // self-loop
	g.AddEdge(0, 9) // out of range

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, [][2]int{{0, 2}, {1, 3}}, g.Edges())
	assert.True(t, g.IsAdjacent(0, 2))
	assert.True(t, g.IsAdjacent(2, 0))
	assert.False(t, g.IsAdjacent(0, 1))
	assert.False(t, g.IsAdjacent(1, 1))
	assert.Equal(t, []int{2}, g.Neighbours(0))
	assert.Nil(t, g.Neighbours(7))
	assert.Equal(t, map[int][]int{0: {2}, 1: {3}, 2: {0}, 3: {1}}, g.NeighbourMap())
}

func TestGraph_NilIsEmpty(t *testing.T) {
	t.Parallel()

	var g *Graph
	assert.False(t, g.IsAdjacent(0, 1))
	assert.Nil(t, g.Neighbours(0))
	assert.Nil(t, g.Edges())
	assert.Empty(t, g.NeighbourMap())
}

func at(x, y float64) l3poses.Pose {
	return l3poses.Pose{Present: true, X: x, Y: y}
}

func TestRadiusBuilder(t *testing.T) {
	t.Parallel()

	poses := []l3poses.Pose{at(0, 0), at(3, 4), l3poses.Absent, at(100, 0)}

	tests := []struct {
		name   string
		radius float64
		want   [][2]int
	}{
		{"boundary inclusive", 5, [][2]int{{0, 1}}},
		{"too small", 4.99, nil},
		{"everything", math.Inf(1), [][2]int{{0, 1}, {0, 3}, {1, 3}}},
		{"zero", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := RadiusBuilder{Radius: tt.radius}.Build(poses)
			assert.Equal(t, tt.want, g.Edges())
			assert.Empty(t, g.Neighbours(2), "absent vehicle connected")
		})
	}
}

func TestGraph_MasksRelativePoses(t *testing.T) {
	t.Parallel()

	poses := []l3poses.Pose{at(0, 0), at(1, 0), at(50, 0)}
	p := l3poses.Projector{
		Adjacency:    RadiusBuilder{Radius: 10}.Build(poses),
		MaskRelative: true,
	}
	rf := p.Relative(poses)
	assert.True(t, rf.At(0, 1).Present)
	assert.True(t, rf.At(1, 0).Present)
	assert.False(t, rf.At(0, 2).Present)
	assert.False(t, rf.At(2, 1).Present)
}

func TestBuilderFunc(t *testing.T) {
	t.Parallel()

	var b Builder = BuilderFunc(func(poses []l3poses.Pose) *Graph {
		g := New(len(poses))
		g.AddEdge(0, len(poses)-1)
		return g
	})
	assert.Equal(t, [][2]int{{0, 2}}, b.Build(make([]l3poses.Pose, 3)).Edges())
}
