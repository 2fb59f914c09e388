package graph

import (
	"math"

	"github.com/banshee-data/intersim/internal/sim/l3poses"
)

// Builder produces the interaction graph for one frame of poses.
type Builder interface {
	Build(poses []l3poses.Pose) *Graph
}

// RadiusBuilder connects every pair of present vehicles whose positions lie
// within Radius metres of each other. A Radius of +Inf connects all present
// vehicles; zero or negative connects none.
type RadiusBuilder struct {
	Radius float64
}

// Build implements Builder.
func (b RadiusBuilder) Build(poses []l3poses.Pose) *Graph {
	g := New(len(poses))
	if !(b.Radius > 0) {
		return g
	}
	for i := range poses {
		if !poses[i].Present {
			continue
		}
		for j := i + 1; j < len(poses); j++ {
			if !poses[j].Present {
				continue
			}
			if math.Hypot(poses[j].X-poses[i].X, poses[j].Y-poses[i].Y) <= b.Radius {
				g.AddEdge(i, j)
			}
		}
	}
	return g
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(poses []l3poses.Pose) *Graph

// Build implements Builder.
func (f BuilderFunc) Build(poses []l3poses.Pose) *Graph {
	return f(poses)
}
