package l3poses

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/intersim/internal/sim/l1paths"
	"github.com/banshee-data/intersim/internal/sim/l2arcs"
)

// Adjacency answers whether two vehicles are connected in the interaction
// graph. The graph itself is maintained elsewhere.
type Adjacency interface {
	IsAdjacent(i, j int) bool
}

// Projector maps arc states onto poses using each vehicle's path.
//
// When MaskRelative is set, Relative drops every pair that Adjacency does not
// report as adjacent. A nil Adjacency with MaskRelative set masks every pair.
type Projector struct {
	Paths        l1paths.PathSet
	Adjacency    Adjacency
	MaskRelative bool
}

// NewProjector returns a Projector over paths without relative-pose masking.
func NewProjector(paths l1paths.PathSet) Projector {
	return Projector{Paths: paths}
}

// Project maps one frame of arc states to poses, indexed by vehicle.
//
// With tangent t = (x′, y′) and second derivative (x″, y″) at s:
//
//	ψ = atan2(y′, x′)
//	v = ṡ·|t|
//	ψ̇ = ṡ·(x′y″ − y′x″) / |t|²
//
// ψ is wrapped into (−π, π]. A vehicle whose tangent vanishes keeps
// ψ = 0 and ψ̇ = 0.
func (p Projector) Project(frame l2arcs.Frame) []Pose {
	out := make([]Pose, len(frame))
	for i, st := range frame {
		if !st.IsActive() {
			continue
		}
		out[i] = project(p.Paths[i].Evaluate(st.S), st.SDot)
	}
	return out
}

func project(pt l1paths.Point, sdot float64) Pose {
	t := pt.Tangent
	norm2 := r2.Dot(t, t)
	pose := Pose{
		Present: true,
		X:       pt.Position.X,
		Y:       pt.Position.Y,
		V:       sdot * math.Sqrt(norm2),
	}
	if norm2 == 0 {
		return pose
	}
	pose.Psi = WrapAngle(math.Atan2(t.Y, t.X))
	pose.PsiDot = sdot * r2.Cross(t, pt.Curvature) / norm2
	return pose
}

// ProjectMany applies Project to a sequence of frames.
func (p Projector) ProjectMany(frames []l2arcs.Frame) [][]Pose {
	out := make([][]Pose, len(frames))
	for k, f := range frames {
		out[k] = p.Project(f)
	}
	return out
}
