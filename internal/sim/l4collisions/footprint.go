package l4collisions

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/intersim/internal/sim/l3poses"
)

// Footprint is the oriented rectangle approximating a vehicle. Corners are in
// counter-clockwise order: rear-left, rear-right, front-right, front-left
// ("left" is the +n side of the heading).
type Footprint struct {
	Corners [4]r2.Vec
	u, n    r2.Vec // unit heading and unit lateral directions
}

// NewFootprint places a length×width rectangle centred on the pose, with its
// long axis along the pose heading:
//
//	corner = centre ± (length/2)·u ± (width/2)·n
//
// where u = (cos ψ, sin ψ) and n = (−sin ψ, cos ψ).
func NewFootprint(p l3poses.Pose, length, width float64) Footprint {
	c := r2.Vec{X: p.X, Y: p.Y}
	cos, sin := math.Cos(p.Psi), math.Sin(p.Psi)
	u := r2.Vec{X: cos, Y: sin}
	n := r2.Vec{X: -sin, Y: cos}
	lon := r2.Scale(length/2, u)
	lat := r2.Scale(width/2, n)

	return Footprint{
		Corners: [4]r2.Vec{
			r2.Add(r2.Sub(c, lon), lat), // rear-left
			r2.Sub(r2.Sub(c, lon), lat), // rear-right
			r2.Sub(r2.Add(c, lon), lat), // front-right
			r2.Add(r2.Add(c, lon), lat), // front-left
		},
		u: u,
		n: n,
	}
}

// Centre returns the mean of the four corners.
func (f Footprint) Centre() r2.Vec {
	var sum r2.Vec
	for _, v := range f.Corners {
		sum = r2.Add(sum, v)
	}
	return r2.Scale(0.25, sum)
}

func (f Footprint) project(axis r2.Vec) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range f.Corners {
		d := r2.Dot(v, axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// Intersects reports whether two footprints share any point, boundaries
// included: rectangles that only touch along an edge or at a corner count as
// intersecting.
//
// Separating axis test: two convex polygons are disjoint iff their
// projections onto some edge normal of either polygon are disjoint. A
// rectangle's edge normals are its heading and lateral directions, which stay
// defined for zero-length or zero-width footprints. A footprint with a
// non-finite corner intersects nothing.
func Intersects(a, b Footprint) bool {
	for _, axis := range [4]r2.Vec{a.u, a.n, b.u, b.n} {
		aLo, aHi := a.project(axis)
		bLo, bHi := b.project(axis)
		if math.IsNaN(aLo+aHi+bLo+bHi) || aHi < bLo || bHi < aLo {
			return false
		}
	}
	return true
}
