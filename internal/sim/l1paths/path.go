package l1paths

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Path is one vehicle's reference path, parameterised by arc length s.
//
// X and Y give the position; DX/DY and DDX/DDY are their first and second
// derivatives with respect to s. The derivative polynomials are trusted to be
// consistent with X and Y; they are not re-derived at evaluation time.
// The polynomials are only valid on [0, MaxArcLength].
type Path struct {
	X, Y         Polynomial
	DX, DY       Polynomial
	DDX, DDY     Polynomial
	MaxArcLength float64
}

// NewPath builds a Path from position polynomials, deriving both derivative
// orders.
func NewPath(x, y Polynomial, maxArcLength float64) Path {
	dx, dy := Derivative(x), Derivative(y)
	return Path{
		X:            x,
		Y:            y,
		DX:           dx,
		DY:           dy,
		DDX:          Derivative(dx),
		DDY:          Derivative(dy),
		MaxArcLength: maxArcLength,
	}
}

// Point is a path evaluated at one arc length.
type Point struct {
	Position     r2.Vec // (x, y)
	Tangent      r2.Vec // (x′, y′)
	Curvature    r2.Vec // (x″, y″)
	Extrapolated bool   // s was past MaxArcLength
}

// NaNPoint is returned for an undefined arc length.
var NaNPoint = Point{
	Position:  r2.Vec{X: math.NaN(), Y: math.NaN()},
	Tangent:   r2.Vec{X: math.NaN(), Y: math.NaN()},
	Curvature: r2.Vec{X: math.NaN(), Y: math.NaN()},
}

// Evaluate returns position and derivatives at arc length s.
//
// Past MaxArcLength the polynomials are not extended, since they diverge
// outside the fitted domain. The path continues as a straight line along the
// end tangent instead: position(s) = position(smax) + (s-smax)·tangent(smax),
// with the tangent held and the second derivative zero.
func (p Path) Evaluate(s float64) Point {
	if math.IsNaN(s) {
		return NaNPoint
	}
	if s > p.MaxArcLength {
		end := p.evalPolys(p.MaxArcLength)
		return Point{
			Position:     r2.Add(end.Position, r2.Scale(s-p.MaxArcLength, end.Tangent)),
			Tangent:      end.Tangent,
			Extrapolated: true,
		}
	}
	return p.evalPolys(s)
}

func (p Path) evalPolys(s float64) Point {
	return Point{
		Position:  r2.Vec{X: p.X.Eval(s), Y: p.Y.Eval(s)},
		Tangent:   r2.Vec{X: p.DX.Eval(s), Y: p.DY.Eval(s)},
		Curvature: r2.Vec{X: p.DDX.Eval(s), Y: p.DDY.Eval(s)},
	}
}

// Position is shorthand for Evaluate(s).Position.
func (p Path) Position(s float64) r2.Vec {
	return p.Evaluate(s).Position
}

// Tangent is shorthand for Evaluate(s).Tangent.
func (p Path) Tangent(s float64) r2.Vec {
	return p.Evaluate(s).Tangent
}

// PathSet holds one Path per vehicle, indexed by vehicle.
type PathSet []Path

// Evaluate evaluates every vehicle's path at its own arc length. The
// extrapolation rule is applied per element against that vehicle's bound.
// len(s) must equal len(ps).
func (ps PathSet) Evaluate(s []float64) []Point {
	out := make([]Point, len(ps))
	for i := range ps {
		out[i] = ps[i].Evaluate(s[i])
	}
	return out
}

// MaxArcLengths returns the per-vehicle path lengths.
func (ps PathSet) MaxArcLengths() []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = p.MaxArcLength
	}
	return out
}
