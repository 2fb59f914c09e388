package l3poses

import (
	"fmt"
	"math"
)

// Pose is a vehicle's full planar kinematic state. An absent Pose (Present
// false) belongs to a vehicle that is not in the simulation; its numeric
// fields are meaningless.
type Pose struct {
	Present bool
	X       float64 // metres, world frame
	Y       float64 // metres, world frame
	V       float64 // speed (m/s)
	Psi     float64 // heading (rad, (−π, π])
	PsiDot  float64 // yaw rate (rad/s)
}

// Absent is the pose of a vehicle outside the simulation.
var Absent = Pose{}

// VX returns the x component of velocity.
func (p Pose) VX() float64 { return p.V * math.Cos(p.Psi) }

// VY returns the y component of velocity.
func (p Pose) VY() float64 { return p.V * math.Sin(p.Psi) }

// Values returns [x, y, v, ψ, ψ̇], all NaN for an absent pose. It is the
// NaN-encoded form used when poses leave the engine for storage or plotting.
func (p Pose) Values() [5]float64 {
	if !p.Present {
		nan := math.NaN()
		return [5]float64{nan, nan, nan, nan, nan}
	}
	return [5]float64{p.X, p.Y, p.V, p.Psi, p.PsiDot}
}

// PoseFromValues is the inverse of Values: a NaN x means absent.
func PoseFromValues(v [5]float64) Pose {
	if math.IsNaN(v[0]) {
		return Absent
	}
	return Pose{Present: true, X: v[0], Y: v[1], V: v[2], Psi: v[3], PsiDot: v[4]}
}

func (p Pose) String() string {
	if !p.Present {
		return "absent"
	}
	return fmt.Sprintf("(%.2f, %.2f) v=%.2f psi=%.3f psidot=%.3f", p.X, p.Y, p.V, p.Psi, p.PsiDot)
}

// WrapAngle reduces ψ into (−π, π] using ((ψ + π) mod 2π) − π with a
// non-negative remainder. The reduction alone yields −π at the lower edge;
// that single value is mapped to +π. Values already in range are returned
// untouched, so WrapAngle(WrapAngle(ψ)) == WrapAngle(ψ) exactly.
func WrapAngle(psi float64) float64 {
	if math.IsNaN(psi) || math.IsInf(psi, 0) {
		return math.NaN()
	}
	if psi > -math.Pi && psi <= math.Pi {
		return psi
	}
	r := math.Mod(psi+math.Pi, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	w := r - math.Pi
	if w <= -math.Pi {
		w = math.Pi
	}
	return w
}
