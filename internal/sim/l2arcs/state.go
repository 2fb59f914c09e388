package l2arcs

import (
	"fmt"
	"math"
)

// ArcState is one vehicle's position and speed along its own path. The zero
// value is Inactive.
type ArcState struct {
	active bool
	S      float64 // arc length travelled (m)
	SDot   float64 // arc speed (m/s)
}

// Active returns the state of a vehicle present in the simulation.
func Active(s, sdot float64) ArcState {
	return ArcState{active: true, S: s, SDot: sdot}
}

// Inactive returns the state of a vehicle absent from the simulation.
func Inactive() ArcState {
	return ArcState{}
}

// FromValues converts a NaN-encoded pair: a NaN in either value means
// Inactive.
func FromValues(s, sdot float64) ArcState {
	if math.IsNaN(s) || math.IsNaN(sdot) {
		return Inactive()
	}
	return Active(s, sdot)
}

// IsActive reports whether the vehicle is present.
func (a ArcState) IsActive() bool {
	return a.active
}

// Values returns (s, ṡ), or (NaN, NaN) for an Inactive vehicle.
func (a ArcState) Values() (s, sdot float64) {
	if !a.active {
		return math.NaN(), math.NaN()
	}
	return a.S, a.SDot
}

func (a ArcState) String() string {
	if !a.active {
		return "inactive"
	}
	return fmt.Sprintf("s=%.3f sdot=%.3f", a.S, a.SDot)
}

// Frame is the arc state of every vehicle at one tick, indexed by vehicle.
type Frame []ArcState

// NewFrame returns a frame of n Inactive vehicles.
func NewFrame(n int) Frame {
	return make(Frame, n)
}

// Clone returns an independent copy of f.
func (f Frame) Clone() Frame {
	out := make(Frame, len(f))
	copy(out, f)
	return out
}

// ActiveMask reports, per vehicle, whether it is Active.
func (f Frame) ActiveMask() []bool {
	out := make([]bool, len(f))
	for i, a := range f {
		out[i] = a.active
	}
	return out
}

// ActiveCount returns the number of Active vehicles.
func (f Frame) ActiveCount() int {
	n := 0
	for _, a := range f {
		if a.active {
			n++
		}
	}
	return n
}

// ArcLengths returns s per vehicle with NaN for Inactive vehicles.
func (f Frame) ArcLengths() []float64 {
	out := make([]float64, len(f))
	for i, a := range f {
		out[i], _ = a.Values()
	}
	return out
}
