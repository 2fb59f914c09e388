package l2arcs

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/intersim/internal/monitoring"
)

var (
	// ErrUndefinedAction is returned when an Active vehicle is given a NaN
	// acceleration. It always indicates a caller bug.
	ErrUndefinedAction = errors.New("active vehicle received an undefined action")

	// ErrShapeMismatch is returned when the frame, action vector and path
	// lengths disagree on the number of vehicles.
	ErrShapeMismatch = errors.New("vehicle count mismatch")
)

// ActionBounds is the closed acceleration interval [Min, Max] (m/s²).
type ActionBounds struct {
	Min float64
	Max float64
}

// Contains reports whether a lies inside the bounds. NaN is never contained.
func (b ActionBounds) Contains(a float64) bool {
	return a >= b.Min && a <= b.Max
}

// Clamp returns the nearest value to a inside the bounds. NaN is returned
// unchanged.
func (b ActionBounds) Clamp(a float64) float64 {
	switch {
	case a < b.Min:
		return b.Min
	case a > b.Max:
		return b.Max
	default:
		return a
	}
}

// Integrator advances arc states by one fixed step of Dt seconds.
type Integrator struct {
	Dt           float64
	Bounds       ActionBounds
	MaxArcLength []float64 // per vehicle
}

// StepResult is the outcome of a single Step.
type StepResult struct {
	Next     Frame
	Applied  []float64 // acceleration actually used, per vehicle
	Exceeded []bool    // vehicle ran past its path this step
	Clamped  bool      // at least one action was pulled into bounds
}

// Step advances every vehicle one tick.
//
// Every Active vehicle must carry a defined action; a NaN action on an Active
// vehicle fails the whole call with ErrUndefinedAction. Inactive vehicles are
// forced to a zero action. Out-of-bounds actions are clamped and reported
// through StepResult.Clamped rather than failing.
//
// The integration is a trapezoidal-velocity Euler step:
//
//	ṡ' = max(0, ṡ + a·Δt)
//	s' = s + ½·Δt·(ṡ' + ṡ)
//
// The max(0, ·) clamp keeps vehicles from reversing along their path and is
// not differentiable at zero. A vehicle with s' > MaxArcLength is marked
// Exceeded and becomes Inactive.
func (in Integrator) Step(frame Frame, action []float64) (StepResult, error) {
	nv := len(frame)
	if len(action) != nv || len(in.MaxArcLength) != nv {
		return StepResult{}, fmt.Errorf("%w: %d states, %d actions, %d path lengths",
			ErrShapeMismatch, nv, len(action), len(in.MaxArcLength))
	}

	applied := make([]float64, nv)
	clamped := false
	for i, st := range frame {
		a := action[i]
		if math.IsNaN(a) {
			if st.IsActive() {
				return StepResult{}, fmt.Errorf("vehicle %d: %w", i, ErrUndefinedAction)
			}
			a = 0
		}
		if !in.Bounds.Contains(a) {
			clamped = true
		}
		applied[i] = a
	}
	if clamped {
		monitoring.Logf("requested action outside [%.2f, %.2f], being clamped", in.Bounds.Min, in.Bounds.Max)
		for i := range applied {
			applied[i] = in.Bounds.Clamp(applied[i])
		}
	}

	res := StepResult{
		Next:     make(Frame, nv),
		Applied:  applied,
		Exceeded: make([]bool, nv),
		Clamped:  clamped,
	}
	for i, st := range frame {
		res.Next[i], res.Exceeded[i] = in.advance(st, applied[i], in.MaxArcLength[i])
	}
	return res, nil
}

// BatchResult is the outcome of StepBatch, indexed [batch][vehicle].
type BatchResult struct {
	Next     []Frame
	Applied  [][]float64
	Exceeded [][]bool
	Clamped  bool
}

// StepBatch applies the Step integration independently to every element of
// a leading batch dimension, for offline trajectory rollout.
//
// Unlike Step, it performs no undefined-action check and always clamps.
// Batched callers are expected to supply complete actions; a NaN action on an
// Active vehicle propagates and the vehicle becomes Inactive without being
// flagged as Exceeded. Mismatched shapes panic.
func (in Integrator) StepBatch(frames []Frame, actions [][]float64) BatchResult {
	if len(frames) != len(actions) {
		panic(fmt.Sprintf("l2arcs: batch size mismatch: %d frames, %d actions", len(frames), len(actions)))
	}
	res := BatchResult{
		Next:     make([]Frame, len(frames)),
		Applied:  make([][]float64, len(frames)),
		Exceeded: make([][]bool, len(frames)),
	}
	for b, frame := range frames {
		nv := len(frame)
		if len(actions[b]) != nv || len(in.MaxArcLength) != nv {
			panic(fmt.Sprintf("l2arcs: batch %d: %d states, %d actions, %d path lengths",
				b, nv, len(actions[b]), len(in.MaxArcLength)))
		}
		next := make(Frame, nv)
		applied := make([]float64, nv)
		exceeded := make([]bool, nv)
		for i, st := range frame {
			a := actions[b][i]
			if !math.IsNaN(a) && !in.Bounds.Contains(a) {
				res.Clamped = true
			}
			applied[i] = in.Bounds.Clamp(a)
			next[i], exceeded[i] = in.advance(st, applied[i], in.MaxArcLength[i])
		}
		res.Next[b], res.Applied[b], res.Exceeded[b] = next, applied, exceeded
	}
	if res.Clamped {
		monitoring.Logf("requested batch action outside [%.2f, %.2f], being clamped", in.Bounds.Min, in.Bounds.Max)
	}
	return res
}

// advance integrates a single vehicle. Inactive stays Inactive and never
// counts as exceeded; so does a state whose update is not a number.
func (in Integrator) advance(st ArcState, a, smax float64) (ArcState, bool) {
	if !st.IsActive() || math.IsNaN(a) {
		return Inactive(), false
	}
	nextV := math.Max(0, st.SDot+a*in.Dt)
	nextS := st.S + 0.5*in.Dt*(nextV+st.SDot)
	if math.IsNaN(nextS) || math.IsNaN(nextV) {
		return Inactive(), false
	}
	if nextS > smax {
		return Inactive(), true
	}
	return Active(nextS, nextV), false
}

// TargetAction returns, per vehicle, the acceleration that steers the next
// arc length towards target.S. mu ≥ 0 regularises the request towards
// smaller accelerations:
//
//	a = 2·(s* − s − Δt·ṡ) / (Δt² + 4μ/Δt²)
//
// Vehicles that are Inactive in either frame get 0. The result is not
// clamped; Step does that.
func (in Integrator) TargetAction(frame, target Frame, mu float64) []float64 {
	out := make([]float64, len(frame))
	denom := in.Dt*in.Dt + 4*mu/(in.Dt*in.Dt)
	for i, st := range frame {
		if i >= len(target) || !st.IsActive() || !target[i].IsActive() {
			continue
		}
		out[i] = 2 * (target[i].S - st.S - in.Dt*st.SDot) / denom
	}
	return out
}
