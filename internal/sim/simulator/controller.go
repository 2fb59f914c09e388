package simulator

import (
	"github.com/banshee-data/intersim/internal/sim/l2arcs"
)

// Controller chooses the joint action for the next tick.
type Controller interface {
	Action(sim *Simulator, state State) []float64
}

// ControllerFunc adapts a function to the Controller interface.
type ControllerFunc func(sim *Simulator, state State) []float64

// Action implements Controller.
func (f ControllerFunc) Action(sim *Simulator, state State) []float64 {
	return f(sim, state)
}

// ConstantController applies the same acceleration to every vehicle.
type ConstantController struct {
	Accel float64
}

// Action implements Controller.
func (c ConstantController) Action(sim *Simulator, state State) []float64 {
	out := make([]float64, len(state.Arcs))
	for i := range out {
		out[i] = c.Accel
	}
	return out
}

// TargetSpeedController drives every active vehicle towards Speed (m/s) by
// targeting the arc length it would reach at that speed after one tick. Mu
// regularises the request; see l2arcs.Integrator.TargetAction. The result is
// clamped to the simulator's bounds before it is returned.
type TargetSpeedController struct {
	Speed float64
	Mu    float64
}

// Action implements Controller.
func (c TargetSpeedController) Action(sim *Simulator, state State) []float64 {
	dt := sim.Dt()
	target := l2arcs.NewFrame(len(state.Arcs))
	for i, st := range state.Arcs {
		if st.IsActive() {
			target[i] = l2arcs.Active(st.S+c.Speed*dt, c.Speed)
		}
	}
	action := sim.TargetAction(state, target, c.Mu)
	bounds := sim.Bounds()
	for i := range action {
		action[i] = bounds.Clamp(action[i])
	}
	return action
}
