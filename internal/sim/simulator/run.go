package simulator

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/intersim/internal/monitoring"
)

// Observer is called after every successful step. Returning an error stops
// the episode and is returned from Run.
type Observer func(state State, out StepOutcome) error

// Summary describes a finished episode.
type Summary struct {
	Steps          int
	Done           bool    // episode ended on its own rather than at maxSteps
	CollisionSteps int     // ticks with at least one collision
	Collisions     int     // colliding pairs summed over ticks
	Spawned        int     // spawns after reset
	MeanSpeed      float64 // over present vehicles and ticks, m/s
	Final          State
}

// Run resets the simulator and steps it with controller until the episode
// ends, maxSteps is reached (zero means no limit), or ctx is cancelled.
// observer may be nil.
func (s *Simulator) Run(ctx context.Context, controller Controller, maxSteps int, observer Observer) (Summary, error) {
	state, _ := s.Reset()
	var (
		sum    Summary
		speeds []float64
	)
	for !state.Done && (maxSteps <= 0 || sum.Steps < maxSteps) {
		if err := ctx.Err(); err != nil {
			sum.Final = state
			return sum, err
		}
		next, out, err := s.Step(state, controller.Action(s, state))
		if err != nil {
			sum.Final = state
			return sum, fmt.Errorf("step %d: %w", sum.Steps, err)
		}
		state = next
		sum.Steps++
		sum.Spawned += len(out.Spawned)
		if out.Collision {
			sum.CollisionSteps++
			sum.Collisions += out.Matrix.NonZero() / 2
		}
		for _, p := range out.Poses {
			if p.Present {
				speeds = append(speeds, p.V)
			}
		}
		if observer != nil {
			if err := observer(state, out); err != nil {
				sum.Final = state
				return sum, fmt.Errorf("observer at step %d: %w", sum.Steps, err)
			}
		}
	}
	sum.Done = state.Done
	sum.Final = state
	if len(speeds) > 0 {
		sum.MeanSpeed = floats.Sum(speeds) / float64(len(speeds))
	}
	monitoring.Logf("episode finished after %d steps (done=%v, %d collision steps)",
		sum.Steps, sum.Done, sum.CollisionSteps)
	return sum, nil
}
