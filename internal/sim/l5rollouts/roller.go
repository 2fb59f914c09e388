package l5rollouts

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/intersim/internal/sim/l2arcs"
	"github.com/banshee-data/intersim/internal/sim/l3poses"
	"github.com/banshee-data/intersim/internal/sim/l4collisions"
)

// Profile is a sequence of joint actions indexed [tick][vehicle].
type Profile [][]float64

// Trajectory is a sequence of projected frames indexed [tick][vehicle].
type Trajectory [][]l3poses.Pose

// Roller propagates action profiles from a starting frame.
type Roller struct {
	Integrator l2arcs.Integrator
	Projector  l3poses.Projector
	Detector   l4collisions.Detector
	// Workers bounds concurrent profile evaluation. Zero means GOMAXPROCS.
	Workers int
}

// Propagate rolls start forward through profile with single-step semantics:
// an undefined action on an active vehicle aborts the rollout. The returned
// trajectory has one frame per tick and excludes start itself.
func (r Roller) Propagate(start l2arcs.Frame, profile Profile) (Trajectory, error) {
	traj := make(Trajectory, len(profile))
	frame := start.Clone()
	for t, action := range profile {
		res, err := r.Integrator.Step(frame, action)
		if err != nil {
			return nil, fmt.Errorf("tick %d: %w", t, err)
		}
		frame = res.Next
		traj[t] = r.Projector.Project(frame)
	}
	return traj, nil
}

// PropagateBatch rolls the same start forward through every profile at once
// using the batched integrator: each tick advances all profiles together.
// All profiles must have the same length. Undefined actions are not
// rejected; see l2arcs.Integrator.StepBatch.
func (r Roller) PropagateBatch(start l2arcs.Frame, profiles []Profile) []Trajectory {
	nb := len(profiles)
	out := make([]Trajectory, nb)
	if nb == 0 {
		return out
	}
	ticks := len(profiles[0])
	frames := make([]l2arcs.Frame, nb)
	for b := range profiles {
		if len(profiles[b]) != ticks {
			panic(fmt.Sprintf("l5rollouts: profile %d has %d ticks, want %d", b, len(profiles[b]), ticks))
		}
		frames[b] = start.Clone()
		out[b] = make(Trajectory, ticks)
	}

	actions := make([][]float64, nb)
	for t := 0; t < ticks; t++ {
		for b := range profiles {
			actions[b] = profiles[b][t]
		}
		res := r.Integrator.StepBatch(frames, actions)
		frames = res.Next
		for b, f := range frames {
			out[b][t] = r.Projector.Project(f)
		}
	}
	return out
}

// CheckFutureCollisions reports, per profile, whether propagating it from
// start leads to a collision at any tick. Profiles are evaluated
// concurrently; the first rollout error or context cancellation aborts the
// check.
func (r Roller) CheckFutureCollisions(ctx context.Context, start l2arcs.Frame, profiles []Profile) ([]bool, error) {
	out := make([]bool, len(profiles))
	err := r.eachTrajectory(ctx, start, profiles, func(b int, traj Trajectory) {
		out[b] = slices.Contains(r.Detector.FlagsTrajectory(traj), true)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountFutureCollisions returns the total collision incidents for each
// profile, evaluated like CheckFutureCollisions.
func (r Roller) CountFutureCollisions(ctx context.Context, start l2arcs.Frame, profiles []Profile) ([]int, error) {
	out := make([]int, len(profiles))
	err := r.eachTrajectory(ctx, start, profiles, func(b int, traj Trajectory) {
		out[b] = r.Detector.CountTrajectory(traj)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// eachTrajectory propagates every profile on a bounded pool of goroutines and
// hands each trajectory to fn. fn must only write state owned by index b.
func (r Roller) eachTrajectory(ctx context.Context, start l2arcs.Frame, profiles []Profile, fn func(b int, traj Trajectory)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for b := range profiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			traj, err := r.Propagate(start, profiles[b])
			if err != nil {
				return fmt.Errorf("profile %d: %w", b, err)
			}
			fn(b, traj)
			return nil
		})
	}
	return g.Wait()
}

func (r Roller) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}
