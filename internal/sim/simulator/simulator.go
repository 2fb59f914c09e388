package simulator

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/intersim/internal/config"
	"github.com/banshee-data/intersim/internal/monitoring"
	"github.com/banshee-data/intersim/internal/sim/graph"
	"github.com/banshee-data/intersim/internal/sim/l1paths"
	"github.com/banshee-data/intersim/internal/sim/l2arcs"
	"github.com/banshee-data/intersim/internal/sim/l3poses"
	"github.com/banshee-data/intersim/internal/sim/l4collisions"
	"github.com/banshee-data/intersim/internal/sim/l5rollouts"
	"github.com/banshee-data/intersim/internal/track"
)

// ErrEpisodeOver is returned by Step once the episode has finished. Call
// Reset to start a new one.
var ErrEpisodeOver = errors.New("episode is over and must be reset")

// State is the mutable part of a simulation, passed explicitly between
// steps.
type State struct {
	Tick     int
	Arcs     l2arcs.Frame
	Exceeded []bool // vehicle has run off the end of its path at some tick
	Done     bool
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{
		Tick:     s.Tick,
		Arcs:     s.Arcs.Clone(),
		Exceeded: append([]bool(nil), s.Exceeded...),
		Done:     s.Done,
	}
}

// Observation is what a controller sees after Reset or Step.
type Observation struct {
	Time     float64
	Poses    []l3poses.Pose
	Relative l3poses.RelativeFrame
	Graph    *graph.Graph
	Preview  [][]r2.Vec // upcoming path points per vehicle; nil for absent vehicles
}

// StepOutcome is everything Step learned while advancing one tick.
type StepOutcome struct {
	Observation
	Applied   []float64 // accelerations after clamping
	Clamped   bool
	Exceeded  []int // every vehicle exceeded so far
	Spawned   []int // vehicles spawned this tick
	Collision bool
	Matrix    *l4collisions.Matrix // nil unless collisions were checked
}

// Option customises a Simulator.
type Option func(*Simulator)

// WithGraphBuilder replaces the default radius-based interaction graph.
func WithGraphBuilder(b graph.Builder) Option {
	return func(s *Simulator) { s.builder = b }
}

// Simulator advances a Track under externally supplied accelerations.
// It holds no episode state of its own and is safe for concurrent use.
type Simulator struct {
	track      *track.Track
	integrator l2arcs.Integrator
	projector  l3poses.Projector
	detector   l4collisions.Detector
	builder    graph.Builder
	workers    int

	stopOnCollision bool
	checkCollisions bool

	previewMode   l1paths.PreviewMode
	previewPoints int
	previewDelta  float64
}

// New builds a Simulator for tr. A nil cfg uses the built-in defaults.
func New(tr *track.Track, cfg *config.SimConfig, opts ...Option) *Simulator {
	if cfg == nil {
		cfg = config.EmptySimConfig()
	}
	paths := tr.Paths()
	s := &Simulator{
		track: tr,
		integrator: l2arcs.Integrator{
			Dt:           tr.Dt,
			Bounds:       l2arcs.ActionBounds{Min: cfg.GetMinAccel(), Max: cfg.GetMaxAccel()},
			MaxArcLength: paths.MaxArcLengths(),
		},
		projector: l3poses.Projector{
			Paths:        paths,
			MaskRelative: cfg.GetMaskRelative(),
		},
		detector:        l4collisions.NewDetector(tr.Lengths(), tr.Widths()),
		builder:         graph.RadiusBuilder{Radius: cfg.GetInteractionRadius()},
		workers:         cfg.GetRolloutWorkers(),
		stopOnCollision: cfg.GetStopOnCollision(),
		checkCollisions: cfg.GetCheckCollisions(),
		previewPoints:   cfg.GetPathPreviewPoints(),
		previewDelta:    cfg.GetPathPreviewDelta(),
	}
	switch cfg.GetPathPreviewMode() {
	case config.PreviewTime:
		s.previewMode = l1paths.PreviewTime
	case config.PreviewToEnd:
		s.previewMode = l1paths.PreviewToEnd
	default:
		s.previewMode = l1paths.PreviewDistance
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Track returns the track being simulated.
func (s *Simulator) Track() *track.Track {
	return s.track
}

// NumVehicles returns the number of vehicles in the track.
func (s *Simulator) NumVehicles() int {
	return s.track.NumVehicles()
}

// Dt returns the step length in seconds.
func (s *Simulator) Dt() float64 {
	return s.integrator.Dt
}

// Bounds returns the acceleration bounds applied by Step.
func (s *Simulator) Bounds() l2arcs.ActionBounds {
	return s.integrator.Bounds
}

// Integrator exposes the configured integrator, e.g. for TargetAction.
func (s *Simulator) Integrator() l2arcs.Integrator {
	return s.integrator
}

// Detector exposes the configured collision detector.
func (s *Simulator) Detector() l4collisions.Detector {
	return s.detector
}

// Time returns the simulation time of state.
func (s *Simulator) Time(state State) float64 {
	return s.track.MinT + s.track.Dt*float64(state.Tick)
}

// Reset returns the initial state and its observation.
func (s *Simulator) Reset() (State, Observation) {
	state := State{
		Arcs:     s.track.InitialFrame(),
		Exceeded: make([]bool, s.NumVehicles()),
	}
	monitoring.Logf("simulator reset: %d vehicles, %d active at t=%.2f",
		s.NumVehicles(), state.Arcs.ActiveCount(), s.Time(state))
	return state, s.Observe(state)
}

// Observe projects state without advancing it.
func (s *Simulator) Observe(state State) Observation {
	poses := s.projector.Project(state.Arcs)
	g := s.builder.Build(poses)
	p := s.projector
	p.Adjacency = g
	return Observation{
		Time:     s.Time(state),
		Poses:    poses,
		Relative: p.Relative(poses),
		Graph:    g,
		Preview:  s.preview(state.Arcs),
	}
}

func (s *Simulator) preview(frame l2arcs.Frame) [][]r2.Vec {
	if s.previewPoints == 0 {
		return nil
	}
	out := make([][]r2.Vec, len(frame))
	for i, st := range frame {
		if !st.IsActive() {
			continue
		}
		out[i] = s.projector.Paths[i].Preview(st.S, st.SDot, s.previewMode, s.previewDelta, s.previewPoints)
	}
	return out
}

// Step advances state by one tick under action (one acceleration per
// vehicle) and returns the next state. state itself is not modified.
//
// After integration, every vehicle whose spawn time has been reached, which
// has never exceeded its path, and which was Inactive before this step is
// placed at its recorded initial arc state. The episode is done once every
// vehicle has exceeded its path, or on the first collision when
// stop_on_collision is set.
func (s *Simulator) Step(state State, action []float64) (State, StepOutcome, error) {
	if state.Done {
		return state, StepOutcome{}, ErrEpisodeOver
	}
	res, err := s.integrator.Step(state.Arcs, action)
	if err != nil {
		return state, StepOutcome{}, fmt.Errorf("t=%.3f: %w", s.Time(state), err)
	}

	next := State{
		Tick:     state.Tick + 1,
		Arcs:     res.Next,
		Exceeded: make([]bool, len(state.Exceeded)),
	}
	done := true
	for i := range next.Exceeded {
		next.Exceeded[i] = state.Exceeded[i] || res.Exceeded[i]
		done = done && next.Exceeded[i]
	}
	next.Done = done

	t := s.Time(next)
	var spawned []int
	for i, v := range s.track.Vehicles {
		if v.T0 <= t && !next.Exceeded[i] && !state.Arcs[i].IsActive() {
			next.Arcs[i] = l2arcs.Active(v.S0, v.V0)
			spawned = append(spawned, i)
		}
	}

	out := StepOutcome{
		Observation: s.Observe(next),
		Applied:     res.Applied,
		Clamped:     res.Clamped,
		Exceeded:    indices(next.Exceeded),
		Spawned:     spawned,
	}
	if s.checkCollisions || s.stopOnCollision {
		out.Matrix = s.detector.Matrix(out.Poses)
		out.Collision = out.Matrix.NonZero() > 0
		if out.Collision && s.stopOnCollision {
			monitoring.Logf("collision at t=%.3f, stopping episode", t)
			next.Done = true
		}
	}
	return next, out, nil
}

// FutureCollisions reports, per action profile, whether rolling state
// forward through it leads to a collision. Vehicles that would spawn during
// the rollout are not considered.
func (s *Simulator) FutureCollisions(ctx context.Context, state State, profiles []l5rollouts.Profile) ([]bool, error) {
	return s.roller().CheckFutureCollisions(ctx, state.Arcs, profiles)
}

// Propagate rolls state forward through profile without spawning.
func (s *Simulator) Propagate(state State, profile l5rollouts.Profile) (l5rollouts.Trajectory, error) {
	return s.roller().Propagate(state.Arcs, profile)
}

func (s *Simulator) roller() l5rollouts.Roller {
	return l5rollouts.Roller{
		Integrator: s.integrator,
		Projector:  s.projector,
		Detector:   s.detector,
		Workers:    s.workers,
	}
}

// TargetAction returns the accelerations that steer state towards target,
// regularised by mu. See l2arcs.Integrator.TargetAction.
func (s *Simulator) TargetAction(state State, target l2arcs.Frame, mu float64) []float64 {
	return s.integrator.TargetAction(state.Arcs, target, mu)
}

func indices(mask []bool) []int {
	var out []int
	for i, b := range mask {
		if b {
			out = append(out, i)
		}
	}
	return out
}

