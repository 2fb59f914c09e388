package l5rollouts

import (
	"context"
	"math"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/intersim/internal/monitoring"
	"github.com/banshee-data/intersim/internal/sim/l1paths"
	"github.com/banshee-data/intersim/internal/sim/l2arcs"
	"github.com/banshee-data/intersim/internal/sim/l3poses"
	"github.com/banshee-data/intersim/internal/sim/l4collisions"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

// crossingRoller has vehicle 0 heading east along y = 0 from x = -20 and
// vehicle 1 heading north along x = 0 from y = -20. At equal speed they meet
// at the origin after 20 m.
func crossingRoller(workers int) Roller {
	paths := l1paths.PathSet{
		l1paths.NewPath(l1paths.Polynomial{1, -20}, l1paths.Polynomial{0}, 100),
		l1paths.NewPath(l1paths.Polynomial{0}, l1paths.Polynomial{1, -20}, 100),
	}
	return Roller{
		Integrator: l2arcs.Integrator{
			Dt:           1,
			Bounds:       l2arcs.ActionBounds{Min: -10, Max: 10},
			MaxArcLength: paths.MaxArcLengths(),
		},
		Projector: l3poses.NewProjector(paths),
		Detector:  l4collisions.NewDetector([]float64{4, 4}, []float64{2, 2}),
		Workers:   workers,
	}
}

var crossingStart = l2arcs.Frame{l2arcs.Active(0, 10), l2arcs.Active(0, 10)}

func constant(ticks int, a ...float64) Profile {
	p := make(Profile, ticks)
	for t := range p {
		p[t] = append([]float64(nil), a...)
	}
	return p
}

func TestPropagate(t *testing.T) {
	t.Parallel()

	r := crossingRoller(1)
	traj, err := r.Propagate(crossingStart, constant(3, 0, 0))
	require.NoError(t, err)
	require.Len(t, traj, 3)

	assert.InDelta(t, -10.0, traj[0][0].X, 1e-12)
	assert.InDelta(t, 0.0, traj[1][0].X, 1e-12)
	assert.InDelta(t, 0.0, traj[1][1].Y, 1e-12)
	assert.InDelta(t, 10.0, traj[2][1].Y, 1e-12)

	// The start frame is not mutated.
	assert.Equal(t, 0.0, crossingStart[0].S)
}

func TestPropagate_UndefinedActionAborts(t *testing.T) {
	t.Parallel()

	r := crossingRoller(1)
	profile := constant(3, 0, 0)
	profile[1][0] = math.NaN()
	_, err := r.Propagate(crossingStart, profile)
	require.ErrorIs(t, err, l2arcs.ErrUndefinedAction)
	assert.Contains(t, err.Error(), "tick 1")
}

func TestPropagateBatch_MatchesPropagate(t *testing.T) {
	t.Parallel()

	r := crossingRoller(1)
	profiles := []Profile{
		constant(4, 0, 0),
		constant(4, 2, -3),
		constant(4, -20, 20),
	}
	batch := r.PropagateBatch(crossingStart, profiles)
	require.Len(t, batch, len(profiles))

	for b, p := range profiles {
		single, err := r.Propagate(crossingStart, p)
		require.NoError(t, err)
		if diff := cmp.Diff(single, batch[b], cmpopts.EquateApprox(0, 1e-12)); diff != "" {
			t.Errorf("profile %d mismatch (-single +batch):\n%s", b, diff)
		}
	}
	assert.Empty(t, r.PropagateBatch(crossingStart, nil))
}

func TestPropagateBatch_UnequalLengthsPanic(t *testing.T) {
	t.Parallel()

	r := crossingRoller(1)
	assert.Panics(t, func() {
		r.PropagateBatch(crossingStart, []Profile{constant(2, 0, 0), constant(3, 0, 0)})
	})
}

func TestCheckFutureCollisions(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{0, 1, 4} {
		r := crossingRoller(workers)
		profiles := []Profile{
			constant(3, 0, 0),     // both arrive together
			constant(3, 0, -10),   // vehicle 1 stops short
			constant(3, -10, -10), // both stop short
		}
		got, err := r.CheckFutureCollisions(context.Background(), crossingStart, profiles)
		require.NoError(t, err)
		assert.Equal(t, []bool{true, false, false}, got, "workers=%d", workers)

		counts, err := r.CountFutureCollisions(context.Background(), crossingStart, profiles)
		require.NoError(t, err)
		assert.Equal(t, 1, counts[0])
		assert.Equal(t, 0, counts[1])
		assert.Equal(t, 0, counts[2])
	}
}

func TestCheckFutureCollisions_PropagatesErrors(t *testing.T) {
	t.Parallel()

	r := crossingRoller(2)
	bad := constant(2, 0, 0)
	bad[0][1] = math.NaN()
	_, err := r.CheckFutureCollisions(context.Background(), crossingStart, []Profile{constant(2, 0, 0), bad})
	require.ErrorIs(t, err, l2arcs.ErrUndefinedAction)
	assert.Contains(t, err.Error(), "profile 1")
}

func TestCheckFutureCollisions_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := crossingRoller(1).CheckFutureCollisions(ctx, crossingStart, []Profile{constant(2, 0, 0)})
	assert.ErrorIs(t, err, context.Canceled)
}
