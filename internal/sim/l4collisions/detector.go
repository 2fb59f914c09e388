package l4collisions

import (
	"math"

	"github.com/banshee-data/intersim/internal/sim/l3poses"
)

// Detector tests vehicle footprints for overlap. Lengths and Widths are
// indexed by vehicle and fixed for the lifetime of the simulation.
type Detector struct {
	Lengths []float64
	Widths  []float64
}

// NewDetector returns a Detector for the given vehicle dimensions.
func NewDetector(lengths, widths []float64) Detector {
	return Detector{Lengths: lengths, Widths: widths}
}

// Footprints builds a footprint for every present vehicle with a finite
// position. Other vehicles are left out entirely; index maps each footprint
// back to its vehicle.
func (d Detector) Footprints(poses []l3poses.Pose) (fps []Footprint, index []int) {
	for i, p := range poses {
		if !p.Present || !finite(p.X) || !finite(p.Y) {
			continue
		}
		fps = append(fps, NewFootprint(p, d.Lengths[i], d.Widths[i]))
		index = append(index, i)
	}
	return fps, index
}

// Matrix returns the collision matrix for one frame.
//
// Each unordered pair of present vehicles is tested once and written to both
// (i, j) and (j, i) at the vehicles' original indices, so absent vehicles keep
// all-zero rows and columns. Zero or one present vehicle yields an all-zero
// matrix.
func (d Detector) Matrix(poses []l3poses.Pose) *Matrix {
	m := NewMatrix(len(poses))
	fps, index := d.Footprints(poses)
	for a := 1; a < len(fps); a++ {
		for b := 0; b < a; b++ {
			if Intersects(fps[a], fps[b]) {
				m.mark(index[a], index[b])
			}
		}
	}
	return m
}

// Count returns the number of colliding pairs in one frame.
func (d Detector) Count(poses []l3poses.Pose) int {
	return d.Matrix(poses).NonZero() / 2
}

// Has reports whether any pair collides in one frame.
func (d Detector) Has(poses []l3poses.Pose) bool {
	return d.Count(poses) > 0
}

// TrajectoryMatrix sums the per-frame collision matrices of a trajectory
// indexed [frame][vehicle]. Entry (i, j) is the number of frames in which i
// and j overlap.
func (d Detector) TrajectoryMatrix(traj [][]l3poses.Pose) *Matrix {
	total := NewMatrix(len(d.Lengths))
	for _, frame := range traj {
		total.Add(d.Matrix(frame))
	}
	return total
}

// CountTrajectory returns the total number of collision incidents over a
// trajectory: a pair overlapping in k frames counts k times.
func (d Detector) CountTrajectory(traj [][]l3poses.Pose) int {
	return int(d.TrajectoryMatrix(traj).Sum()) / 2
}

// UniquePairsTrajectory returns the number of distinct pairs that overlap in
// at least one frame of the trajectory.
func (d Detector) UniquePairsTrajectory(traj [][]l3poses.Pose) int {
	return d.TrajectoryMatrix(traj).NonZero() / 2
}

// FlagsTrajectory evaluates Has independently for every frame.
func (d Detector) FlagsTrajectory(traj [][]l3poses.Pose) []bool {
	out := make([]bool, len(traj))
	for t, frame := range traj {
		out[t] = d.Has(frame)
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
