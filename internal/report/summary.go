package report

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/intersim/internal/db"
)

// VehicleSummary aggregates one vehicle's recorded poses.
type VehicleSummary struct {
	Vehicle    int     `json:"vehicle"`
	Samples    int     `json:"samples"`
	FirstT     float64 `json:"first_t"`
	LastT      float64 `json:"last_t"`
	MeanSpeed  float64 `json:"mean_speed"`
	MaxSpeed   float64 `json:"max_speed"`
	PathLength float64 `json:"path_length"` // polyline length through the samples, m
}

// Summarise returns one VehicleSummary per vehicle with at least one
// sample, ordered by vehicle index.
func Summarise(traj map[int][]db.FramePose) []VehicleSummary {
	vehicles := sortedVehicles(traj)
	out := make([]VehicleSummary, 0, len(vehicles))
	for _, v := range vehicles {
		poses := traj[v]
		if len(poses) == 0 {
			continue
		}
		speeds := make([]float64, len(poses))
		length := 0.0
		for k, p := range poses {
			speeds[k] = p.V
			if k > 0 {
				length += math.Hypot(p.X-poses[k-1].X, p.Y-poses[k-1].Y)
			}
		}
		out = append(out, VehicleSummary{
			Vehicle:    v,
			Samples:    len(poses),
			FirstT:     poses[0].T,
			LastT:      poses[len(poses)-1].T,
			MeanSpeed:  floats.Sum(speeds) / float64(len(speeds)),
			MaxSpeed:   floats.Max(speeds),
			PathLength: length,
		})
	}
	return out
}

func sortedVehicles(traj map[int][]db.FramePose) []int {
	vehicles := make([]int, 0, len(traj))
	for v := range traj {
		vehicles = append(vehicles, v)
	}
	slices.Sort(vehicles)
	return vehicles
}
