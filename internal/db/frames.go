package db

import (
	"fmt"
)

// FramePose is one stored vehicle pose.
type FramePose struct {
	Tick    int     `json:"tick"`
	T       float64 `json:"t"`
	Vehicle int     `json:"vehicle"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	V       float64 `json:"v"`
	Psi     float64 `json:"psi"`
	PsiDot  float64 `json:"psi_dot"`
}

// CollisionEvent is one colliding pair at one tick, with VehicleA < VehicleB.
type CollisionEvent struct {
	Tick     int     `json:"tick"`
	T        float64 `json:"t"`
	VehicleA int     `json:"vehicle_a"`
	VehicleB int     `json:"vehicle_b"`
}

// Trajectories returns every stored pose of a run grouped by vehicle, each
// in tick order.
func (db *DB) Trajectories(runID string) (map[int][]FramePose, error) {
	rows, err := db.Query(`SELECT tick, t, vehicle, x, y, v, psi, psi_dot FROM frames
		WHERE run_id = ? ORDER BY vehicle, tick`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]FramePose)
	for rows.Next() {
		var p FramePose
		if err := rows.Scan(&p.Tick, &p.T, &p.Vehicle, &p.X, &p.Y, &p.V, &p.Psi, &p.PsiDot); err != nil {
			return nil, fmt.Errorf("failed to scan frame: %w", err)
		}
		out[p.Vehicle] = append(out[p.Vehicle], p)
	}
	return out, rows.Err()
}

// Collisions returns the collision events of a run in tick order.
func (db *DB) Collisions(runID string) ([]CollisionEvent, error) {
	rows, err := db.Query(`SELECT tick, t, vehicle_a, vehicle_b FROM collisions
		WHERE run_id = ? ORDER BY tick, vehicle_a, vehicle_b`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collisions: %w", err)
	}
	defer rows.Close()

	var out []CollisionEvent
	for rows.Next() {
		var c CollisionEvent
		if err := rows.Scan(&c.Tick, &c.T, &c.VehicleA, &c.VehicleB); err != nil {
			return nil, fmt.Errorf("failed to scan collision: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CollidingPairs returns how many ticks each pair spent overlapping in a
// run, keyed by (VehicleA, VehicleB).
func (db *DB) CollidingPairs(runID string) (map[[2]int]int, error) {
	rows, err := db.Query(`SELECT vehicle_a, vehicle_b, COUNT(*) FROM collisions
		WHERE run_id = ? GROUP BY vehicle_a, vehicle_b`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query colliding pairs: %w", err)
	}
	defer rows.Close()

	out := make(map[[2]int]int)
	for rows.Next() {
		var a, b, n int
		if err := rows.Scan(&a, &b, &n); err != nil {
			return nil, fmt.Errorf("failed to scan colliding pair: %w", err)
		}
		out[[2]int{a, b}] = n
	}
	return out, rows.Err()
}
