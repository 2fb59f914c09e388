package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/intersim/internal/sim/l3poses"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded simulation episode.
type Run struct {
	ID             string     `json:"run_id"`
	TrackName      string     `json:"track_name"`
	Dt             float64    `json:"dt"`
	MinT           float64    `json:"min_t"`
	NumVehicles    int        `json:"num_vehicles"`
	ConfigJSON     string     `json:"config_json"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	Steps          int        `json:"steps"`
	Done           bool       `json:"done"`
	CollisionSteps int        `json:"collision_steps"`
	Collisions     int        `json:"collisions"`
	MeanSpeed      float64    `json:"mean_speed"`
}

// RunResult is the summary written when a run finishes.
type RunResult struct {
	Steps          int
	Done           bool
	CollisionSteps int
	Collisions     int
	MeanSpeed      float64
}

// CreateRun inserts r, assigning a new id when r.ID is empty.
func (db *DB) CreateRun(r *Run) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.ConfigJSON == "" {
		r.ConfigJSON = "{}"
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		`INSERT INTO runs (run_id, track_name, dt, min_t, num_vehicles, config_json, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.TrackName, r.Dt, r.MinT, r.NumVehicles, r.ConfigJSON, r.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// FinishRun records the outcome of run id.
func (db *DB) FinishRun(id string, res RunResult) error {
	result, err := db.Exec(
		`UPDATE runs SET finished_at = ?, steps = ?, done = ?, collision_steps = ?, collisions = ?, mean_speed = ?
		 WHERE run_id = ?`,
		time.Now().UTC(), res.Steps, res.Done, res.CollisionSteps, res.Collisions, res.MeanSpeed, id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

const runColumns = `run_id, track_name, dt, min_t, num_vehicles, config_json, started_at,
	finished_at, steps, done, collision_steps, collisions, mean_speed`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*Run, error) {
	var (
		r        Run
		finished sql.NullTime
	)
	if err := s.Scan(&r.ID, &r.TrackName, &r.Dt, &r.MinT, &r.NumVehicles, &r.ConfigJSON, &r.StartedAt,
		&finished, &r.Steps, &r.Done, &r.CollisionSteps, &r.Collisions, &r.MeanSpeed); err != nil {
		return nil, err
	}
	if finished.Valid {
		r.FinishedAt = &finished.Time
	}
	return &r, nil
}

// GetRun returns run id.
func (db *DB) GetRun(id string) (*Run, error) {
	r, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// ListRuns returns up to limit runs, most recent first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run together with its frames and collisions.
func (db *DB) DeleteRun(id string) error {
	result, err := db.Exec(`DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// RecordStep stores the present poses of one tick and its colliding pairs
// in a single transaction. Absent vehicles are not stored.
func (db *DB) RecordStep(runID string, tick int, t float64, poses []l3poses.Pose, pairs [][2]int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	frameStmt, err := tx.Prepare(`INSERT INTO frames (run_id, tick, t, vehicle, x, y, v, psi, psi_dot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare frame insert: %w", err)
	}
	defer frameStmt.Close()
	for i, p := range poses {
		if !p.Present {
			continue
		}
		if _, err := frameStmt.Exec(runID, tick, t, i, p.X, p.Y, p.V, p.Psi, p.PsiDot); err != nil {
			return fmt.Errorf("failed to insert frame for vehicle %d: %w", i, err)
		}
	}

	for _, pr := range pairs {
		if _, err := tx.Exec(`INSERT INTO collisions (run_id, tick, t, vehicle_a, vehicle_b) VALUES (?, ?, ?, ?, ?)`,
			runID, tick, t, pr[0], pr[1]); err != nil {
			return fmt.Errorf("failed to insert collision %v: %w", pr, err)
		}
	}
	return tx.Commit()
}
