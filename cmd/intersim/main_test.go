package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/intersim/internal/config"
	"github.com/banshee-data/intersim/internal/db"
	"github.com/banshee-data/intersim/internal/monitoring"
	"github.com/banshee-data/intersim/internal/track"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

// crossing has two 4×2 vehicles meeting at the origin after 20 m at 10 m/s.
func crossing() *track.Track {
	v0 := track.Straight(0, -20, 0, 0, 40)
	v0.V0, v0.Length, v0.Width = 10, 4, 2
	v1 := track.Straight(1, 0, -20, 1.5707963267948966, 40)
	v1.V0, v1.Length, v1.Width = 10, 4, 2
	return &track.Track{Name: "crossing", Dt: 1, Vehicles: []track.Vehicle{v0, v1}}
}

func collisionConfig() *config.SimConfig {
	cfg := config.DefaultSimConfig()
	check := true
	cfg.CheckCollisions = &check
	return cfg
}

func newStore(t *testing.T) *db.DB {
	t.Helper()
	store, err := db.NewDB(filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunEpisode_RecordsRun(t *testing.T) {
	store := newStore(t)
	plot := filepath.Join(t.TempDir(), "crossing.png")

	rec, err := runEpisode(context.Background(), store, crossing(), collisionConfig(),
		episodeOptions{TargetSpeed: -1, PlotPath: plot})
	require.NoError(t, err)

	// Both vehicles travel 10 m per tick and run past 40 m at tick 5.
	assert.Equal(t, 5, rec.Summary.Steps)
	assert.True(t, rec.Summary.Done)

	run, err := store.GetRun(rec.RunID)
	require.NoError(t, err)
	assert.Equal(t, "crossing", run.TrackName)
	assert.Equal(t, 5, run.Steps)
	assert.True(t, run.Done)
	assert.NotNil(t, run.FinishedAt)
	assert.Contains(t, run.ConfigJSON, "min_accel")

	traj, err := store.Trajectories(rec.RunID)
	require.NoError(t, err)
	// Ticks 0 to 4; both are gone at tick 5.
	assert.Len(t, traj[0], 5)
	assert.Len(t, traj[1], 5)

	collisions, err := store.Collisions(rec.RunID)
	require.NoError(t, err)
	require.Len(t, collisions, 1)
	assert.Equal(t, 2, collisions[0].Tick)
	assert.Equal(t, rec.Summary.Collisions, len(collisions))

	info, err := os.Stat(plot)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRunEpisode_MaxSteps(t *testing.T) {
	store := newStore(t)
	rec, err := runEpisode(context.Background(), store, crossing(), config.DefaultSimConfig(),
		episodeOptions{MaxSteps: 1, TargetSpeed: -1})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Summary.Steps)
	assert.False(t, rec.Summary.Done)
}

func TestRunEpisode_TargetSpeed(t *testing.T) {
	store := newStore(t)
	rec, err := runEpisode(context.Background(), store, crossing(), config.DefaultSimConfig(),
		episodeOptions{MaxSteps: 2, TargetSpeed: 0, Mu: 0})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Summary.Steps)
	assert.Less(t, rec.Summary.MeanSpeed, 10.0)
}

func TestRunEpisode_Cancelled(t *testing.T) {
	store := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := runEpisode(ctx, store, crossing(), config.DefaultSimConfig(), episodeOptions{TargetSpeed: -1})
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, episodeInterrupted(err), "cancellation must not be fatal")
	run, getErr := store.GetRun(rec.RunID)
	require.NoError(t, getErr)
	assert.Equal(t, 0, run.Steps)
	assert.NotNil(t, run.FinishedAt)
}

func TestEpisodeInterrupted(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, true},
		{"wrapped cancel", fmt.Errorf("step 3: %w", context.Canceled), true},
		{"other", errors.New("disk full"), false},
	}
	for _, tt := range tests {
		if got := episodeInterrupted(tt.err); got != tt.want {
			t.Errorf("%s: episodeInterrupted = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSampleTrackLoads(t *testing.T) {
	tr, err := track.Load("../../config/tracks/junction.json")
	require.NoError(t, err)
	assert.Equal(t, "junction", tr.Name)
	assert.Equal(t, 5, tr.NumVehicles())
}
