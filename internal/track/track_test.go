package track

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/intersim/internal/sim/l1paths"
	"github.com/banshee-data/intersim/internal/sim/l2arcs"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	tr, err := Load("testdata/crossing.json")
	require.NoError(t, err)

	assert.Equal(t, "crossing", tr.Name)
	assert.Equal(t, 0.5, tr.Dt)
	assert.Equal(t, 3, tr.NumVehicles())
	assert.Equal(t, []float64{4, 4.5, 5}, tr.Lengths())
	assert.Equal(t, []float64{2, 1.8, 2.2}, tr.Widths())
	assert.Equal(t, []float64{100, 60, 30}, tr.MaxArcLengths())
	assert.Equal(t, []float64{10, 11, 9.5}, tr.SpawnTimes())
}

func TestLoad_Rejects(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"extension", write("track.yaml", "{}"), ".json extension"},
		{"missing", filepath.Join(dir, "nope.json"), "failed to stat"},
		{"malformed", write("bad.json", "{"), "failed to parse"},
		{"too large", write("big.json", strings.Repeat(" ", MaxFileSize+1)), "too large"},
		{"no dt", write("nodt.json", `{"vehicles":[{"smax":1,"x":[0],"y":[0]}]}`), "dt must be positive"},
		{"no vehicles", write("empty.json", `{"dt":0.1}`), "no vehicles"},
		{"bad smax", write("smax.json", `{"dt":0.1,"vehicles":[{"smax":0,"x":[0],"y":[0]}]}`), "smax must be positive"},
		{"no path", write("nopath.json", `{"dt":0.1,"vehicles":[{"smax":1,"x":[],"y":[0]}]}`), "empty path"},
		{"negative size", write("size.json", `{"dt":0.1,"vehicles":[{"smax":1,"length":-1,"x":[0],"y":[0]}]}`), "negative dimensions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVehicle_PathDerivatives(t *testing.T) {
	t.Parallel()

	tr, err := Load("testdata/crossing.json")
	require.NoError(t, err)
	paths := tr.Paths()
	require.Len(t, paths, 3)

	// Derived: x = s - 20.
	assert.Equal(t, l1paths.Polynomial{1}, paths[0].DX)
	assert.Equal(t, l1paths.Polynomial{0}, paths[0].DDX)

	// Supplied dx is used as given and differentiated once more.
	assert.Equal(t, l1paths.Polynomial{0.2, 0}, paths[2].DX)
	assert.Equal(t, l1paths.Polynomial{0.2}, paths[2].DDX)
	assert.Equal(t, 30.0, paths[2].MaxArcLength)

	pt := paths[0].Evaluate(20)
	assert.InDelta(t, 0.0, pt.Position.X, 1e-12)
}

func TestInitialFrame(t *testing.T) {
	t.Parallel()

	tr, err := Load("testdata/crossing.json")
	require.NoError(t, err)

	f := tr.InitialFrame()
	assert.Equal(t, l2arcs.Active(0, 10), f[0])
	assert.False(t, f[1].IsActive(), "spawns after min_t")
	assert.Equal(t, l2arcs.Active(2, 0), f[2])
}

func TestShuffle(t *testing.T) {
	t.Parallel()

	tr, err := Load("testdata/crossing.json")
	require.NoError(t, err)

	a := tr.Shuffle(42)
	b := tr.Shuffle(42)
	assert.Equal(t, a, b, "same seed must give the same permutation")

	// Timing and dimensions stay with the vehicle.
	for i, v := range a.Vehicles {
		orig := tr.Vehicles[i]
		assert.Equal(t, orig.ID, v.ID)
		assert.Equal(t, orig.T0, v.T0)
		assert.Equal(t, orig.Length, v.Length)
		assert.LessOrEqual(t, v.S0, v.MaxArcLength)
	}

	// The multiset of path ends is preserved.
	assert.ElementsMatch(t, tr.MaxArcLengths(), a.MaxArcLengths())
	require.NoError(t, a.Validate())

	// The original is untouched.
	assert.Equal(t, []float64{100, 60, 30}, tr.MaxArcLengths())
}

func TestStraight(t *testing.T) {
	t.Parallel()

	v := Straight(1, 2, 3, 0, 50)
	v.Length, v.Width = 4, 2
	tr := &Track{Dt: 0.1, Vehicles: []Vehicle{v}}
	require.NoError(t, tr.Validate())

	pos := tr.Paths()[0].Position(10)
	assert.InDelta(t, 12.0, pos.X, 1e-12)
	assert.InDelta(t, 3.0, pos.Y, 1e-12)
}
