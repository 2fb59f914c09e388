package track

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/banshee-data/intersim/internal/sim/l1paths"
	"github.com/banshee-data/intersim/internal/sim/l2arcs"
)

// MaxFileSize caps the size of a track file accepted by Load.
const MaxFileSize = 1 * 1024 * 1024 // 1MB

// ErrInvalidTrack wraps every validation failure.
var ErrInvalidTrack = errors.New("invalid track")

// Vehicle is one recorded vehicle. Polynomial coefficients are ordered from
// the highest degree down to the constant term. Derivative polynomials are
// optional; missing ones are derived from X and Y.
type Vehicle struct {
	ID           int       `json:"id"`
	T0           float64   `json:"t0"`   // spawn time (s)
	S0           float64   `json:"s0"`   // arc length at spawn (m)
	V0           float64   `json:"v0"`   // arc speed at spawn (m/s)
	MaxArcLength float64   `json:"smax"` // end of the fitted path (m)
	Length       float64   `json:"length"`
	Width        float64   `json:"width"`
	X            []float64 `json:"x"`
	Y            []float64 `json:"y"`
	DX           []float64 `json:"dx,omitempty"`
	DY           []float64 `json:"dy,omitempty"`
	DDX          []float64 `json:"ddx,omitempty"`
	DDY          []float64 `json:"ddy,omitempty"`
}

// Path returns the vehicle's reference path.
func (v Vehicle) Path() l1paths.Path {
	p := l1paths.NewPath(v.X, v.Y, v.MaxArcLength)
	if len(v.DX) > 0 {
		p.DX = v.DX
		p.DDX = l1paths.Derivative(v.DX)
	}
	if len(v.DY) > 0 {
		p.DY = v.DY
		p.DDY = l1paths.Derivative(v.DY)
	}
	if len(v.DDX) > 0 {
		p.DDX = v.DDX
	}
	if len(v.DDY) > 0 {
		p.DDY = v.DDY
	}
	return p
}

// Track is a recorded scene.
type Track struct {
	Name     string    `json:"name"`
	Dt       float64   `json:"dt"`    // simulation time step (s)
	MinT     float64   `json:"min_t"` // time of the first frame (s)
	Vehicles []Vehicle `json:"vehicles"`
}

// Load reads a Track from a JSON file. The file must have a .json extension
// and be no larger than MaxFileSize.
func Load(path string) (*Track, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("track file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat track file: %w", err)
	}
	if fileInfo.Size() > MaxFileSize {
		return nil, fmt.Errorf("track file too large: %d bytes (max %d)", fileInfo.Size(), MaxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read track file: %w", err)
	}

	var t Track
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse track JSON: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the track is usable by the simulator.
func (t *Track) Validate() error {
	if !(t.Dt > 0) || math.IsInf(t.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidTrack, t.Dt)
	}
	if len(t.Vehicles) == 0 {
		return fmt.Errorf("%w: no vehicles", ErrInvalidTrack)
	}
	for i, v := range t.Vehicles {
		switch {
		case !(v.MaxArcLength > 0):
			return fmt.Errorf("%w: vehicle %d: smax must be positive, got %v", ErrInvalidTrack, i, v.MaxArcLength)
		case v.Length < 0 || v.Width < 0:
			return fmt.Errorf("%w: vehicle %d: negative dimensions %vx%v", ErrInvalidTrack, i, v.Length, v.Width)
		case len(v.X) == 0 || len(v.Y) == 0:
			return fmt.Errorf("%w: vehicle %d: empty path polynomial", ErrInvalidTrack, i)
		case v.S0 < 0 || v.V0 < 0:
			return fmt.Errorf("%w: vehicle %d: negative initial state (%v, %v)", ErrInvalidTrack, i, v.S0, v.V0)
		}
	}
	return nil
}

// NumVehicles returns the number of vehicles in the track.
func (t *Track) NumVehicles() int {
	return len(t.Vehicles)
}

// Paths returns every vehicle's reference path.
func (t *Track) Paths() l1paths.PathSet {
	out := make(l1paths.PathSet, len(t.Vehicles))
	for i, v := range t.Vehicles {
		out[i] = v.Path()
	}
	return out
}

// Lengths returns the vehicle footprint lengths.
func (t *Track) Lengths() []float64 {
	return t.collect(func(v Vehicle) float64 { return v.Length })
}

// Widths returns the vehicle footprint widths.
func (t *Track) Widths() []float64 {
	return t.collect(func(v Vehicle) float64 { return v.Width })
}

// MaxArcLengths returns each vehicle's path end.
func (t *Track) MaxArcLengths() []float64 {
	return t.collect(func(v Vehicle) float64 { return v.MaxArcLength })
}

// SpawnTimes returns each vehicle's T0.
func (t *Track) SpawnTimes() []float64 {
	return t.collect(func(v Vehicle) float64 { return v.T0 })
}

func (t *Track) collect(f func(Vehicle) float64) []float64 {
	out := make([]float64, len(t.Vehicles))
	for i, v := range t.Vehicles {
		out[i] = f(v)
	}
	return out
}

// InitialFrame returns the arc state at MinT: vehicles with T0 <= MinT are
// Active at (S0, V0), the rest Inactive.
func (t *Track) InitialFrame() l2arcs.Frame {
	f := l2arcs.NewFrame(len(t.Vehicles))
	for i, v := range t.Vehicles {
		if v.T0 <= t.MinT {
			f[i] = l2arcs.Active(v.S0, v.V0)
		}
	}
	return f
}

// Shuffle returns a copy of the track with path geometry permuted across
// vehicles by a seeded permutation. Each vehicle keeps its ID, spawn time,
// initial speed and dimensions. An S0 beyond the new path's end is reset to
// zero.
func (t *Track) Shuffle(seed uint64) *Track {
	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(len(t.Vehicles))

	out := &Track{Name: t.Name, Dt: t.Dt, MinT: t.MinT, Vehicles: make([]Vehicle, len(t.Vehicles))}
	for i, v := range t.Vehicles {
		src := t.Vehicles[perm[i]]
		v.X, v.Y = src.X, src.Y
		v.DX, v.DY, v.DDX, v.DDY = src.DX, src.DY, src.DDX, src.DDY
		v.MaxArcLength = src.MaxArcLength
		if v.S0 > v.MaxArcLength {
			v.S0 = 0
		}
		out.Vehicles[i] = v
	}
	return out
}

// Straight builds a straight-line vehicle starting at (x0, y0) with the
// given heading (radians) and path length.
func Straight(id int, x0, y0, heading, length float64) Vehicle {
	c, s := math.Cos(heading), math.Sin(heading)
	return Vehicle{
		ID:           id,
		MaxArcLength: length,
		X:            []float64{c, x0},
		Y:            []float64{s, y0},
	}
}
