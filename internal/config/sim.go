package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/intersim/internal/units"
)

// DefaultConfigPath is the path to the canonical simulation defaults file.
// This is the single source of truth for all default simulation values.
const DefaultConfigPath = "config/sim.defaults.json"

// Path preview modes accepted by path_preview_mode.
const (
	PreviewDistance = "distance"
	PreviewTime     = "time"
	PreviewToEnd    = "end"
)

// SimConfig represents the root configuration for a simulation run.
// Every field is optional; the Get* methods supply defaults for anything
// left out of the JSON.
type SimConfig struct {
	// Integrator
	MinAccel *float64 `json:"min_accel,omitempty"` // m/s²
	MaxAccel *float64 `json:"max_accel,omitempty"` // m/s²

	// Episode
	StopOnCollision *bool `json:"stop_on_collision,omitempty"`
	CheckCollisions *bool `json:"check_collisions,omitempty"`
	MaxSteps        *int  `json:"max_steps,omitempty"`

	// Observation
	MaskRelative      *bool    `json:"mask_relative,omitempty"`
	InteractionRadius *float64 `json:"interaction_radius,omitempty"` // m
	PathPreviewMode   *string  `json:"path_preview_mode,omitempty"`
	PathPreviewPoints *int     `json:"path_preview_points,omitempty"`
	PathPreviewDelta  *float64 `json:"path_preview_delta,omitempty"` // m or s, per mode

	// Rollouts
	RolloutWorkers *int `json:"rollout_workers,omitempty"` // 0 = GOMAXPROCS

	// Reporting
	SpeedUnits *string `json:"speed_units,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptySimConfig returns a SimConfig with all fields set to nil.
// Use LoadSimConfig to load actual values from the defaults file.
func EmptySimConfig() *SimConfig {
	return &SimConfig{}
}

// DefaultSimConfig returns a SimConfig with every field populated from the
// built-in defaults.
func DefaultSimConfig() *SimConfig {
	c := EmptySimConfig()
	return &SimConfig{
		MinAccel:          ptrFloat64(c.GetMinAccel()),
		MaxAccel:          ptrFloat64(c.GetMaxAccel()),
		StopOnCollision:   ptrBool(c.GetStopOnCollision()),
		CheckCollisions:   ptrBool(c.GetCheckCollisions()),
		MaxSteps:          ptrInt(c.GetMaxSteps()),
		MaskRelative:      ptrBool(c.GetMaskRelative()),
		InteractionRadius: ptrFloat64(c.GetInteractionRadius()),
		PathPreviewMode:   ptrString(c.GetPathPreviewMode()),
		PathPreviewPoints: ptrInt(c.GetPathPreviewPoints()),
		PathPreviewDelta:  ptrFloat64(c.GetPathPreviewDelta()),
		RolloutWorkers:    ptrInt(c.GetRolloutWorkers()),
		SpeedUnits:        ptrString(c.GetSpeedUnits()),
	}
}

// LoadSimConfig loads a SimConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadSimConfig(path string) (*SimConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySimConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *SimConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/sim/simulator/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadSimConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *SimConfig) Validate() error {
	minA, maxA := c.GetMinAccel(), c.GetMaxAccel()
	if math.IsNaN(minA) || math.IsNaN(maxA) || minA > maxA {
		return fmt.Errorf("min_accel (%v) must not exceed max_accel (%v)", minA, maxA)
	}

	if c.InteractionRadius != nil && *c.InteractionRadius < 0 {
		return fmt.Errorf("interaction_radius must be non-negative, got %f", *c.InteractionRadius)
	}

	if c.RolloutWorkers != nil && *c.RolloutWorkers < 0 {
		return fmt.Errorf("rollout_workers must be non-negative, got %d", *c.RolloutWorkers)
	}

	if c.MaxSteps != nil && *c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative, got %d", *c.MaxSteps)
	}

	if c.PathPreviewPoints != nil && *c.PathPreviewPoints < 0 {
		return fmt.Errorf("path_preview_points must be non-negative, got %d", *c.PathPreviewPoints)
	}

	switch mode := c.GetPathPreviewMode(); mode {
	case PreviewDistance, PreviewTime, PreviewToEnd:
	default:
		return fmt.Errorf("invalid path_preview_mode '%s'", mode)
	}

	if c.SpeedUnits != nil && !units.IsValid(*c.SpeedUnits) {
		return fmt.Errorf("invalid speed_units '%s', must be one of: %s", *c.SpeedUnits, units.GetValidUnitsString())
	}

	return nil
}

// GetMinAccel returns the min_accel value or the default.
func (c *SimConfig) GetMinAccel() float64 {
	if c.MinAccel == nil {
		return -10.0
	}
	return *c.MinAccel
}

// GetMaxAccel returns the max_accel value or the default.
func (c *SimConfig) GetMaxAccel() float64 {
	if c.MaxAccel == nil {
		return 10.0
	}
	return *c.MaxAccel
}

// GetStopOnCollision returns the stop_on_collision value or the default.
func (c *SimConfig) GetStopOnCollision() bool {
	if c.StopOnCollision == nil {
		return false
	}
	return *c.StopOnCollision
}

// GetCheckCollisions returns the check_collisions value or the default.
func (c *SimConfig) GetCheckCollisions() bool {
	if c.CheckCollisions == nil {
		return false
	}
	return *c.CheckCollisions
}

// GetMaxSteps returns the max_steps value or the default.
func (c *SimConfig) GetMaxSteps() int {
	if c.MaxSteps == nil {
		return 1000
	}
	return *c.MaxSteps
}

// GetMaskRelative returns the mask_relative value or the default.
func (c *SimConfig) GetMaskRelative() bool {
	if c.MaskRelative == nil {
		return false
	}
	return *c.MaskRelative
}

// GetInteractionRadius returns the interaction_radius value or the default.
func (c *SimConfig) GetInteractionRadius() float64 {
	if c.InteractionRadius == nil {
		return 20.0
	}
	return *c.InteractionRadius
}

// GetPathPreviewMode returns the path_preview_mode value or the default.
func (c *SimConfig) GetPathPreviewMode() string {
	if c.PathPreviewMode == nil || *c.PathPreviewMode == "" {
		return PreviewDistance
	}
	return *c.PathPreviewMode
}

// GetPathPreviewPoints returns the path_preview_points value or the default.
func (c *SimConfig) GetPathPreviewPoints() int {
	if c.PathPreviewPoints == nil {
		return 20
	}
	return *c.PathPreviewPoints
}

// GetPathPreviewDelta returns the path_preview_delta value or the default.
func (c *SimConfig) GetPathPreviewDelta() float64 {
	if c.PathPreviewDelta == nil {
		return 10.0
	}
	return *c.PathPreviewDelta
}

// GetRolloutWorkers returns the rollout_workers value or the default.
func (c *SimConfig) GetRolloutWorkers() int {
	if c.RolloutWorkers == nil {
		return 0
	}
	return *c.RolloutWorkers
}

// GetSpeedUnits returns the speed_units value or the default.
func (c *SimConfig) GetSpeedUnits() string {
	if c.SpeedUnits == nil || *c.SpeedUnits == "" {
		return units.MPS
	}
	return *c.SpeedUnits
}
