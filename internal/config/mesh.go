package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ble27/Spherical-Visualizer/internal/region"
	"github.com/ble27/Spherical-Visualizer/internal/render"
	"github.com/ble27/Spherical-Visualizer/internal/units"
)

// DefaultConfigPath is the path to the canonical mesh defaults file.
const DefaultConfigPath = "config/mesh.defaults.json"

// MaxResolution is the largest per-axis sample count accepted from config or
// from a request.
const MaxResolution = 500

// MeshConfig is the root configuration for surface building and rendering.
// Every field is optional; the Get* methods supply defaults for anything the
// JSON leaves out.
type MeshConfig struct {
	// Geometry
	Resolution     *int     `json:"resolution,omitempty"`
	ClosureEpsilon *float64 `json:"closure_epsilon,omitempty"` // radians
	AngleUnits     *string  `json:"angle_units,omitempty"`     // rad, deg or turn

	// Default bounds, as user-style expressions such as "pi/2". Angles are
	// always in radians, whatever AngleUnits says.
	RhoMin   *string `json:"rho_min,omitempty"`
	RhoMax   *string `json:"rho_max,omitempty"`
	PhiMin   *string `json:"phi_min,omitempty"`
	PhiMax   *string `json:"phi_max,omitempty"`
	ThetaMin *string `json:"theta_min,omitempty"`
	ThetaMax *string `json:"theta_max,omitempty"`

	// Rendering
	ChartWidth       *string  `json:"chart_width,omitempty"`  // CSS size like "900px"
	ChartHeight      *string  `json:"chart_height,omitempty"` // CSS size like "900px"
	ChartTheme       *string  `json:"chart_theme,omitempty"`
	MaxPointsPerSurf *int     `json:"max_points_per_surface,omitempty"`
	PlotSizeInches   *float64 `json:"plot_size_inches,omitempty"`

	// Server
	Listen          *string `json:"listen,omitempty"`
	ShutdownTimeout *string `json:"shutdown_timeout,omitempty"` // duration string like "1s"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyMeshConfig returns a MeshConfig with all fields set to nil.
func EmptyMeshConfig() *MeshConfig {
	return &MeshConfig{}
}

// LoadMeshConfig loads a MeshConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
// Fields omitted from the JSON keep their defaults, so partial configs are safe.
func LoadMeshConfig(path string) (*MeshConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

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

	cfg := EmptyMeshConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *MeshConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,    // from cmd/
		"../../" + DefaultConfigPath, // from internal/<pkg>/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadMeshConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *MeshConfig) Validate() error {
	if c.Resolution != nil && (*c.Resolution < 1 || *c.Resolution > MaxResolution) {
		return fmt.Errorf("resolution must be between 1 and %d, got %d", MaxResolution, *c.Resolution)
	}

	if c.ClosureEpsilon != nil && *c.ClosureEpsilon < 0 {
		return fmt.Errorf("closure_epsilon must be non-negative, got %f", *c.ClosureEpsilon)
	}

	if c.AngleUnits != nil && !units.IsValid(*c.AngleUnits) {
		return fmt.Errorf("angle_units must be one of %s, got %q", units.GetValidUnitsString(), *c.AngleUnits)
	}

	if c.MaxPointsPerSurf != nil && *c.MaxPointsPerSurf < 1 {
		return fmt.Errorf("max_points_per_surface must be positive, got %d", *c.MaxPointsPerSurf)
	}

	if c.PlotSizeInches != nil && *c.PlotSizeInches <= 0 {
		return fmt.Errorf("plot_size_inches must be positive, got %f", *c.PlotSizeInches)
	}

	if c.ShutdownTimeout != nil && *c.ShutdownTimeout != "" {
		if _, err := time.ParseDuration(*c.ShutdownTimeout); err != nil {
			return fmt.Errorf("invalid shutdown_timeout '%s': %w", *c.ShutdownTimeout, err)
		}
	}

	return nil
}

// GetResolution returns the resolution value or the default.
func (c *MeshConfig) GetResolution() int {
	if c.Resolution == nil {
		return region.DefaultResolution
	}
	return *c.Resolution
}

// GetClosureEpsilon returns the closure_epsilon value or the default.
func (c *MeshConfig) GetClosureEpsilon() float64 {
	if c.ClosureEpsilon == nil {
		return region.DefaultEpsilon
	}
	return *c.ClosureEpsilon
}

// GetAngleUnits returns the angle_units value or the default.
func (c *MeshConfig) GetAngleUnits() string {
	if c.AngleUnits == nil || *c.AngleUnits == "" {
		return units.Radians
	}
	return *c.AngleUnits
}

// GetRhoMin returns the rho_min expression or the default.
func (c *MeshConfig) GetRhoMin() string { return stringOr(c.RhoMin, "0") }

// GetRhoMax returns the rho_max expression or the default.
func (c *MeshConfig) GetRhoMax() string { return stringOr(c.RhoMax, "1") }

// GetPhiMin returns the phi_min expression or the default.
func (c *MeshConfig) GetPhiMin() string { return stringOr(c.PhiMin, "0") }

// GetPhiMax returns the phi_max expression or the default.
func (c *MeshConfig) GetPhiMax() string { return stringOr(c.PhiMax, "pi/2") }

// GetThetaMin returns the theta_min expression or the default.
func (c *MeshConfig) GetThetaMin() string { return stringOr(c.ThetaMin, "0") }

// GetThetaMax returns the theta_max expression or the default.
func (c *MeshConfig) GetThetaMax() string { return stringOr(c.ThetaMax, "3pi/2") }

// GetChartWidth returns the chart_width value or the default.
func (c *MeshConfig) GetChartWidth() string { return stringOr(c.ChartWidth, "900px") }

// GetChartHeight returns the chart_height value or the default.
func (c *MeshConfig) GetChartHeight() string { return stringOr(c.ChartHeight, "900px") }

// GetChartTheme returns the chart_theme value or the default.
func (c *MeshConfig) GetChartTheme() string { return stringOr(c.ChartTheme, "white") }

// GetMaxPointsPerSurface returns the max_points_per_surface value or the default.
func (c *MeshConfig) GetMaxPointsPerSurface() int {
	if c.MaxPointsPerSurf == nil {
		return render.DefaultMaxPoints
	}
	return *c.MaxPointsPerSurf
}

// GetPlotSizeInches returns the plot_size_inches value or the default.
func (c *MeshConfig) GetPlotSizeInches() float64 {
	if c.PlotSizeInches == nil {
		return 6
	}
	return *c.PlotSizeInches
}

// GetListen returns the listen value or the default.
func (c *MeshConfig) GetListen() string { return stringOr(c.Listen, ":8080") }

// GetShutdownTimeout parses and returns the ShutdownTimeout as a time.Duration.
func (c *MeshConfig) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == nil || *c.ShutdownTimeout == "" {
		return 1 * time.Second // default
	}
	d, err := time.ParseDuration(*c.ShutdownTimeout)
	if err != nil {
		return 1 * time.Second // default on parse error
	}
	return d
}

func stringOr(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}
