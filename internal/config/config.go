// Package config loads and validates the batch settings document.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultResolution = 128
	DefaultFrameRate  = 10
	DefaultTMax       = 40.0
	DefaultDt         = 0.1
	DefaultVMin       = 0.0
	DefaultVMax       = 4.0
	DefaultZoom       = 1.0

	// DtScale is applied to the configured dt before integration. The raw
	// setting is kept human-sized; the effective step has to be two orders
	// smaller to keep the explicit scheme anywhere near stable.
	DtScale = 100.0

	// TrackerInterval is the simulated-time spacing between snapshots.
	TrackerInterval = 1.0
)

// Mode is one independent parameter configuration. Immutable once loaded;
// each mode produces one simulation run and one video.
type Mode struct {
	Title       string  `yaml:"title"`
	A           float64 `yaml:"a"`
	B           float64 `yaml:"b"`
	D0          float64 `yaml:"d0"`
	D1          float64 `yaml:"d1"`
	Filename    string  `yaml:"filename"`
	Description string  `yaml:"description"`
}

// FramesDir returns the per-mode frames subdirectory name, derived from the
// title. Lexical order of the files inside it is load-bearing: the video
// encoder relies on it matching temporal order.
func (m Mode) FramesDir() string {
	return "frames_" + strings.ReplaceAll(strings.ToLower(m.Title), " ", "_")
}

// Config is the batch settings document. The derived fields are filled by
// Resolve and echoed into the run directory so every run is reproducible
// from its own output folder.
type Config struct {
	Resolution    int     `yaml:"resolution"`
	FrameRate     int     `yaml:"frame_rate"`
	TMax          float64 `yaml:"t_max"`
	Dt            float64 `yaml:"dt"`
	ColorVMin     float64 `yaml:"color_vmin"`
	ColorVMax     float64 `yaml:"color_vmax"`
	UColor        string  `yaml:"u_color"`
	VColor        string  `yaml:"v_color"`
	FixedBoundary bool    `yaml:"fixed_boundary"`
	ZoomFactor    float64 `yaml:"zoom_factor"`
	Modes         []Mode  `yaml:"modes"`

	// Derived by Resolve.
	ScaledDt        float64 `yaml:"scaled_dt"`
	Radius          float64 `yaml:"radius"`
	Spacing         float64 `yaml:"spacing"`
	TrackerInterval float64 `yaml:"tracker_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		Resolution: DefaultResolution,
		FrameRate:  DefaultFrameRate,
		TMax:       DefaultTMax,
		Dt:         DefaultDt,
		ColorVMin:  DefaultVMin,
		ColorVMax:  DefaultVMax,
		UColor:     "viridis",
		VColor:     "inferno",
		ZoomFactor: DefaultZoom,
	}
}

// Load reads a YAML settings document over the defaults, validates it, and
// resolves the derived fields. Any failure here is fatal for the batch: no
// run directory is created without a usable configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.Resolve()
	return cfg, nil
}

// Save writes the configuration as YAML. Used for the settings echo file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve fills the derived fields from the raw settings.
func (c *Config) Resolve() {
	c.ScaledDt = c.Dt / DtScale
	c.Radius = 1 / c.ZoomFactor
	c.Spacing = 2 * c.Radius / float64(c.Resolution)
	c.TrackerInterval = TrackerInterval
}

// Validate checks the raw settings. It does not enforce the explicit-scheme
// stability bound: an unstable step is detected at runtime per mode, not
// prevented here.
func (c *Config) Validate() error {
	if c.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %d", c.Resolution)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %d", c.FrameRate)
	}
	if c.TMax <= 0 {
		return fmt.Errorf("t_max must be positive, got %f", c.TMax)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.ZoomFactor <= 0 {
		return fmt.Errorf("zoom_factor must be positive, got %f", c.ZoomFactor)
	}
	if c.ColorVMin >= c.ColorVMax {
		return fmt.Errorf("color_vmin (%f) must be below color_vmax (%f)", c.ColorVMin, c.ColorVMax)
	}
	if len(c.Modes) == 0 {
		return fmt.Errorf("no modes configured")
	}
	for i, m := range c.Modes {
		if err := m.validate(); err != nil {
			return fmt.Errorf("mode %d: %w", i, err)
		}
	}
	return nil
}

func (m Mode) validate() error {
	if m.Title == "" {
		return fmt.Errorf("title must not be empty")
	}
	if m.Filename == "" {
		return fmt.Errorf("filename must not be empty")
	}
	if m.A <= 0 {
		return fmt.Errorf("a must be positive, got %f", m.A)
	}
	if m.B <= 0 {
		return fmt.Errorf("b must be positive, got %f", m.B)
	}
	if m.D0 < 0 || m.D1 < 0 {
		return fmt.Errorf("diffusion coefficients must be non-negative, got d0=%f d1=%f", m.D0, m.D1)
	}
	return nil
}
