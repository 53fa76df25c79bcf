package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/san-kum/bbhexp/internal/bbh"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel          = "analytic"
	DefaultQ              = 2.0
	DefaultPointsPerOrbit = 30
	DefaultFreezeTime     = -100.0
	DefaultFreezeRepeats  = 75
	DefaultGridPoints     = 11
	DefaultFPS            = 15
	DefaultWidth          = 750
	DefaultHeight         = 825
	DefaultPrefix         = "bbhexp"
	DefaultPalette        = "wesanderson"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Model   string       `yaml:"model"`
	Palette string       `yaml:"palette"`
	Binary  BinaryConfig `yaml:"binary"`
	Render  RenderConfig `yaml:"render"`
	Output  OutputConfig `yaml:"output"`

	// HasBinary is set by Load when the file carries a binary block.
	HasBinary bool `yaml:"-"`
}

type BinaryConfig struct {
	Q          float64    `yaml:"q"`
	ChiA       [3]float64 `yaml:"chiA,flow"`
	ChiB       [3]float64 `yaml:"chiB,flow"`
	OmegaRef   float64    `yaml:"omega_ref,omitempty"`
	OmegaStart float64    `yaml:"omega_start,omitempty"`
}

type RenderConfig struct {
	AutoRotateCamera                bool    `yaml:"auto_rotate_camera"`
	ProjectOnAllPlanes              bool    `yaml:"project_on_all_planes"`
	HeightMap                       bool    `yaml:"height_map"`
	DrawFullTrajectory              bool    `yaml:"draw_full_trajectory"`
	UseSpinAngularMomentumForArrows bool    `yaml:"use_spin_angular_momentum_for_arrows"`
	NoFreezeNearMerger              bool    `yaml:"no_freeze_near_merger"`
	NoWaveTimeSeries                bool    `yaml:"no_wave_time_series"`
	NoTimeLabel                     bool    `yaml:"no_time_label"`
	NoSurrogateLabel                bool    `yaml:"no_surrogate_label"`
	UniformTimeStepSize             float64 `yaml:"uniform_time_step_size,omitempty"`
	PointsPerOrbit                  int     `yaml:"points_per_orbit"`
	FreezeTime                      float64 `yaml:"freeze_time"`
	FreezeRepeats                   int     `yaml:"freeze_repeats"`
	GridPoints                      int     `yaml:"grid_points"`
}

type OutputConfig struct {
	SaveFile  string   `yaml:"save_file,omitempty"`
	StillTime *float64 `yaml:"still_time,omitempty"`
	FPS       int      `yaml:"fps"`
	Width     int      `yaml:"width"`
	Height    int      `yaml:"height"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:   DefaultModel,
		Palette: DefaultPalette,
		Binary: BinaryConfig{
			Q: DefaultQ,
		},
		Render: RenderConfig{
			PointsPerOrbit: DefaultPointsPerOrbit,
			FreezeTime:     DefaultFreezeTime,
			FreezeRepeats:  DefaultFreezeRepeats,
			GridPoints:     DefaultGridPoints,
		},
		Output: OutputConfig{
			FPS:    DefaultFPS,
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	var top map[string]any
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	_, cfg.HasBinary = top["binary"]
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func vec(v [3]float64) r3.Vector { return r3.Vector{X: v[0], Y: v[1], Z: v[2]} }

// Binary converts the configuration to the model input.
func (b BinaryConfig) Binary() bbh.Binary {
	return bbh.Binary{Q: b.Q, ChiA: vec(b.ChiA), ChiB: vec(b.ChiB), OmegaRef: b.OmegaRef}
}

// Normalize resolves options that exclude each other. Height maps and the
// rotating camera only show the bottom plane.
func (c *Config) Normalize() {
	if c.Render.HeightMap || c.Render.AutoRotateCamera {
		c.Render.ProjectOnAllPlanes = false
	}
}

func (c *Config) Validate() error {
	if err := c.Binary.Binary().Validate(); err != nil {
		return err
	}
	if c.Binary.OmegaStart != 0 && c.Binary.OmegaStart < bbh.MinOmegaRef {
		return &bbh.RangeError{Param: "omega_start", Value: c.Binary.OmegaStart, Min: bbh.MinOmegaRef, Max: 1}
	}
	if c.Render.UniformTimeStepSize < 0 {
		return fmt.Errorf("%w: uniform_time_step_size must be positive", ErrInvalidConfig)
	}
	if c.Render.PointsPerOrbit <= 0 || c.Render.GridPoints < 2 || c.Render.FreezeRepeats < 0 {
		return fmt.Errorf("%w: points_per_orbit=%d grid_points=%d freeze_repeats=%d",
			ErrInvalidConfig, c.Render.PointsPerOrbit, c.Render.GridPoints, c.Render.FreezeRepeats)
	}
	if c.Output.FPS <= 0 || c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("%w: fps=%d size=%dx%d", ErrInvalidConfig, c.Output.FPS, c.Output.Width, c.Output.Height)
	}
	if _, err := GetPalette(c.Palette); err != nil {
		return err
	}
	return nil
}

// StillPrefix is the save file without its extension.
func (c *Config) StillPrefix() string {
	if c.Output.SaveFile == "" {
		return DefaultPrefix
	}
	return strings.TrimSuffix(c.Output.SaveFile, filepath.Ext(c.Output.SaveFile))
}

// StillTag names a still by its time: 50 for t=50 and m50 for t=-50.
func StillTag(t float64) string {
	tag := fmt.Sprintf("%d", int64(abs(t)))
	if t < 0 {
		tag = "m" + tag
	}
	return tag
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
