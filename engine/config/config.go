package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/pipeline"
	"github.com/spaghettifunk/prism/engine/renderer/components"
)

var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
)

// Backend names accepted by renderer.backend.
const (
	BackendEbiten   = "ebiten"
	BackendTerminal = "terminal"
	BackendCanvas   = "canvas"
	BackendRecorder = "recorder"
)

type WindowConfig struct {
	Title     string `toml:"title" yaml:"title"`
	Width     uint32 `toml:"width" yaml:"width"`
	Height    uint32 `toml:"height" yaml:"height"`
	Resizable bool   `toml:"resizable" yaml:"resizable"`
}

type RendererConfig struct {
	Backend string `toml:"backend" yaml:"backend"`
	// Overlay draws frame metrics and the camera pose on top of the scene.
	Overlay    bool       `toml:"overlay" yaml:"overlay"`
	ClearColor [3]float32 `toml:"clear_color" yaml:"clear_color"`
	Wireframe  bool       `toml:"wireframe" yaml:"wireframe"`
}

type ProjectionConfig struct {
	FOV  float32 `toml:"fov" yaml:"fov"`
	Near float32 `toml:"near" yaml:"near"`
	Far  float32 `toml:"far" yaml:"far"`
}

type CameraConfig struct {
	Position [3]float32 `toml:"position" yaml:"position"`
	// Yaw and pitch in degrees.
	Yaw              float32 `toml:"yaw" yaml:"yaw"`
	Pitch            float32 `toml:"pitch" yaml:"pitch"`
	Model            string  `toml:"model" yaml:"model"`
	MoveSpeed        float32 `toml:"move_speed" yaml:"move_speed"`
	TurnSpeed        float32 `toml:"turn_speed" yaml:"turn_speed"`
	MouseSensitivity float32 `toml:"mouse_sensitivity" yaml:"mouse_sensitivity"`
}

type PipelineConfig struct {
	Mode           string     `toml:"mode" yaml:"mode"`
	Culling        bool       `toml:"culling" yaml:"culling"`
	SortKey        string     `toml:"sort_key" yaml:"sort_key"`
	LightDirection [3]float32 `toml:"light_direction" yaml:"light_direction"`
	MinShade       float32    `toml:"min_shade" yaml:"min_shade"`
}

type SceneConfig struct {
	Path  string `toml:"path" yaml:"path"`
	Watch bool   `toml:"watch" yaml:"watch"`
}

type ExportConfig struct {
	Frames  int    `toml:"frames" yaml:"frames"`
	Out     string `toml:"out" yaml:"out"`
	Workers int    `toml:"workers" yaml:"workers"`
}

type Config struct {
	LogLevel   string           `toml:"log_level" yaml:"log_level"`
	Window     WindowConfig     `toml:"window" yaml:"window"`
	Renderer   RendererConfig   `toml:"renderer" yaml:"renderer"`
	Projection ProjectionConfig `toml:"projection" yaml:"projection"`
	Camera     CameraConfig     `toml:"camera" yaml:"camera"`
	Pipeline   PipelineConfig   `toml:"pipeline" yaml:"pipeline"`
	Scene      SceneConfig      `toml:"scene" yaml:"scene"`
	Export     ExportConfig     `toml:"export" yaml:"export"`
}

func Default() *Config {
	opts := pipeline.DefaultOptions()
	cam := components.DefaultCameraSettings()
	return &Config{
		LogLevel: "info",
		Window: WindowConfig{
			Title:     "Prism",
			Width:     1280,
			Height:    720,
			Resizable: true,
		},
		Renderer: RendererConfig{
			Backend:    BackendEbiten,
			Overlay:    true,
			ClearColor: [3]float32{0.05, 0.05, 0.08},
		},
		Projection: ProjectionConfig{
			FOV:  opts.FOV,
			Near: opts.Near,
			Far:  opts.Far,
		},
		Camera: CameraConfig{
			Position:         [3]float32{0, 0, -5},
			Model:            components.ModelFly.String(),
			MoveSpeed:        cam.MoveSpeed,
			TurnSpeed:        cam.TurnSpeed,
			MouseSensitivity: cam.MouseSensitivity,
		},
		Pipeline: PipelineConfig{
			Mode:           opts.Mode.String(),
			Culling:        opts.Culling,
			SortKey:        "average",
			LightDirection: [3]float32{opts.LightDirection.X, opts.LightDirection.Y, opts.LightDirection.Z},
			MinShade:       opts.MinShade,
		},
		Scene: SceneConfig{
			Watch: true,
		},
		Export: ExportConfig{
			Out:     "frames",
			Workers: 4,
		},
	}
}

/**
 * Load reads a configuration file on top of Default. The format is picked by
 * extension: .toml, .yaml or .yml. Keys absent from the file keep their
 * default value.
 */
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	core.LogDebug("loaded config %s", path)
	return cfg, nil
}

// Save writes the configuration in the format matching the extension of path.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		data, err = toml.Marshal(c)
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func (c *Config) Validate() error {
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return invalid("log_level %q", c.LogLevel)
	}
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return invalid("window must be at least 1x1, got %dx%d", c.Window.Width, c.Window.Height)
	}
	switch c.Renderer.Backend {
	case BackendEbiten, BackendTerminal, BackendCanvas, BackendRecorder:
	default:
		return invalid("renderer.backend %q", c.Renderer.Backend)
	}
	p := c.Projection
	if !(p.FOV > 0 && p.FOV < 180) {
		return invalid("projection.fov must be in (0, 180), got %g", p.FOV)
	}
	if !(p.Near > 0) {
		return invalid("projection.near must be > 0, got %g", p.Near)
	}
	if !(p.Far > p.Near) {
		return invalid("projection.far (%g) must be greater than near (%g)", p.Far, p.Near)
	}
	if _, ok := components.ParseMovementModel(c.Camera.Model); !ok {
		return invalid("camera.model %q", c.Camera.Model)
	}
	if c.Camera.MoveSpeed < 0 || c.Camera.TurnSpeed < 0 || c.Camera.MouseSensitivity < 0 {
		return invalid("camera speeds must not be negative")
	}
	if _, ok := ParseMode(c.Pipeline.Mode); !ok {
		return invalid("pipeline.mode %q", c.Pipeline.Mode)
	}
	if _, ok := ParseSortKey(c.Pipeline.SortKey); !ok {
		return invalid("pipeline.sort_key %q", c.Pipeline.SortKey)
	}
	l := c.Pipeline.LightDirection
	if l[0] == 0 && l[1] == 0 && l[2] == 0 {
		return invalid("pipeline.light_direction must not be zero")
	}
	if c.Pipeline.MinShade < 0 || c.Pipeline.MinShade > 1 {
		return invalid("pipeline.min_shade must be in [0, 1], got %g", c.Pipeline.MinShade)
	}
	if c.Export.Frames < 0 {
		return invalid("export.frames must not be negative")
	}
	if c.Export.Frames > 0 && c.Export.Workers < 1 {
		return invalid("export.workers must be at least 1")
	}
	return nil
}

func ParseMode(s string) (pipeline.Mode, bool) {
	for _, m := range []pipeline.Mode{pipeline.ModeScreen2D, pipeline.ModeAccelerated, pipeline.ModeClipSpace} {
		if m.String() == s {
			return m, true
		}
	}
	return pipeline.ModeScreen2D, false
}

func ParseSortKey(s string) (pipeline.SortKey, bool) {
	switch s {
	case "average", "":
		return pipeline.SortAverageDepth, true
	case "legacy":
		return pipeline.SortLegacyDepth, true
	case "none":
		return pipeline.SortNone, true
	}
	return pipeline.SortAverageDepth, false
}

// PipelineOptions converts the projection and pipeline sections. Call Validate first.
func (c *Config) PipelineOptions() pipeline.Options {
	mode, _ := ParseMode(c.Pipeline.Mode)
	key, _ := ParseSortKey(c.Pipeline.SortKey)
	l := c.Pipeline.LightDirection
	return pipeline.Options{
		FOV:            c.Projection.FOV,
		Near:           c.Projection.Near,
		Far:            c.Projection.Far,
		Mode:           mode,
		Culling:        c.Pipeline.Culling,
		SortKey:        key,
		LightDirection: math.NewVec3(l[0], l[1], l[2]),
		MinShade:       c.Pipeline.MinShade,
	}
}

func (c *Config) CameraSettings() components.CameraSettings {
	return components.CameraSettings{
		MoveSpeed:        c.Camera.MoveSpeed,
		TurnSpeed:        c.Camera.TurnSpeed,
		MouseSensitivity: c.Camera.MouseSensitivity,
	}
}

// NewCamera builds a rig placed and oriented by the camera section.
func (c *Config) NewCamera() *components.CameraRig {
	p := c.Camera.Position
	rig := components.NewCameraRig(math.NewVec3(p[0], p[1], p[2]), c.CameraSettings())
	if m, ok := components.ParseMovementModel(c.Camera.Model); ok {
		rig.SetModel(m)
	}
	rig.SetYawPitch(math.DegToRad(c.Camera.Yaw), math.DegToRad(c.Camera.Pitch))
	return rig
}

func (c *Config) Viewport() pipeline.Viewport {
	return pipeline.Viewport{Width: c.Window.Width, Height: c.Window.Height}
}
