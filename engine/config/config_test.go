package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/prism/engine/pipeline"
	"github.com/spaghettifunk/prism/engine/renderer/components"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "prism.toml", `
log_level = "debug"

[window]
width = 640
height = 480

[renderer]
backend = "terminal"

[projection]
fov = 75.0
near = 0.5
far = 200.0

[camera]
position = [1.0, 2.0, -10.0]
model = "walk"

[pipeline]
mode = "accelerated"
culling = true
sort_key = "legacy"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window.Width != 640 || cfg.Window.Height != 480 {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Window.Title != "Prism" {
		t.Errorf("missing key lost its default: title = %q", cfg.Window.Title)
	}
	if cfg.Renderer.Backend != BackendTerminal {
		t.Errorf("backend = %q", cfg.Renderer.Backend)
	}

	opts := cfg.PipelineOptions()
	if opts.FOV != 75 || opts.Near != 0.5 || opts.Far != 200 {
		t.Errorf("projection = %+v", opts)
	}
	if opts.Mode != pipeline.ModeAccelerated || !opts.Culling || opts.SortKey != pipeline.SortLegacyDepth {
		t.Errorf("pipeline options = %+v", opts)
	}

	rig := cfg.NewCamera()
	if rig.Model() != components.ModelWalk {
		t.Errorf("camera model = %s", rig.Model())
	}
	if p := rig.Position(); p.X != 1 || p.Y != 2 || p.Z != -10 {
		t.Errorf("camera position = %v", p)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "prism.yaml", `
window:
  width: 320
  height: 200
pipeline:
  mode: clipspace
  light_direction: [0, 0, -1]
scene:
  path: scenes/demo.yaml
  watch: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if vp := cfg.Viewport(); vp.Width != 320 || vp.Height != 200 {
		t.Errorf("viewport = %+v", vp)
	}
	if cfg.PipelineOptions().Mode != pipeline.ModeClipSpace {
		t.Errorf("mode = %s", cfg.PipelineOptions().Mode)
	}
	if cfg.Scene.Path != "scenes/demo.yaml" || cfg.Scene.Watch {
		t.Errorf("scene = %+v", cfg.Scene)
	}
	if cfg.Projection.Far != 1000 {
		t.Errorf("far lost its default: %g", cfg.Projection.Far)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero near", func(c *Config) { c.Projection.Near = 0 }},
		{"far before near", func(c *Config) { c.Projection.Far = 0.05 }},
		{"fov too wide", func(c *Config) { c.Projection.FOV = 180 }},
		{"fov zero", func(c *Config) { c.Projection.FOV = 0 }},
		{"empty window", func(c *Config) { c.Window.Height = 0 }},
		{"unknown backend", func(c *Config) { c.Renderer.Backend = "vulkan" }},
		{"unknown model", func(c *Config) { c.Camera.Model = "swim" }},
		{"unknown mode", func(c *Config) { c.Pipeline.Mode = "raytrace" }},
		{"unknown sort key", func(c *Config) { c.Pipeline.SortKey = "random" }},
		{"zero light", func(c *Config) { c.Pipeline.LightDirection = [3]float32{} }},
		{"shade above one", func(c *Config) { c.Pipeline.MinShade = 2 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"export without workers", func(c *Config) { c.Export.Frames = 3; c.Export.Workers = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(writeFile(t, "prism.ini", "x=1")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ini: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
	if _, err := Load(writeFile(t, "bad.toml", "[projection\nfov = ")); err == nil {
		t.Errorf("malformed toml accepted")
	}
	if _, err := Load(writeFile(t, "bad.yaml", "projection:\n  near: -1\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("invalid values: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{".toml", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			cfg := Default()
			cfg.Window.Width = 800
			cfg.Pipeline.Culling = true
			cfg.Camera.Model = "walk"

			path := filepath.Join(t.TempDir(), "prism"+ext)
			if err := cfg.Save(path); err != nil {
				t.Fatal(err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if got.Window.Width != 800 || !got.Pipeline.Culling || got.Camera.Model != "walk" {
				t.Errorf("round trip lost values: %+v", got)
			}
		})
	}
}
