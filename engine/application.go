package engine

import (
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/pipeline"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/systems"
)

const DefaultTargetFPS = 60

type ApplicationConfig struct {
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name     string
	LogLevel core.LogLevel
	// Frames per second the hosts aim for.
	TargetFPS int
	// FixedStep replaces the measured frame time when positive.
	FixedStep float64
	Pipeline  pipeline.Options
	Renderer  renderer.Options
	Systems   systems.SystemManagerConfig
}

// NewApplicationConfig maps a loaded configuration onto the engine settings.
func NewApplicationConfig(cfg *config.Config) (*ApplicationConfig, error) {
	level, err := core.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	c := cfg.Renderer.ClearColor
	return &ApplicationConfig{
		StartWidth:  cfg.Window.Width,
		StartHeight: cfg.Window.Height,
		Name:        cfg.Window.Title,
		LogLevel:    level,
		TargetFPS:   DefaultTargetFPS,
		Pipeline:    cfg.PipelineOptions(),
		Renderer: renderer.Options{
			ClearColour: math.NewVec4(c[0], c[1], c[2], 1),
			Wireframe:   cfg.Renderer.Wireframe,
			Overlay:     cfg.Renderer.Overlay,
		},
		Systems: systems.SystemManagerConfig{
			MaxCameraCount: 8,
			CameraSettings: cfg.CameraSettings(),
			JobWorkers:     max(cfg.Export.Workers, 1),
			JobQueueSize:   16,
		},
	}, nil
}
