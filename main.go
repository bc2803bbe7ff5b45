/*
prism renders a scene of generated meshes through the projection pipeline,
in a desktop window, a terminal or offscreen into PNG files.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/canvas"
	"github.com/spaghettifunk/prism/engine/renderer/ebitengine"
	"github.com/spaghettifunk/prism/engine/renderer/recorder"
	"github.com/spaghettifunk/prism/engine/renderer/terminal"
	"github.com/spaghettifunk/prism/testbed"
)

const terminalLogFile = "prism.log"

type flags struct {
	config   string
	backend  string
	scene    string
	frames   int
	out      string
	logLevel string
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "", "configuration file (.toml, .yaml)")
	flag.StringVar(&f.backend, "backend", "", "renderer: ebiten, terminal, canvas or recorder")
	flag.StringVar(&f.scene, "scene", "", "scene file (.toml, .yaml); empty draws the built-in scene")
	flag.IntVar(&f.frames, "frames", 0, "export this many frames as PNG and exit")
	flag.StringVar(&f.out, "out", "", "directory for exported frames")
	flag.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	flag.Parse()

	if err := run(f); err != nil {
		core.LogError("%s", err)
		os.Exit(1)
	}
}

func loadConfig(f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return nil, err
		}
	}
	if f.backend != "" {
		cfg.Renderer.Backend = f.backend
	}
	if f.scene != "" {
		cfg.Scene.Path = f.scene
	}
	if f.frames > 0 {
		cfg.Export.Frames = f.frames
	}
	if f.out != "" {
		cfg.Export.Out = f.out
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	// Exported frames are read back from the canvas, which draws nowhere else.
	if cfg.Renderer.Backend == config.BackendCanvas && cfg.Export.Frames == 0 {
		cfg.Export.Frames = 1
	}
	if cfg.Export.Frames > 0 {
		cfg.Renderer.Backend = config.BackendCanvas
		cfg.Scene.Watch = false
	}
	return cfg, cfg.Validate()
}

func run(f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	tb, err := testbed.NewTestGame(cfg)
	if err != nil {
		return err
	}

	host, backend, cleanup, err := newHost(cfg, tb.ApplicationConfig.TargetFPS)
	if err != nil {
		return err
	}
	defer cleanup()

	e, err := engine.New(tb.Game, host, backend)
	if err != nil {
		return err
	}
	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		return err
	}

	var exporter *engine.Exporter
	if cfg.Export.Frames > 0 {
		exporter, err = engine.NewExporter(e, backend.(engine.Snapshotter), engine.ExportOptions{
			Frames: cfg.Export.Frames,
			Out:    cfg.Export.Out,
			Target: math.NewVec3Zero(),
			Height: 2,
		})
		if err != nil {
			_ = e.Shutdown()
			return err
		}
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			e.Stop()
		}
	}()

	runErr := e.Run()
	if exporter != nil {
		if err := exporter.Wait(); err != nil && runErr == nil {
			runErr = err
		}
		core.LogInfo("wrote %d frames to %s", len(exporter.Written()), cfg.Export.Out)
	}
	if err := e.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// newHost pairs the configured backend with the host that drives it.
func newHost(cfg *config.Config, fps int) (engine.Host, renderer.RendererBackend, func(), error) {
	noop := func() {}
	interval := time.Second / time.Duration(fps)

	switch cfg.Renderer.Backend {
	case config.BackendEbiten:
		b := ebitengine.New()
		h := ebitengine.NewHost(b, cfg.Window.Title, int(cfg.Window.Width), int(cfg.Window.Height), fps)
		h.Resizable = cfg.Window.Resizable
		return h, b, noop, nil

	case config.BackendTerminal:
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, nil, nil, err
		}
		// The screen owns stdout, so logs go to a file.
		logFile, err := os.OpenFile(terminalLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, nil, err
		}
		core.SetLogOutput(logFile)
		cleanup := func() {
			core.SetLogOutput(os.Stderr)
			_ = logFile.Close()
		}
		return terminal.NewHost(screen, fps), terminal.New(screen), cleanup, nil

	case config.BackendCanvas:
		return engine.NewHeadlessHost(cfg.Viewport(), cfg.Export.Frames, 0), canvas.New(), noop, nil

	case config.BackendRecorder:
		mode, _ := config.ParseMode(cfg.Pipeline.Mode)
		return engine.NewHeadlessHost(cfg.Viewport(), 0, interval), recorder.New(mode, 0), noop, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown backend %q", cfg.Renderer.Backend)
}

var _ engine.Snapshotter = (*canvas.Backend)(nil)
