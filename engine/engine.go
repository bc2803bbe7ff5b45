package engine

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/pipeline"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/systems"
)

// ErrQuit ends the frame loop. Run treats it as a clean exit.
var ErrQuit = errors.New("application quit")

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

/**
 * @brief FrameHook runs around every frame. Before is called after input is
 * sampled and before the game updates; After once the frame is drawn.
 */
type FrameHook struct {
	Before func(frame uint64, deltaTime float64) error
	After  func(frame uint64) error
}

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     bool
	isSuspended   bool
	host          Host
	renderer      *renderer.Renderer
	pipeline      *pipeline.Pipeline
	systemManager *systems.SystemManager
	bus           *core.EventBus
	input         *core.InputState
	clock         *core.Clock
	metrics       *core.Metrics
	width         uint32
	height        uint32
	lastTime      float64
	frameNumber   uint64
	hooks         []FrameHook
}

func New(g *Game, host Host, backend renderer.RendererBackend) (*Engine, error) {
	if g.ApplicationConfig == nil {
		return nil, fmt.Errorf("game has no application config")
	}
	core.SetLogLevel(g.ApplicationConfig.LogLevel)

	sm, err := systems.NewSystemManager(g.ApplicationConfig.Systems)
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	bus := core.NewEventBus()

	return &Engine{
		currentStage:  EngineStageBootComplete,
		gameInstance:  g,
		isRunning:     true,
		host:          host,
		renderer:      renderer.New(backend, g.ApplicationConfig.Renderer),
		systemManager: sm,
		bus:           bus,
		input:         core.NewInputState(bus),
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
		width:         g.ApplicationConfig.StartWidth,
		height:        g.ApplicationConfig.StartHeight,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	// register some events
	for code, fn := range map[core.EventCode]core.FnOnEvent{
		core.EVENT_CODE_APPLICATION_QUIT: e.onEvent,
		core.EVENT_CODE_KEY_PRESSED:      e.onKey,
		core.EVENT_CODE_RESIZED:          e.onResized,
	} {
		if err := e.bus.Register(code, e, fn); err != nil {
			return err
		}
	}

	if err := e.host.Start(e.input, e.bus); err != nil {
		return fmt.Errorf("starting %s host: %w", e.host.Name(), err)
	}

	vp := e.host.Viewport()
	if vp.IsEmpty() {
		vp = pipeline.Viewport{Width: e.width, Height: e.height}
	}
	e.width, e.height = vp.Width, vp.Height

	if err := e.renderer.Initialize(vp); err != nil {
		return err
	}

	opts := e.gameInstance.ApplicationConfig.Pipeline
	if opts.Mode != e.renderer.Mode() {
		core.LogDebug("pipeline mode %s replaced by %s for the %s backend", opts.Mode, e.renderer.Mode(), e.renderer.Backend().Name())
		opts.Mode = e.renderer.Mode()
	}
	e.pipeline = pipeline.New(vp, opts)

	g := e.gameInstance
	g.SystemManager = e.systemManager
	g.EventBus = e.bus
	g.Pipeline = e.pipeline
	g.Renderer = e.renderer
	g.Metrics = e.metrics

	if g.FnInitialize != nil {
		if err := g.FnInitialize(); err != nil {
			return err
		}
	}
	if g.FnOnResize != nil {
		if err := g.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

// Run hands the frame loop to the host and returns when it stops.
func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	err := e.host.Run(e.Frame)
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}

/**
 * @brief Frame runs one tick: deliver queued events, update the game, push
 * the scene through the pipeline with the active camera and draw the result.
 * Returns ErrQuit once a quit was requested.
 */
func (e *Engine) Frame() error {
	e.bus.Dispatch()
	if !e.isRunning {
		return ErrQuit
	}
	if e.isSuspended {
		return nil
	}

	// Update clock and get delta time.
	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime
	if step := e.gameInstance.ApplicationConfig.FixedStep; step > 0 {
		delta = step
	}
	snapshot := e.input.Snapshot()

	for _, h := range e.hooks {
		if h.Before != nil {
			if err := h.Before(e.frameNumber, delta); err != nil {
				return err
			}
		}
	}

	g := e.gameInstance
	if g.FnUpdate != nil {
		if err := g.FnUpdate(delta, snapshot); err != nil {
			core.LogError("Game update failed, shutting down: %s", err)
			e.isRunning = false
			return err
		}
	}

	_, camera := e.systemManager.CameraSystem.Active()
	e.pipeline.BeginFrame(camera.View(), camera.Position())
	packet := &renderer.RenderPacket{DeltaTime: delta}
	if g.FnRender != nil {
		if err := g.FnRender(e.pipeline, packet, delta); err != nil {
			core.LogError("Game render failed, shutting down: %s", err)
			e.isRunning = false
			return err
		}
	}
	packet.Triangles = e.pipeline.EndFrame()

	if err := e.renderer.DrawFrame(packet); err != nil {
		e.isRunning = false
		return err
	}

	for _, h := range e.hooks {
		if h.After != nil {
			if err := h.After(e.frameNumber); err != nil {
				return err
			}
		}
	}

	e.metrics.Update(delta)

	// NOTE: Input update/state copying should always be handled
	// after any input should be recorded; I.E. before this line.
	e.input.Update(delta)
	e.lastTime = currentTime
	e.frameNumber++
	return nil
}

// Stop asks the loop to end after the current frame. Safe from any goroutine.
func (e *Engine) Stop() {
	e.bus.Post(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if fn := e.gameInstance.FnShutdown; fn != nil {
		errs = append(errs, fn())
	}
	errs = append(errs,
		e.renderer.Shutdown(),
		e.host.Close(),
		e.systemManager.Shutdown(),
		e.bus.Shutdown(),
	)
	return errors.Join(errs...)
}

func (e *Engine) AddFrameHook(h FrameHook) {
	e.hooks = append(e.hooks, h)
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) IsSuspended() bool {
	return e.isSuspended
}

// FrameNumber counts completed frames.
func (e *Engine) FrameNumber() uint64 {
	return e.frameNumber
}

// GetFramebufferSize returns the width and height (in this order) of the render target.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) EventBus() *core.EventBus {
	return e.bus
}

func (e *Engine) Input() *core.InputState {
	return e.input
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) Pipeline() *pipeline.Pipeline {
	return e.pipeline
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

func (e *Engine) SystemManager() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) onEvent(context core.EventContext) bool {
	if context.Type == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
	}
	// Let other listeners see the quit too.
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.bus.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	width, height := se.WindowWidth, se.WindowHeight
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
		// Do not count the time spent minimised as a frame.
		e.clock.Update()
		e.lastTime = e.clock.Elapsed()
	}

	vp := pipeline.Viewport{Width: width, Height: height}
	e.pipeline.Resize(vp)
	if err := e.renderer.OnResize(vp); err != nil {
		core.LogError("%s", err)
	}
	if fn := e.gameInstance.FnOnResize; fn != nil {
		if err := fn(width, height); err != nil {
			core.LogError("%s", err)
		}
	}
	return false
}
