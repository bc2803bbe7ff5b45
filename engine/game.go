package engine

import (
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/pipeline"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/systems"
)

/**
 * @brief Game is the application plugged into the engine. The engine fills
 * in the subsystem fields before FnInitialize is called.
 */
type Game struct {
	ApplicationConfig *ApplicationConfig
	SystemManager     *systems.SystemManager
	EventBus          *core.EventBus
	Pipeline          *pipeline.Pipeline
	Renderer          *renderer.Renderer
	Metrics           *core.Metrics
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error

// Update advances the game; input holds the keys and mouse motion of this frame.
type Update func(deltaTime float64, input core.InputSnapshot) error

// Render submits geometry to the pipeline frame already begun with the
// active camera and may add overlay lines to the packet.
type Render func(p *pipeline.Pipeline, packet *renderer.RenderPacket, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
