package renderer

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/pipeline"
)

var (
	ErrNotInitialized = errors.New("renderer not initialized")
	ErrEmptyViewport  = errors.New("viewport has no area")
)

/**
 * @brief A backend draws the triangles the pipeline emits. Mode tells the
 * engine which pipeline output the backend expects.
 */
type RendererBackend interface {
	Name() string
	Mode() pipeline.Mode
	Initialize(vp pipeline.Viewport) error
	Shutdown() error
	Resized(vp pipeline.Viewport) error
	BeginFrame(clear math.Vec4) error
	DrawTriangles(triangles []math.Triangle, wireframe bool) error
	DrawText(lines []string) error
	EndFrame() error
}

/** @brief Everything a backend needs to draw one frame. */
type RenderPacket struct {
	DeltaTime float64
	Triangles []math.Triangle
	// Overlay lines are drawn top-left when the overlay is enabled.
	Overlay []string
}

type Options struct {
	ClearColour math.Vec4
	Wireframe   bool
	Overlay     bool
}

type Renderer struct {
	backend     RendererBackend
	opts        Options
	viewport    pipeline.Viewport
	initialized bool
}

func New(backend RendererBackend, opts Options) *Renderer {
	return &Renderer{backend: backend, opts: opts}
}

func (r *Renderer) Initialize(vp pipeline.Viewport) error {
	if vp.IsEmpty() {
		return ErrEmptyViewport
	}
	if err := r.backend.Initialize(vp); err != nil {
		return fmt.Errorf("initialize %s backend: %w", r.backend.Name(), err)
	}
	r.viewport = vp
	r.initialized = true
	core.LogInfo("%s renderer initialized at %dx%d", r.backend.Name(), vp.Width, vp.Height)
	return nil
}

func (r *Renderer) Shutdown() error {
	if !r.initialized {
		return nil
	}
	r.initialized = false
	return r.backend.Shutdown()
}

// OnResize forwards a new viewport. An empty one is ignored; the window is
// minimised and nothing is drawn until it comes back.
func (r *Renderer) OnResize(vp pipeline.Viewport) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	if vp.IsEmpty() || vp == r.viewport {
		return nil
	}
	r.viewport = vp
	return r.backend.Resized(vp)
}

func (r *Renderer) DrawFrame(packet *RenderPacket) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	if err := r.backend.BeginFrame(r.opts.ClearColour); err != nil {
		core.LogError("%s", err)
		return err
	}
	if err := r.backend.DrawTriangles(packet.Triangles, r.opts.Wireframe); err != nil {
		return err
	}
	if r.opts.Overlay && len(packet.Overlay) > 0 {
		if err := r.backend.DrawText(packet.Overlay); err != nil {
			return err
		}
	}
	if err := r.backend.EndFrame(); err != nil {
		core.LogError("renderer EndFrame failed: %s", err)
		return err
	}
	return nil
}

func (r *Renderer) Backend() RendererBackend {
	return r.backend
}

func (r *Renderer) Mode() pipeline.Mode {
	return r.backend.Mode()
}

func (r *Renderer) Viewport() pipeline.Viewport {
	return r.viewport
}

func (r *Renderer) Wireframe() bool {
	return r.opts.Wireframe
}

func (r *Renderer) SetWireframe(enabled bool) {
	r.opts.Wireframe = enabled
}

func (r *Renderer) Overlay() bool {
	return r.opts.Overlay
}

func (r *Renderer) SetOverlay(enabled bool) {
	r.opts.Overlay = enabled
}

// ToNRGBA converts a colour with components in [0,1], clamping out-of-range values.
func ToNRGBA(c math.Vec4) color.NRGBA {
	return color.NRGBA{
		R: channel(c.X),
		G: channel(c.Y),
		B: channel(c.Z),
		A: channel(c.W),
	}
}

func channel(v float32) uint8 {
	return uint8(math.Clamp(v, 0, 1)*255 + 0.5)
}
