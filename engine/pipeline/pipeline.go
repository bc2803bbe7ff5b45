package pipeline

import (
	"cmp"
	"slices"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
)

// Mode selects where the pipeline stops and what it hands to the renderer.
type Mode uint8

const (
	// ModeScreen2D emits sorted pixel-space triangles clipped to the screen
	// edges, coloured RGB with alpha forced to 1. For rasterizers without a
	// depth buffer or edge clipping of their own.
	ModeScreen2D Mode = iota
	// ModeAccelerated emits sorted pixel-space triangles without edge
	// clipping; the backend clips in hardware. Colour keeps source alpha.
	ModeAccelerated
	// ModeClipSpace emits clip-space vertices before the perspective divide.
	ModeClipSpace
)

func (m Mode) String() string {
	switch m {
	case ModeScreen2D:
		return "screen2d"
	case ModeAccelerated:
		return "accelerated"
	case ModeClipSpace:
		return "clipspace"
	}
	return "unknown"
}

// SortKey selects the depth used for back-to-front ordering.
type SortKey uint8

const (
	// SortAverageDepth orders by (z0+z1+z2)/3.
	SortAverageDepth SortKey = iota
	// SortLegacyDepth orders by z0+z1+z2/3, which weights the first two
	// vertices fully. Kept so older scenes draw in the order they always did.
	SortLegacyDepth
	// SortNone keeps submission order.
	SortNone
)

type Options struct {
	// Vertical field of view in degrees.
	FOV  float32
	Near float32
	Far  float32

	Mode    Mode
	Culling bool
	SortKey SortKey

	// LightDirection points from the surface toward the light.
	LightDirection math.Vec3
	// MinShade is the ambient floor of the flat shade.
	MinShade float32
}

func DefaultOptions() Options {
	return Options{
		FOV:            90,
		Near:           0.1,
		Far:            1000,
		Mode:           ModeScreen2D,
		Culling:        false,
		SortKey:        SortAverageDepth,
		LightDirection: math.NewVec3(0, 1, -1),
		MinShade:       0.1,
	}
}

// Stats counts what happened to the triangles of the last frame.
type Stats struct {
	Submitted   int
	Culled      int
	NearClipped int
	EdgeClipped int
	Emitted     int
}

/**
 * Pipeline turns object-space meshes into triangles a renderer can draw.
 * One frame is BeginFrame, any number of Submit calls, then EndFrame. It is
 * not safe for concurrent use; Resize must run between frames on the same
 * goroutine.
 */
type Pipeline struct {
	opts       Options
	viewport   Viewport
	projection math.Mat4
	light      math.Vec3

	nearClip *Clipper
	edgeClip *Clipper

	view      math.Mat4
	cameraPos math.Vec3

	scratch []math.Triangle
	staged  []math.Triangle
	out     []math.Triangle
	stats   Stats
}

func New(vp Viewport, opts Options) *Pipeline {
	p := &Pipeline{
		opts:     opts,
		light:    opts.LightDirection.Normalize(),
		nearClip: NewClipper(NearPlane(opts.Near)),
		edgeClip: NewClipper(),
		view:     math.NewMat4Identity(),
	}
	p.Resize(vp)
	return p
}

// Resize recomputes the projection for the new aspect ratio and moves the
// screen-edge planes.
func (p *Pipeline) Resize(vp Viewport) {
	p.viewport = vp
	p.projection = math.NewMat4Projection(p.opts.FOV, vp.AspectRatio(), p.opts.Near, p.opts.Far)
	p.edgeClip.SetPlanes(ScreenPlanes(vp)...)
	core.LogDebug("pipeline viewport %dx%d aspect %.3f", vp.Width, vp.Height, vp.AspectRatio())
}

func (p *Pipeline) Viewport() Viewport {
	return p.viewport
}

func (p *Pipeline) Projection() math.Mat4 {
	return p.projection
}

func (p *Pipeline) Options() Options {
	return p.opts
}

func (p *Pipeline) SetCulling(enabled bool) {
	p.opts.Culling = enabled
}

func (p *Pipeline) SetSortKey(key SortKey) {
	p.opts.SortKey = key
}

func (p *Pipeline) SetLightDirection(dir math.Vec3) {
	p.opts.LightDirection = dir
	p.light = dir.Normalize()
}

// BeginFrame resets per-frame state. view is the world-to-view matrix and
// cameraPos the camera position in world space, used for culling.
func (p *Pipeline) BeginFrame(view math.Mat4, cameraPos math.Vec3) {
	p.view = view
	p.cameraPos = cameraPos
	p.staged = p.staged[:0]
	p.out = p.out[:0]
	p.stats = Stats{}
}

// Submit pushes every triangle of mesh, placed by world, through the frame.
func (p *Pipeline) Submit(mesh *math.Mesh, world math.Mat4) {
	if mesh == nil {
		return
	}
	for _, t := range mesh.Triangles {
		p.SubmitTriangle(t, world)
	}
}

func (p *Pipeline) SubmitTriangle(tri math.Triangle, world math.Mat4) {
	p.stats.Submitted++

	tw := tri.Transform(world)
	normal := tw.Normal().Normalize()

	if p.opts.Culling {
		ray := tw.Points[0].ToVec3().Sub(p.cameraPos)
		if normal.Dot(ray) >= 0 {
			p.stats.Culled++
			return
		}
	}

	shade := math.Clamp(p.light.Dot(normal), p.opts.MinShade, 1.0)
	tw.Colour = p.shadeColour(tri.Colour, shade)

	tv := tw.Transform(p.view)
	p.scratch = p.nearClip.Clip(p.scratch[:0], tv)
	if len(p.scratch) == 0 {
		p.stats.NearClipped++
		return
	}

	for _, t := range p.scratch {
		projected := t.Transform(p.projection)
		if p.opts.Mode != ModeClipSpace {
			for i := range projected.Points {
				projected.Points[i] = p.viewport.ToScreen(projected.Points[i].PerspectiveDivide())
			}
		}
		p.staged = append(p.staged, projected)
	}
}

func (p *Pipeline) shadeColour(base math.Vec4, shade float32) math.Vec4 {
	c := math.Vec4{X: base.X * shade, Y: base.Y * shade, Z: base.Z * shade, W: base.W}
	if p.opts.Mode == ModeScreen2D {
		c.W = 1
	}
	return c
}

// depth returns the ordering key of t; larger is farther.
func (p *Pipeline) depth(t math.Triangle) float32 {
	z0, z1, z2 := t.Points[0].Z, t.Points[1].Z, t.Points[2].Z
	if p.opts.Mode == ModeClipSpace {
		z0, z1, z2 = z0/t.Points[0].W, z1/t.Points[1].W, z2/t.Points[2].W
	}
	if p.opts.SortKey == SortLegacyDepth {
		return z0 + z1 + z2/3.0
	}
	return (z0 + z1 + z2) / 3.0
}

/**
 * EndFrame sorts the staged triangles back to front and, in ModeScreen2D,
 * clips them against the four screen edges. The returned slice is owned by
 * the pipeline and valid until the next BeginFrame.
 */
func (p *Pipeline) EndFrame() []math.Triangle {
	if p.opts.SortKey != SortNone {
		slices.SortStableFunc(p.staged, func(a, b math.Triangle) int {
			return cmp.Compare(p.depth(b), p.depth(a))
		})
	}

	if p.opts.Mode == ModeScreen2D {
		for _, t := range p.staged {
			before := len(p.out)
			p.out = p.edgeClip.Clip(p.out, t)
			if len(p.out) == before {
				p.stats.EdgeClipped++
			}
		}
	} else {
		p.out = append(p.out, p.staged...)
	}

	p.stats.Emitted = len(p.out)
	return p.out
}

func (p *Pipeline) Stats() Stats {
	return p.stats
}
