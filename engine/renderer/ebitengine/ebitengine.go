package ebitengine

import (
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/pipeline"
	"github.com/spaghettifunk/prism/engine/renderer"
)

// Indices are uint16, so one DrawTriangles call addresses at most this many vertices.
const maxBatchVertices = 65535

const (
	overlayMargin = 8
	overlayLine   = 16
)

type batch struct {
	vertices []ebiten.Vertex
	indices  []uint16
}

type line struct {
	x0, y0, x1, y1 float32
	colour         color.NRGBA
}

/**
 * @brief Backend hands the pipeline's pixel-space triangles to the GPU
 * through ebiten. Frames are recorded during Update and presented when
 * ebiten calls Draw, so the two may run at different rates.
 */
type Backend struct {
	mu       sync.Mutex
	viewport pipeline.Viewport
	clear    color.NRGBA
	batches  []batch
	lines    []line
	overlay  []string
	ready    bool

	// presented is what Draw shows until the next EndFrame.
	presented frame
	source    *ebiten.Image
}

type frame struct {
	clear   color.NRGBA
	batches []batch
	lines   []line
	overlay []string
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string {
	return "ebitengine"
}

func (b *Backend) Mode() pipeline.Mode {
	return pipeline.ModeAccelerated
}

func (b *Backend) Initialize(vp pipeline.Viewport) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.viewport = vp
	b.ready = true
	return nil
}

func (b *Backend) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ready = false
	b.batches = nil
	b.lines = nil
	b.presented = frame{}
	if b.source != nil {
		b.source.Deallocate()
		b.source = nil
	}
	return nil
}

func (b *Backend) Resized(vp pipeline.Viewport) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready {
		return renderer.ErrNotInitialized
	}
	b.viewport = vp
	return nil
}

func (b *Backend) BeginFrame(clear math.Vec4) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready {
		return renderer.ErrNotInitialized
	}
	b.clear = renderer.ToNRGBA(clear)
	b.clear.A = 255
	b.batches = b.batches[:0]
	b.lines = b.lines[:0]
	b.overlay = b.overlay[:0]
	return nil
}

func (b *Backend) DrawTriangles(triangles []math.Triangle, wireframe bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range triangles {
		c := renderer.ToNRGBA(t.Colour)
		if wireframe {
			b.lines = appendOutline(b.lines, t, c)
			continue
		}
		b.batches = appendTriangle(b.batches, t, c)
	}
	return nil
}

func (b *Backend) DrawText(lines []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overlay = append(b.overlay, lines...)
	return nil
}

// EndFrame publishes the recorded frame for the next Present.
func (b *Backend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presented = frame{
		clear:   b.clear,
		batches: b.batches,
		lines:   b.lines,
		overlay: b.overlay,
	}
	// The presented frame owns these arrays now.
	b.batches = nil
	b.lines = nil
	b.overlay = nil
	return nil
}

// Present draws the last finished frame onto screen. Call it from ebiten's Draw.
func (b *Backend) Present(screen *ebiten.Image) {
	b.mu.Lock()
	f := b.presented
	b.mu.Unlock()

	screen.Fill(f.clear)
	if len(f.batches) > 0 {
		src := b.whitePixel()
		opts := &ebiten.DrawTrianglesOptions{}
		for _, bt := range f.batches {
			screen.DrawTriangles(bt.vertices, bt.indices, src, opts)
		}
	}
	for _, l := range f.lines {
		vector.StrokeLine(screen, l.x0, l.y0, l.x1, l.y1, 1, l.colour, false)
	}
	for i, s := range f.overlay {
		ebitenutil.DebugPrintAt(screen, s, overlayMargin, overlayMargin+i*overlayLine)
	}
}

// whitePixel is the texture every vertex samples; vertex colours tint it.
func (b *Backend) whitePixel() *ebiten.Image {
	if b.source == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		b.source = img
	}
	return b.source.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

func appendTriangle(batches []batch, t math.Triangle, c color.NRGBA) []batch {
	if len(batches) == 0 || len(batches[len(batches)-1].vertices)+3 > maxBatchVertices {
		batches = append(batches, batch{})
	}
	bt := &batches[len(batches)-1]
	base := uint16(len(bt.vertices))
	r, g, bl, a := float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255
	for _, p := range t.Points {
		bt.vertices = append(bt.vertices, ebiten.Vertex{
			DstX: p.X, DstY: p.Y,
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: g, ColorB: bl, ColorA: a,
		})
	}
	bt.indices = append(bt.indices, base, base+1, base+2)
	return batches
}

func appendOutline(lines []line, t math.Triangle, c color.NRGBA) []line {
	p := t.Points
	for i := 0; i < 3; i++ {
		a, b := p[i], p[(i+1)%3]
		lines = append(lines, line{a.X, a.Y, b.X, b.Y, c})
	}
	return lines
}
