package terminal

import (
	"image/color"

	"github.com/gdamore/tcell/v2"

	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/pipeline"
	"github.com/spaghettifunk/prism/engine/renderer"
)

// Each cell shows two pixels: the top one as foreground, the bottom one as background.
const halfBlock = '▀'

// ViewportFor is the pixel size of a cols x rows terminal.
func ViewportFor(cols, rows int) pipeline.Viewport {
	return pipeline.Viewport{Width: uint32(max(cols, 0)), Height: uint32(max(rows, 0) * 2)}
}

/**
 * @brief Backend rasterizes into a software framebuffer and presents it with
 * half-block characters, so a terminal cell carries two vertical pixels.
 */
type Backend struct {
	screen  tcell.Screen
	fb      *renderer.Framebuffer
	overlay []string
	text    tcell.Style
}

func New(screen tcell.Screen) *Backend {
	return &Backend{
		screen: screen,
		text:   tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack),
	}
}

func (b *Backend) Name() string {
	return "terminal"
}

func (b *Backend) Mode() pipeline.Mode {
	return pipeline.ModeScreen2D
}

func (b *Backend) Initialize(vp pipeline.Viewport) error {
	b.fb = renderer.NewFramebuffer(int(vp.Width), int(vp.Height))
	return nil
}

// Shutdown leaves the screen alone; the host owns it.
func (b *Backend) Shutdown() error {
	b.fb = nil
	return nil
}

func (b *Backend) Resized(vp pipeline.Viewport) error {
	if b.fb == nil {
		return renderer.ErrNotInitialized
	}
	b.fb.Resize(int(vp.Width), int(vp.Height))
	return nil
}

func (b *Backend) BeginFrame(clear math.Vec4) error {
	if b.fb == nil {
		return renderer.ErrNotInitialized
	}
	c := renderer.ToNRGBA(clear)
	c.A = 255
	b.fb.Clear(c)
	b.overlay = b.overlay[:0]
	return nil
}

func (b *Backend) DrawTriangles(triangles []math.Triangle, wireframe bool) error {
	for _, t := range triangles {
		c := renderer.ToNRGBA(t.Colour)
		if wireframe {
			b.fb.StrokeTriangle(t, c)
		} else {
			b.fb.FillTriangle(t, c)
		}
	}
	return nil
}

func (b *Backend) DrawText(lines []string) error {
	b.overlay = append(b.overlay, lines...)
	return nil
}

func (b *Backend) EndFrame() error {
	w, h := b.fb.Size()
	cols, rows := b.screen.Size()
	for y := 0; y < rows && 2*y < h; y++ {
		for x := 0; x < cols && x < w; x++ {
			top := b.fb.At(x, 2*y)
			bottom := top
			if 2*y+1 < h {
				bottom = b.fb.At(x, 2*y+1)
			}
			style := tcell.StyleDefault.Foreground(toColor(top)).Background(toColor(bottom))
			b.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
	for row, line := range b.overlay {
		if row >= rows {
			break
		}
		col := 0
		for _, r := range line {
			if col >= cols {
				break
			}
			b.screen.SetContent(col, row, r, nil, b.text)
			col++
		}
	}
	b.screen.Show()
	return nil
}

// Framebuffer exposes the pixels of the last frame.
func (b *Backend) Framebuffer() *renderer.Framebuffer {
	return b.fb
}

func toColor(c color.NRGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
